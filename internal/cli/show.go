package cli

import (
	"github.com/ralt/pkgmeta/internal/models"
	"github.com/ralt/pkgmeta/internal/scanner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewShowCmd creates the show command
func NewShowCmd(config *models.ExtractConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show FILE...",
		Short: "Show the metadata of package files",
		Long: `Detects the type of each file and prints its metadata. Files that
are not packages, or cannot be read, are reported as having no metadata.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, config, args)
		},
	}

	cmd.Flags().BoolVarP(&config.Everything, "all", "a", false, "Also list every RPM header tag")

	return cmd
}

func runShow(cmd *cobra.Command, config *models.ExtractConfig, paths []string) error {
	extractors := newExtractors(config)
	out := newRenderer(config.Format, cmd.OutOrStdout())

	for _, path := range paths {
		meta, err := extractFile(extractors, path, scanner.TypeUnknown)
		if err != nil {
			logrus.Warnf("No metadata for %s: %v", path, err)
		}
		if err := out.Render(result{path: path, meta: meta, err: err}); err != nil {
			return err
		}
	}

	return out.Close()
}
