package cli

import (
	"fmt"
	"sort"

	"github.com/ralt/pkgmeta/internal/models"
	"github.com/ralt/pkgmeta/internal/scanner"
	"github.com/ralt/pkgmeta/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command
func NewScanCmd(config *models.ExtractConfig) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "scan DIR",
		Short: "List the packages found in a directory",
		Long: `Scans a directory for .deb and .rpm files, prints the identity of
each package and warns about packages that share an identity.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, config, args[0], recursive)
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", true, "Scan subdirectories")

	return cmd
}

func runScan(cmd *cobra.Command, config *models.ExtractConfig, dir string, recursive bool) error {
	logrus.Infof("Scanning directory: %s", dir)
	sc := scanner.NewFileSystemScanner(recursive)
	scanned, err := sc.Scan(cmd.Context(), dir)
	if err != nil {
		return &models.ExtractError{
			Type: models.ErrIoFailure,
			Path: dir,
			Err:  err,
		}
	}

	if len(scanned) == 0 {
		logrus.Warn("No packages found in directory")
		return nil
	}

	extractors := newExtractors(config)
	out := cmd.OutOrStdout()
	var results []*models.PackageMetadata

	for _, pkg := range scanned {
		meta, err := extractFile(extractors, pkg.Path, pkg.Type)
		if err != nil {
			logrus.Warnf("Failed to read %s: %v", pkg.Path, err)
			continue
		}
		results = append(results, meta)
		fmt.Fprintf(out, "%s\t%s\t%s\n", meta.Format, utils.PackageIdentity(meta), meta.Path)
	}

	duplicates := utils.DetectDuplicates(results)
	ids := make([]string, 0, len(duplicates))
	for id := range duplicates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		paths := duplicates[id]
		same, err := utils.SameContent(paths)
		switch {
		case err != nil:
			logrus.Warnf("Duplicate package %s: %v (cannot compare: %v)", id, paths, err)
		case same:
			logrus.Infof("Identical copies of %s: %v", id, paths)
		default:
			logrus.Warnf("Conflicting builds of %s: %v", id, paths)
		}
	}

	logrus.Infof("Read %d of %d packages", len(results), len(scanned))
	return nil
}
