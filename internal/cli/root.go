package cli

import (
	"fmt"

	"github.com/ralt/pkgmeta/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	config := models.DefaultExtractConfig()

	rootCmd := &cobra.Command{
		Use:   "pkgmeta",
		Short: "Show descriptive metadata of .deb and .rpm packages",
		Long: `Pkgmeta reads package files without unpacking or installing them
and prints their descriptive metadata: name, version, summary, size
and, for RPM packages, release, group, vendor and packager.

Supported package types:
  - Debian (.deb packages)
  - RPM (.rpm packages)`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
			return validateConfig(config)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&config.ModernControl, "modern-control", false,
		"Also accept control.tar.xz, control.tar.zst and control.tar in .deb packages")
	rootCmd.PersistentFlags().IntVar(&config.MaxEntries, "max-entries", models.DefaultMaxEntries,
		"Refuse RPM headers with at least this many entries")
	rootCmd.PersistentFlags().StringVarP(&config.Format, "format", "f", "text", "Output format (text, yaml)")

	// Add subcommands
	rootCmd.AddCommand(NewShowCmd(config))
	rootCmd.AddCommand(NewScanCmd(config))

	return rootCmd
}

func validateConfig(config *models.ExtractConfig) error {
	if config.MaxEntries <= 0 {
		return &models.ExtractError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("max-entries must be positive, got %d", config.MaxEntries),
		}
	}

	switch config.Format {
	case "text", "yaml":
	default:
		return &models.ExtractError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("unknown output format %q", config.Format),
		}
	}

	return nil
}
