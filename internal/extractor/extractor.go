package extractor

import (
	"io"

	"github.com/ralt/pkgmeta/internal/models"
	"github.com/ralt/pkgmeta/internal/scanner"
)

// Extractor interface for package metadata extractors
type Extractor interface {
	// Extract reads metadata from a package held in r
	Extract(r io.ReadSeeker) (*models.PackageMetadata, error)

	// ExtractFile opens path and reads its metadata
	ExtractFile(path string) (*models.PackageMetadata, error)

	// GetSupportedType returns the package type this extractor supports
	GetSupportedType() scanner.PackageType
}
