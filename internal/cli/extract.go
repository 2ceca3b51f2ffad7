package cli

import (
	"fmt"

	"github.com/ralt/pkgmeta/internal/extractor"
	"github.com/ralt/pkgmeta/internal/extractor/deb"
	"github.com/ralt/pkgmeta/internal/extractor/rpm"
	"github.com/ralt/pkgmeta/internal/models"
	"github.com/ralt/pkgmeta/internal/scanner"
	"github.com/sirupsen/logrus"
)

// newExtractors returns one extractor per supported package type
func newExtractors(config *models.ExtractConfig) map[scanner.PackageType]extractor.Extractor {
	extractors := make(map[scanner.PackageType]extractor.Extractor)
	for _, ext := range []extractor.Extractor{
		deb.NewExtractor(config),
		rpm.NewExtractor(config),
	} {
		extractors[ext.GetSupportedType()] = ext
	}
	return extractors
}

// extractFile detects the type of path and runs the matching extractor
func extractFile(extractors map[scanner.PackageType]extractor.Extractor, path string, pkgType scanner.PackageType) (*models.PackageMetadata, error) {
	if pkgType == scanner.TypeUnknown {
		var err error
		pkgType, err = scanner.DetectPackageType(path)
		if err != nil {
			return nil, &models.ExtractError{
				Type: models.ErrIoFailure,
				Path: path,
				Err:  err,
			}
		}
	}

	ext, ok := extractors[pkgType]
	if !ok {
		return nil, &models.ExtractError{
			Type: models.ErrFormatRejected,
			Path: path,
			Err:  fmt.Errorf("not a .deb or .rpm package"),
		}
	}

	logrus.Debugf("Extracting %s metadata from %s", pkgType, path)
	return ext.ExtractFile(path)
}
