package rpm

import (
	"fmt"
	"io"
	"os"

	"github.com/ralt/pkgmeta/internal/extractor"
	"github.com/ralt/pkgmeta/internal/models"
	"github.com/ralt/pkgmeta/internal/scanner"
	"github.com/sirupsen/logrus"
)

// Extractor implements the extractor.Extractor interface for RPM packages
type Extractor struct {
	config *models.ExtractConfig
}

// NewExtractor creates a new RPM extractor
func NewExtractor(config *models.ExtractConfig) extractor.Extractor {
	if config == nil {
		config = models.DefaultExtractConfig()
	}
	return &Extractor{config: config}
}

// ExtractFile opens an RPM file and extracts its metadata
func (e *Extractor) ExtractFile(path string) (*models.PackageMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &models.ExtractError{
			Type: models.ErrIoFailure,
			Path: path,
			Err:  err,
		}
	}
	defer f.Close()

	meta, err := e.Extract(f)
	if err != nil {
		return nil, models.WithPath(err, path)
	}
	meta.Path = path

	return meta, nil
}

// Extract reads the RPM headers from r and maps them to metadata
func (e *Extractor) Extract(r io.ReadSeeker) (*models.PackageMetadata, error) {
	meta := models.NewPackageMetadata(scanner.TypeRpm.String())
	if e.config.Everything {
		meta.RawTags = make(map[uint32]string)
	}

	parser := NewHeaderParser()
	if e.config.MaxEntries > 0 {
		parser.MaxEntries = e.config.MaxEntries
	}
	parser.Extended = e.config.Everything
	if !e.config.Everything {
		parser.Wanted = IsMapped
	}

	archiveOffset, err := parser.Parse(r, func(entry Entry, v TagValue) {
		logrus.Debugf("RPM tag %d (%s): %q", entry.Tag, entry.Type, v.String())

		if e.config.Everything {
			meta.SetRawTag(entry.Tag, v.String())
		}

		name, value, ok := MapTag(entry.Tag, v)
		if !ok {
			if IsMapped(entry.Tag) {
				logrus.Warnf("Skipping RPM tag %d: cannot use %s value %q", entry.Tag, entry.Type, v.String())
			}
			return
		}
		meta.Fields[name] = value
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read RPM header: %w", err)
	}

	meta.SetInt(models.FieldArchiveOffset, archiveOffset)

	return meta, nil
}

// GetSupportedType returns the package type this extractor supports
func (e *Extractor) GetSupportedType() scanner.PackageType {
	return scanner.TypeRpm
}
