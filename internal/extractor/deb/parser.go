package deb

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/ralt/pkgmeta/internal/archive"
	"github.com/ralt/pkgmeta/internal/extractor"
	"github.com/ralt/pkgmeta/internal/models"
	"github.com/ralt/pkgmeta/internal/scanner"
	"github.com/ralt/pkgmeta/internal/utils"
	"github.com/sirupsen/logrus"
)

// controlArchive is a control archive member and how to unpack it
type controlArchive struct {
	member     string
	decompress func([]byte) ([]byte, error)
}

var (
	gzipControl = controlArchive{memberControlTarGz, utils.GzipDecompress}

	// Tried in order after control.tar.gz when modern archives are allowed
	modernControls = []controlArchive{
		{memberControlTarXz, utils.XzDecompress},
		{memberControlTarZst, utils.ZstdDecompress},
		{memberControlTar, nil},
	}
)

// Extractor implements the extractor.Extractor interface for Debian packages
type Extractor struct {
	config *models.ExtractConfig
}

// NewExtractor creates a new Debian extractor
func NewExtractor(config *models.ExtractConfig) extractor.Extractor {
	if config == nil {
		config = models.DefaultExtractConfig()
	}
	return &Extractor{config: config}
}

// ExtractFile opens a .deb file and extracts its metadata
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

// Extract reads the control file out of the package in r
func (e *Extractor) Extract(r io.ReadSeeker) (*models.PackageMetadata, error) {
	control, err := e.extractControl(r)
	if err != nil {
		return nil, fmt.Errorf("failed to extract control: %w", err)
	}

	fields, err := ParseControl(control)
	if err != nil {
		return nil, &models.ExtractError{
			Type: models.ErrIoFailure,
			Err:  fmt.Errorf("failed to parse control: %w", err),
		}
	}

	meta := models.NewPackageMetadata(scanner.TypeDeb.String())
	MapControl(fields, meta)

	return meta, nil
}

// GetSupportedType returns the package type this extractor supports
func (e *Extractor) GetSupportedType() scanner.PackageType {
	return scanner.TypeDeb
}

// extractControl returns the bytes of the control file nested in the
// package's control archive
func (e *Extractor) extractControl(r io.ReadSeeker) ([]byte, error) {
	var deb archive.Container
	deb, err := archive.OpenAr(r)
	if err != nil {
		return nil, containerError(err)
	}

	candidates := []controlArchive{gzipControl}
	if e.config.ModernControl {
		candidates = append(candidates, modernControls...)
	}

	for _, c := range candidates {
		ok, err := archive.Has(deb, c.member)
		if err != nil {
			return nil, containerError(err)
		}
		if !ok {
			logrus.Debugf("%s not found", c.member)
			continue
		}

		data, err := deb.ReadMember(c.member)
		if err != nil {
			return nil, containerError(err)
		}

		logrus.Debugf("Reading control file from %s", c.member)
		return readControlArchive(c, data)
	}

	return nil, &models.ExtractError{
		Type: models.ErrMemberMissing,
		Err:  fmt.Errorf("%s not found in package", memberControlTarGz),
	}
}

func readControlArchive(c controlArchive, data []byte) ([]byte, error) {
	if c.decompress != nil {
		var err error
		data, err = c.decompress(data)
		if err != nil {
			return nil, &models.ExtractError{
				Type: models.ErrFormatRejected,
				Err:  fmt.Errorf("decompressing %s: %w", c.member, err),
			}
		}
	}

	tarball, err := archive.OpenTar(data)
	if err != nil {
		return nil, &models.ExtractError{
			Type: models.ErrFormatRejected,
			Err:  fmt.Errorf("opening %s: %w", c.member, err),
		}
	}

	control, err := tarball.ReadMember(memberControl)
	if errors.Is(err, archive.ErrMemberNotFound) {
		return nil, &models.ExtractError{
			Type: models.ErrMemberMissing,
			Err:  fmt.Errorf("control file not found in %s", c.member),
		}
	}
	if err != nil {
		return nil, containerError(err)
	}

	return control, nil
}

// containerError classifies failures from the archive layer: errors from
// the file system are I/O failures, everything else is a malformed archive
func containerError(err error) error {
	errType := models.ErrFormatRejected
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		errType = models.ErrIoFailure
	}
	return &models.ExtractError{Type: errType, Err: err}
}
