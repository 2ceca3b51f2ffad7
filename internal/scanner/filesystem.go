package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
)

// FileSystemScanner finds .deb and .rpm files below a directory
type FileSystemScanner struct {
	// Recursive descends into subdirectories when set
	Recursive bool
}

// NewFileSystemScanner creates a new filesystem scanner
func NewFileSystemScanner(recursive bool) *FileSystemScanner {
	return &FileSystemScanner{Recursive: recursive}
}

// Scan walks dir and returns the packages it contains, sorted by path
func (s *FileSystemScanner) Scan(ctx context.Context, dir string) ([]ScannedPackage, error) {
	var packages []ScannedPackage

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() {
			if path != dir && !s.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		pkgType, err := s.DetectType(path)
		if err != nil {
			logrus.Warnf("Failed to detect type for %s: %v", path, err)
			return nil
		}
		if pkgType == TypeUnknown {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logrus.Warnf("Failed to stat %s: %v", path, err)
			return nil
		}

		logrus.Debugf("Found %s package: %s", pkgType, path)
		packages = append(packages, ScannedPackage{
			Path: path,
			Type: pkgType,
			Size: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}

	sort.Slice(packages, func(i, j int) bool {
		return packages[i].Path < packages[j].Path
	})

	logrus.Debugf("Found %d packages in %s", len(packages), dir)
	return packages, nil
}

// DetectType determines the package type of a file
func (s *FileSystemScanner) DetectType(path string) (PackageType, error) {
	return DetectPackageType(path)
}
