package utils

import (
	"fmt"

	"github.com/ralt/pkgmeta/internal/models"
)

// PackageIdentity returns an identifier for the package described by meta
func PackageIdentity(meta *models.PackageMetadata) string {
	name := meta.GetString(models.FieldName)
	version := meta.GetString(models.FieldVersion)

	switch meta.Format {
	case "rpm":
		release := "0"
		if r, ok := meta.Get(models.FieldRelease); ok {
			release = r.String()
		}
		return fmt.Sprintf("%s:%s:%s", name, version, release)
	default:
		return fmt.Sprintf("%s:%s", name, version)
	}
}

// DetectDuplicates groups the given results by identity and returns the
// identities carried by more than one of them, mapped to their source paths
func DetectDuplicates(results []*models.PackageMetadata) map[string][]string {
	seen := make(map[string][]string)
	for _, meta := range results {
		id := meta.Format + "/" + PackageIdentity(meta)
		seen[id] = append(seen[id], meta.Path)
	}

	duplicates := make(map[string][]string)
	for id, paths := range seen {
		if len(paths) > 1 {
			duplicates[id] = paths
		}
	}
	return duplicates
}
