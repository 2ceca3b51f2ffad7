package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// FileDigest returns the hex SHA-256 of the file at path
func FileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// SameContent reports whether all files in paths have identical content
func SameContent(paths []string) (bool, error) {
	var first string
	for i, path := range paths {
		digest, err := FileDigest(path)
		if err != nil {
			return false, err
		}
		if i == 0 {
			first = digest
			continue
		}
		if digest != first {
			return false, nil
		}
	}
	return true, nil
}
