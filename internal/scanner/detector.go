package scanner

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// Magic bytes for package detection
var (
	// Debian packages start with "!<arch>\ndebian"
	debMagic = []byte("!<arch>\ndebian")

	// RPM packages start with 0xED 0xAB 0xEE 0xDB
	rpmMagic = []byte{0xED, 0xAB, 0xEE, 0xDB}
)

// DetectPackageType determines the package type based on magic bytes and file extension
func DetectPackageType(path string) (PackageType, error) {
	f, err := os.Open(path)
	if err != nil {
		return TypeUnknown, err
	}
	defer f.Close()

	pkgType, err := DetectReader(f)
	if err != nil {
		return TypeUnknown, err
	}
	if pkgType != TypeUnknown {
		return pkgType, nil
	}

	// Fall back to the extension; the parsers reject mislabelled files
	switch filepath.Ext(path) {
	case ".deb":
		return TypeDeb, nil
	case ".rpm":
		return TypeRpm, nil
	}

	return TypeUnknown, nil
}

// DetectReader determines the package type from the leading bytes of r
func DetectReader(r io.Reader) (PackageType, error) {
	header := make([]byte, 64)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return TypeUnknown, err
	}
	header = header[:n]

	if bytes.HasPrefix(header, debMagic) {
		return TypeDeb, nil
	}
	if bytes.HasPrefix(header, rpmMagic) {
		return TypeRpm, nil
	}

	return TypeUnknown, nil
}
