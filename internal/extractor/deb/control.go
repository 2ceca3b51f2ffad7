package deb

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/ralt/pkgmeta/internal/models"
	"github.com/sirupsen/logrus"
)

// ControlField is one "Key: Value" line of a control file
type ControlField struct {
	Key   string
	Value string
}

// ParseControl splits a control file into fields. Scanning stops at the
// first line without a colon, which ends the header block (blank line or
// the body of a multi-line field).
func ParseControl(data []byte) ([]ControlField, error) {
	var fields []ControlField

	r := bufio.NewReader(bytes.NewReader(data))
	for {
		line, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		if line == "" && err == io.EOF {
			break
		}

		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			break
		}

		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")

		field := ControlField{Key: line[:colon]}
		// Skip the colon and the single space after it
		if start := colon + 2; start < len(line) {
			field.Value = line[start:]
		}
		fields = append(fields, field)

		if err == io.EOF {
			break
		}
	}

	return fields, nil
}

// MapControl copies the known control fields into meta
func MapControl(fields []ControlField, meta *models.PackageMetadata) {
	for _, f := range fields {
		switch f.Key {
		case keyPackage:
			meta.SetString(models.FieldName, f.Value)
		case keyVersion:
			meta.SetString(models.FieldVersion, f.Value)
		case keyDescription:
			meta.SetString(models.FieldSummary, f.Value)
		case keyInstalledSize:
			size, err := strconv.ParseInt(strings.TrimSpace(f.Value), 10, 64)
			if err != nil {
				logrus.Debugf("Non-numeric Installed-Size %q, using 0", f.Value)
				size = 0
			}
			meta.SetInt(models.FieldSize, size)
		default:
			logrus.Debugf("Ignoring control field %s", f.Key)
		}
	}
}
