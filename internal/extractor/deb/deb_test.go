package deb

import (
	"archive/tar"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blakesmith/ar"
	"github.com/klauspost/compress/zstd"
	"github.com/ralt/pkgmeta/internal/models"
	"github.com/ralt/pkgmeta/internal/utils"
	"github.com/ulikunitz/xz"
)

const sampleControl = `Package: hello
Version: 2.10-3
Architecture: amd64
Maintainer: Jane Doe <jane@example.com>
Installed-Size: 280
Depends: libc6 (>= 2.34)
Description: example package based on GNU hello
 The GNU hello program produces a familiar, friendly greeting.
 Homepage: not a field
`

type arMember struct {
	name string
	body []byte
}

func buildDeb(t *testing.T, members ...arMember) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := ar.NewWriter(&buf)
	if err := w.WriteGlobalHeader(); err != nil {
		t.Fatalf("WriteGlobalHeader failed: %v", err)
	}
	for _, m := range members {
		hdr := &ar.Header{
			Name:    m.name,
			Size:    int64(len(m.body)),
			Mode:    0644,
			ModTime: time.Unix(1700000000, 0),
		}
		if err := w.WriteHeader(hdr); err != nil {
			t.Fatalf("WriteHeader failed: %v", err)
		}
		if _, err := w.Write(m.body); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	return buf.Bytes()
}

func buildTar(t *testing.T, files ...arMember) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, f := range files {
		hdr := &tar.Header{
			Name:     f.name,
			Mode:     0644,
			Size:     int64(len(f.body)),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("WriteHeader failed: %v", err)
		}
		if _, err := tw.Write(f.body); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return buf.Bytes()
}

func gz(t *testing.T, data []byte) []byte {
	t.Helper()
	out, err := utils.GzipCompress(data)
	if err != nil {
		t.Fatalf("GzipCompress failed: %v", err)
	}
	return out
}

func controlTar(t *testing.T, control string) []byte {
	return buildTar(t,
		arMember{"./md5sums", []byte("d41d8cd98f00b204e9800998ecf8427e  usr/bin/hello\n")},
		arMember{"./control", []byte(control)},
	)
}

func standardDeb(t *testing.T, control string) []byte {
	return buildDeb(t,
		arMember{"debian-binary", []byte("2.0\n")},
		arMember{"control.tar.gz", gz(t, controlTar(t, control))},
		arMember{"data.tar.gz", gz(t, buildTar(t, arMember{"./usr/bin/hello", []byte("#!/bin/sh\n")}))},
	)
}

func extract(t *testing.T, data []byte, config *models.ExtractConfig) (*models.PackageMetadata, error) {
	t.Helper()
	return NewExtractor(config).Extract(bytes.NewReader(data))
}

func TestParseControl(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []ControlField
	}{
		{
			name:  "simple",
			input: "Package: foo\nVersion: 1.0\n",
			want:  []ControlField{{"Package", "foo"}, {"Version", "1.0"}},
		},
		{
			name:  "no trailing newline",
			input: "Package: foo",
			want:  []ControlField{{"Package", "foo"}},
		},
		{
			name:  "crlf",
			input: "Package: foo\r\nVersion: 1.0\r\n",
			want:  []ControlField{{"Package", "foo"}, {"Version", "1.0"}},
		},
		{
			name:  "empty value",
			input: "Essential:\nPackage: foo\n",
			want:  []ControlField{{"Essential", ""}, {"Package", "foo"}},
		},
		{
			name:  "colon in value",
			input: "Maintainer: a <mailto:a@b>\n",
			want:  []ControlField{{"Maintainer", "a <mailto:a@b>"}},
		},
		{
			name:  "blank line ends block",
			input: "Package: foo\n\nVersion: 1.0\n",
			want:  []ControlField{{"Package", "foo"}},
		},
		{
			name:  "colon-less body line ends block",
			input: "Description: short\n long body\nInstalled-Size: 12\n",
			want:  []ControlField{{"Description", "short"}},
		},
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseControl([]byte(tt.input))
			if err != nil {
				t.Fatalf("ParseControl failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d fields, got %d: %v", len(tt.want), len(got), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Field %d: expected %+v, got %+v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestMapControl(t *testing.T) {
	fields := []ControlField{
		{"Package", "foo"},
		{"Version", "1:2.3-4"},
		{"Description", "does foo things"},
		{"Installed-Size", "1234"},
		{"Architecture", "arm64"},
	}

	meta := models.NewPackageMetadata("deb")
	MapControl(fields, meta)

	expected := map[string]models.Value{
		models.FieldName:    models.StringValue("foo"),
		models.FieldVersion: models.StringValue("1:2.3-4"),
		models.FieldSummary: models.StringValue("does foo things"),
		models.FieldSize:    models.IntValue(1234),
	}
	if len(meta.Fields) != len(expected) {
		t.Errorf("Expected %d fields, got %v", len(expected), meta.Fields)
	}
	for name, want := range expected {
		if got, ok := meta.Get(name); !ok || got != want {
			t.Errorf("Field %s: expected %+v, got %+v", name, want, got)
		}
	}
}

func TestMapControlNonNumericSize(t *testing.T) {
	meta := models.NewPackageMetadata("deb")
	MapControl([]ControlField{{"Installed-Size", "lots"}}, meta)

	if got, ok := meta.Get(models.FieldSize); !ok || got != models.IntValue(0) {
		t.Errorf("Expected Size 0, got %+v (present=%v)", got, ok)
	}
}

func TestExtract(t *testing.T) {
	meta, err := extract(t, standardDeb(t, sampleControl), nil)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	expected := map[string]models.Value{
		models.FieldName:    models.StringValue("hello"),
		models.FieldVersion: models.StringValue("2.10-3"),
		models.FieldSummary: models.StringValue("example package based on GNU hello"),
		models.FieldSize:    models.IntValue(280),
	}
	if len(meta.Fields) != len(expected) {
		t.Errorf("Expected %d fields, got %v", len(expected), meta.Fields)
	}
	for name, want := range expected {
		if got, ok := meta.Get(name); !ok || got != want {
			t.Errorf("Field %s: expected %+v, got %+v", name, want, got)
		}
	}
	if meta.Format != "deb" {
		t.Errorf("Expected format deb, got %s", meta.Format)
	}
	if meta.RawTags != nil {
		t.Errorf("Debian metadata must not carry raw tags")
	}
}

func TestExtractMissingControlArchive(t *testing.T) {
	data := buildDeb(t,
		arMember{"debian-binary", []byte("2.0\n")},
		arMember{"data.tar.gz", gz(t, buildTar(t))},
	)

	meta, err := extract(t, data, nil)
	if err == nil {
		t.Fatalf("Expected failure, got %v", meta.Fields)
	}
	if !models.IsErrorType(err, models.ErrMemberMissing) {
		t.Errorf("Expected MemberMissing, got %v", err)
	}
}

func TestExtractMissingControlFile(t *testing.T) {
	data := buildDeb(t,
		arMember{"debian-binary", []byte("2.0\n")},
		arMember{"control.tar.gz", gz(t, buildTar(t, arMember{"./md5sums", []byte("")}))},
	)

	if _, err := extract(t, data, nil); !models.IsErrorType(err, models.ErrMemberMissing) {
		t.Errorf("Expected MemberMissing, got %v", err)
	}
}

func TestExtractCorruptControlArchive(t *testing.T) {
	data := buildDeb(t,
		arMember{"debian-binary", []byte("2.0\n")},
		arMember{"control.tar.gz", []byte("this is not gzip")},
	)

	if _, err := extract(t, data, nil); !models.IsErrorType(err, models.ErrFormatRejected) {
		t.Errorf("Expected FormatRejected, got %v", err)
	}
}

func TestExtractNotAnArchive(t *testing.T) {
	if _, err := extract(t, []byte("Package: foo\nVersion: 1\n"), nil); !models.IsErrorType(err, models.ErrFormatRejected) {
		t.Errorf("Expected FormatRejected, got %v", err)
	}
}

func TestExtractMalformedArHeader(t *testing.T) {
	header := func(name, mode, size string) string {
		return fmt.Sprintf("%-16s%-12s%-6s%-6s%-8s%-10s`\n", name, "0", "0", "0", mode, size)
	}

	tests := []struct {
		name string
		data string
	}{
		{"negative size", "!<arch>\n" + header("debian-binary", "100644", "-60")},
		{"blank mode", "!<arch>\n" + header("control.tar.gz", "", "-1") + "    "},
		{"garbage size", "!<arch>\n" + header("debian-binary", "100644", "0x4") + "2.0\n"},
		{"size past end of file", "!<arch>\n" + header("control.tar.gz", "100644", "4096") + "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			done := make(chan error, 1)
			go func() {
				defer func() {
					if r := recover(); r != nil {
						done <- fmt.Errorf("panic: %v", r)
					}
				}()
				_, err := extract(t, []byte(tt.data), nil)
				done <- err
			}()

			select {
			case err := <-done:
				if !models.IsErrorType(err, models.ErrFormatRejected) {
					t.Errorf("Expected FormatRejected, got %v", err)
				}
			case <-time.After(3 * time.Second):
				t.Fatalf("Extract did not return")
			}
		})
	}
}

func TestExtractModernControl(t *testing.T) {
	tarball := controlTar(t, sampleControl)

	var xzBuf bytes.Buffer
	xw, err := xz.NewWriter(&xzBuf)
	if err != nil {
		t.Fatalf("xz.NewWriter failed: %v", err)
	}
	xw.Write(tarball)
	if err := xw.Close(); err != nil {
		t.Fatalf("xz close failed: %v", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd.NewWriter failed: %v", err)
	}
	zstBytes := enc.EncodeAll(tarball, nil)
	enc.Close()

	tests := []struct {
		name   string
		member arMember
	}{
		{"xz", arMember{"control.tar.xz", xzBuf.Bytes()}},
		{"zstd", arMember{"control.tar.zst", zstBytes}},
		{"plain", arMember{"control.tar", tarball}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := buildDeb(t, arMember{"debian-binary", []byte("2.0\n")}, tt.member)

			// Only control.tar.gz is accepted by default
			if _, err := extract(t, data, nil); !models.IsErrorType(err, models.ErrMemberMissing) {
				t.Errorf("Expected MemberMissing by default, got %v", err)
			}

			config := models.DefaultExtractConfig()
			config.ModernControl = true
			meta, err := extract(t, data, config)
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if got := meta.GetString(models.FieldName); got != "hello" {
				t.Errorf("Expected Name hello, got %q", got)
			}
		})
	}
}

func TestExtractFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello_2.10-3_amd64.deb")
	if err := os.WriteFile(path, standardDeb(t, sampleControl), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	ext := NewExtractor(nil)
	meta, err := ext.ExtractFile(path)
	if err != nil {
		t.Fatalf("ExtractFile failed: %v", err)
	}
	if meta.Path != path {
		t.Errorf("Expected path %s, got %s", path, meta.Path)
	}

	_, err = ext.ExtractFile(filepath.Join(t.TempDir(), "missing.deb"))
	if !models.IsErrorType(err, models.ErrIoFailure) {
		t.Errorf("Expected IoFailure, got %v", err)
	}
}
