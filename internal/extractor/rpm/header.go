package rpm

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/ralt/pkgmeta/internal/models"
	"github.com/sassoftware/go-rpmutils"
)

const (
	// leadSize is the length of the legacy lead preceding the headers
	leadSize = 96

	// entrySize is the length of one directory record
	entrySize = 16

	headerVersion = 1

	// headerCount is the number of header sections: signature, then header
	headerCount = 2

	// maxBinRender bounds the bytes of a bin value shown in the tag listing
	maxBinRender = 256
)

var headerMagic = [3]byte{0x8E, 0xAD, 0xE8}

// TagType is the storage type of a header entry
type TagType int

const (
	TypeUnsupported TagType = iota
	TypeInt16
	TypeInt32
	TypeString
	TypeI18NString

	// Only decoded for the exhaustive tag listing
	TypeChar
	TypeInt8
	TypeInt64
	TypeStringArray
	TypeBin
)

// String returns the string representation of TagType
func (t TagType) String() string {
	switch t {
	case TypeInt16:
		return "int16"
	case TypeInt32:
		return "int32"
	case TypeString:
		return "string"
	case TypeI18NString:
		return "i18nstring"
	case TypeChar:
		return "char"
	case TypeInt8:
		return "int8"
	case TypeInt64:
		return "int64"
	case TypeStringArray:
		return "stringarray"
	case TypeBin:
		return "bin"
	default:
		return "unsupported"
	}
}

// extended reports whether the type is only decoded in exhaustive mode
func (t TagType) extended() bool {
	return t >= TypeChar
}

func tagTypeOf(raw uint32) TagType {
	switch raw {
	case uint32(rpmutils.RPM_INT16_TYPE):
		return TypeInt16
	case uint32(rpmutils.RPM_INT32_TYPE):
		return TypeInt32
	case uint32(rpmutils.RPM_STRING_TYPE):
		return TypeString
	case uint32(rpmutils.RPM_I18NSTRING_TYPE):
		return TypeI18NString
	case uint32(rpmutils.RPM_CHAR_TYPE):
		return TypeChar
	case uint32(rpmutils.RPM_INT8_TYPE):
		return TypeInt8
	case uint32(rpmutils.RPM_INT64_TYPE):
		return TypeInt64
	case uint32(rpmutils.RPM_STRING_ARRAY_TYPE):
		return TypeStringArray
	case uint32(rpmutils.RPM_BIN_TYPE):
		return TypeBin
	default:
		return TypeUnsupported
	}
}

// Entry is one directory record of a header section
type Entry struct {
	Tag     uint32
	Type    TagType
	RawType uint32
	// Offset is relative to the start of the value store
	Offset uint32
	Count  uint32
}

// TagValue is a decoded entry value. Integer types set Int, everything
// else sets Str.
type TagValue struct {
	Type TagType
	Int  uint64
	Str  string
}

// IsInt reports whether the value is numeric
func (v TagValue) IsInt() bool {
	switch v.Type {
	case TypeInt16, TypeInt32, TypeInt64, TypeInt8, TypeChar:
		return true
	}
	return false
}

// String returns the text form used for the exhaustive tag listing
func (v TagValue) String() string {
	if v.IsInt() {
		return strconv.FormatUint(v.Int, 10)
	}
	return v.Str
}

// introRecord is the fixed part of a header section
type introRecord struct {
	Magic    [3]byte
	Version  uint8
	Reserved [4]byte
	Entries  uint32
	Size     uint32
}

// indexRecord is the on-disk form of Entry
type indexRecord struct {
	Tag    uint32
	Type   uint32
	Offset uint32
	Count  uint32
}

// EntryFunc receives each decoded entry of the main header
type EntryFunc func(e Entry, v TagValue)

// HeaderParser walks the signature and main header sections of an RPM file
type HeaderParser struct {
	// MaxEntries is the entry count at which a header is refused
	MaxEntries int

	// Extended enables decoding of the types only needed for the
	// exhaustive tag listing
	Extended bool

	// Wanted selects the tags to decode; nil decodes every tag
	Wanted func(tag uint32) bool
}

// NewHeaderParser returns a parser with the default entry bound
func NewHeaderParser() *HeaderParser {
	return &HeaderParser{MaxEntries: models.DefaultMaxEntries}
}

// Parse reads r from its start, skips the lead and the signature header,
// and calls fn for every decodable entry of the main header in directory
// order. It returns the offset at which the payload archive begins.
func (p *HeaderParser) Parse(r io.ReadSeeker, fn EntryFunc) (int64, error) {
	if _, err := r.Seek(leadSize, io.SeekStart); err != nil {
		return 0, ioError(err)
	}

	var archiveOffset int64
	for pass := 0; pass < headerCount; pass++ {
		var intro introRecord
		if err := binary.Read(r, binary.BigEndian, &intro); err != nil {
			return 0, readError("header intro", err)
		}
		if intro.Magic != headerMagic {
			return 0, formatError(fmt.Errorf("bad header magic % x", intro.Magic[:]))
		}
		if intro.Version != headerVersion {
			return 0, formatError(fmt.Errorf("unsupported header version %d", intro.Version))
		}
		if int64(intro.Entries) >= int64(p.maxEntries()) {
			return 0, &models.ExtractError{
				Type: models.ErrMalformedTagTable,
				Err:  fmt.Errorf("header %d has %d entries, limit is %d", pass, intro.Entries, p.maxEntries()),
			}
		}

		pos, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, ioError(err)
		}
		storeStart := pos + int64(intro.Entries)*entrySize
		storeEnd := storeStart + int64(intro.Size)

		if pass == 0 {
			if _, err := r.Seek(storeEnd+padding(storeEnd), io.SeekStart); err != nil {
				return 0, ioError(err)
			}
			continue
		}

		s := &store{r: r, start: storeStart, end: storeEnd}
		for i := uint32(0); i < intro.Entries; i++ {
			var rec indexRecord
			if err := binary.Read(r, binary.BigEndian, &rec); err != nil {
				return 0, readError("index record", err)
			}
			e := Entry{
				Tag:     rec.Tag,
				Type:    tagTypeOf(rec.Type),
				RawType: rec.Type,
				Offset:  rec.Offset,
				Count:   rec.Count,
			}
			if e.Offset > intro.Size {
				return 0, &models.ExtractError{
					Type: models.ErrMalformedTagTable,
					Err:  fmt.Errorf("tag %d offset %d outside store of %d bytes", e.Tag, e.Offset, intro.Size),
				}
			}
			if p.Wanted != nil && !p.Wanted(e.Tag) {
				continue
			}
			if e.Type == TypeUnsupported || (e.Type.extended() && !p.Extended) {
				continue
			}

			v, err := s.decode(e)
			if err != nil {
				return 0, err
			}
			fn(e, v)
		}
		archiveOffset = storeEnd
	}

	return archiveOffset, nil
}

func (p *HeaderParser) maxEntries() int {
	if p.MaxEntries <= 0 {
		return models.DefaultMaxEntries
	}
	return p.MaxEntries
}

// padding returns the bytes needed to bring pos to an 8-byte boundary
func padding(pos int64) int64 {
	return (8 - pos%8) % 8
}

// store reads values out of the main header's value store. Every read
// restores the position of r, so the directory walk is unaffected.
type store struct {
	r     io.ReadSeeker
	start int64
	end   int64
}

func (s *store) decode(e Entry) (v TagValue, err error) {
	saved, err := s.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return v, ioError(err)
	}
	defer func() {
		if _, serr := s.r.Seek(saved, io.SeekStart); serr != nil && err == nil {
			err = ioError(serr)
		}
	}()

	off := s.start + int64(e.Offset)
	if _, err := s.r.Seek(off, io.SeekStart); err != nil {
		return v, ioError(err)
	}

	v.Type = e.Type
	switch e.Type {
	case TypeChar, TypeInt8:
		b, err := s.readFixed(off, 1)
		if err != nil {
			return v, err
		}
		v.Int = uint64(b[0])
	case TypeInt16:
		b, err := s.readFixed(off, 2)
		if err != nil {
			return v, err
		}
		v.Int = uint64(binary.BigEndian.Uint16(b))
	case TypeInt32:
		b, err := s.readFixed(off, 4)
		if err != nil {
			return v, err
		}
		v.Int = uint64(binary.BigEndian.Uint32(b))
	case TypeInt64:
		b, err := s.readFixed(off, 8)
		if err != nil {
			return v, err
		}
		v.Int = binary.BigEndian.Uint64(b)
	case TypeString, TypeI18NString, TypeStringArray:
		// Only the first string (first locale, first element) is used
		v.Str, err = s.readString(off)
		if err != nil {
			return v, err
		}
	case TypeBin:
		b, err := s.readFixed(off, min(int64(e.Count), maxBinRender))
		if err != nil {
			return v, err
		}
		v.Str = hex.EncodeToString(b)
	}

	return v, nil
}

func (s *store) readFixed(off, n int64) ([]byte, error) {
	if off+n > s.end {
		return nil, formatError(fmt.Errorf("value at %d overruns the value store", off))
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(s.r, b); err != nil {
		return nil, readError("value", err)
	}
	return b, nil
}

// readString reads up to the first NUL, which must lie inside the store
func (s *store) readString(off int64) (string, error) {
	var out []byte
	buf := make([]byte, 256)

	for off < s.end {
		n := min(int64(len(buf)), s.end-off)
		read, err := io.ReadFull(s.r, buf[:n])
		if i := bytes.IndexByte(buf[:read], 0); i >= 0 {
			return string(append(out, buf[:i]...)), nil
		}
		if err != nil {
			return "", readError("string value", err)
		}
		out = append(out, buf[:read]...)
		off += int64(read)
	}

	return "", formatError(errors.New("unterminated string in value store"))
}

func formatError(err error) error {
	return &models.ExtractError{Type: models.ErrFormatRejected, Err: err}
}

func ioError(err error) error {
	return &models.ExtractError{Type: models.ErrIoFailure, Err: err}
}

// readError classifies a failed read: running out of input means the file
// is not a complete RPM, anything else is an I/O problem
func readError(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return formatError(fmt.Errorf("truncated %s: %w", what, err))
	}
	return ioError(fmt.Errorf("reading %s: %w", what, err))
}
