package models

import "strconv"

// Semantic field names emitted by the extractors
const (
	FieldName          = "Name"
	FieldVersion       = "Version"
	FieldRelease       = "Release"
	FieldSummary       = "Summary"
	FieldComment       = "Comment"
	FieldSize          = "Size"
	FieldGroup         = "Group"
	FieldVendor        = "Vendor"
	FieldPackager      = "Packager"
	FieldArchiveOffset = "Archive Offset"
)

// ValueKind tells which member of a Value is set
type ValueKind int

const (
	KindString ValueKind = iota
	KindInt
)

// String returns the string representation of ValueKind
func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	default:
		return "unknown"
	}
}

// Value is a typed field value: either a string or a 64-bit integer
type Value struct {
	Kind ValueKind
	Str  string
	Int  int64
}

// StringValue wraps s as a Value
func StringValue(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// IntValue wraps i as a Value
func IntValue(i int64) Value {
	return Value{Kind: KindInt, Int: i}
}

// String renders the value as text
func (v Value) String() string {
	if v.Kind == KindInt {
		return strconv.FormatInt(v.Int, 10)
	}
	return v.Str
}

// Interface returns the value as a plain string or int64
func (v Value) Interface() interface{} {
	if v.Kind == KindInt {
		return v.Int
	}
	return v.Str
}

// PackageMetadata is the result of one extraction call
type PackageMetadata struct {
	// Format is the package type that produced the metadata ("rpm" or "deb")
	Format string
	// Path is the source file, empty when extracted from a stream
	Path string

	// Fields maps semantic field names to typed values. A missing key means
	// the package does not carry that field.
	Fields map[string]Value

	// RawTags maps RPM tag numbers to their string form. Only set when
	// exhaustive output was requested.
	RawTags map[uint32]string
}

// NewPackageMetadata returns an empty result for the given format
func NewPackageMetadata(format string) *PackageMetadata {
	return &PackageMetadata{
		Format: format,
		Fields: make(map[string]Value),
	}
}

// SetString stores a string field
func (m *PackageMetadata) SetString(name, value string) {
	m.Fields[name] = StringValue(value)
}

// SetInt stores an integer field
func (m *PackageMetadata) SetInt(name string, value int64) {
	m.Fields[name] = IntValue(value)
}

// Get returns the value of a field and whether it is present
func (m *PackageMetadata) Get(name string) (Value, bool) {
	v, ok := m.Fields[name]
	return v, ok
}

// GetString returns the text form of a field, or "" if absent
func (m *PackageMetadata) GetString(name string) string {
	if v, ok := m.Fields[name]; ok {
		return v.String()
	}
	return ""
}

// SetRawTag records the string form of an RPM tag
func (m *PackageMetadata) SetRawTag(tag uint32, value string) {
	if m.RawTags == nil {
		m.RawTags = make(map[uint32]string)
	}
	m.RawTags[tag] = value
}
