package rpm

import (
	"strconv"

	"github.com/ralt/pkgmeta/internal/models"
	"github.com/sassoftware/go-rpmutils"
)

// fieldSpec names the semantic field a tag maps to and its value type
type fieldSpec struct {
	name string
	kind models.ValueKind
}

var fieldTable = map[uint32]fieldSpec{
	uint32(rpmutils.NAME):        {models.FieldName, models.KindString},
	uint32(rpmutils.VERSION):     {models.FieldVersion, models.KindString},
	uint32(rpmutils.RELEASE):     {models.FieldRelease, models.KindInt},
	uint32(rpmutils.SUMMARY):     {models.FieldSummary, models.KindString},
	uint32(rpmutils.DESCRIPTION): {models.FieldComment, models.KindString},
	uint32(rpmutils.SIZE):        {models.FieldSize, models.KindInt},
	uint32(rpmutils.VENDOR):      {models.FieldVendor, models.KindString},
	uint32(rpmutils.PACKAGER):    {models.FieldPackager, models.KindString},
	uint32(rpmutils.GROUP):       {models.FieldGroup, models.KindString},
}

// IsMapped reports whether tag has a semantic field
func IsMapped(tag uint32) bool {
	_, ok := fieldTable[tag]
	return ok
}

// MapTag returns the semantic field for tag with v coerced to the field's
// type. ok is false for unmapped tags and for values that cannot be coerced.
func MapTag(tag uint32, v TagValue) (name string, value models.Value, ok bool) {
	field, found := fieldTable[tag]
	if !found {
		return "", value, false
	}

	switch v.Type {
	case TypeInt16, TypeInt32, TypeString, TypeI18NString:
	default:
		return "", value, false
	}

	if field.kind == models.KindString {
		return field.name, models.StringValue(v.String()), true
	}

	if v.IsInt() {
		return field.name, models.IntValue(int64(v.Int)), true
	}
	n, ok := leadingInt(v.Str)
	if !ok {
		return "", value, false
	}
	return field.name, models.IntValue(n), true
}

// leadingInt parses the decimal digits at the start of s, so a release
// such as "3.fc40" yields 3
func leadingInt(s string) (int64, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
