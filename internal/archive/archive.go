// Package archive provides read-only access to the container formats nested
// inside a Debian package: the outer ar archive and the tar archives it holds.
package archive

import "errors"

// MaxMemberSize caps the number of bytes ReadMember will buffer
const MaxMemberSize = 64 << 20

var (
	// ErrMemberNotFound is returned by ReadMember when no member has the name
	ErrMemberNotFound = errors.New("member not found")

	// ErrMemberTooLarge is returned when a member exceeds MaxMemberSize
	ErrMemberTooLarge = errors.New("member exceeds size limit")
)

// Container lists and reads the members of an archive
type Container interface {
	// Members returns member names in archive order
	Members() ([]string, error)

	// ReadMember returns the content of the first member called name
	ReadMember(name string) ([]byte, error)
}

// Has reports whether c contains a member called name
func Has(c Container, name string) (bool, error) {
	members, err := c.Members()
	if err != nil {
		return false, err
	}
	for _, m := range members {
		if m == name {
			return true, nil
		}
	}
	return false, nil
}
