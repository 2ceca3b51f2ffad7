package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/blakesmith/ar"
)

const arMagic = ar.GLOBAL_HEADER

var (
	// ErrNotAr is returned when the source does not start with the ar magic
	ErrNotAr = errors.New("not an ar archive")

	// ErrMalformedAr is returned for a member header that cannot be trusted
	ErrMalformedAr = errors.New("malformed ar member header")
)

// ArContainer reads members of an ar archive. Every call rewinds the
// underlying source and streams headers, so only the requested member is
// ever held in memory.
type ArContainer struct {
	r io.ReadSeeker
}

// OpenAr validates the ar global header of r and returns a container over it
func OpenAr(r io.ReadSeeker) (*ArContainer, error) {
	c := &ArContainer{r: r}
	if _, err := c.Members(); err != nil {
		return nil, err
	}
	return c, nil
}

// Members returns member names in archive order
func (c *ArContainer) Members() ([]string, error) {
	var names []string
	err := c.walk(func(name string, _ *ar.Reader, _ int64) (bool, error) {
		names = append(names, name)
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// ReadMember returns the content of the first member called name
func (c *ArContainer) ReadMember(name string) ([]byte, error) {
	var data []byte
	found := false

	err := c.walk(func(member string, rd *ar.Reader, size int64) (bool, error) {
		if member != name {
			return false, nil
		}
		if size > MaxMemberSize {
			return true, fmt.Errorf("%s: %w", name, ErrMemberTooLarge)
		}
		buf := make([]byte, size)
		if _, err := io.ReadFull(rd, buf); err != nil {
			return true, fmt.Errorf("reading %s: %w", name, err)
		}
		data = buf
		found = true
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", name, ErrMemberNotFound)
	}
	return data, nil
}

// walk calls fn for every member header until fn reports done. Each header
// is checked before the ar reader parses it: the reader accepts negative
// sizes, which seek backwards, and panics on short mode fields.
func (c *ArContainer) walk(fn func(name string, rd *ar.Reader, size int64) (bool, error)) (err error) {
	end, err := c.r.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if _, err := c.r.Seek(0, io.SeekStart); err != nil {
		return err
	}
	magic := make([]byte, len(arMagic))
	if _, err := io.ReadFull(c.r, magic); err != nil || string(magic) != arMagic {
		return ErrNotAr
	}
	if _, err := c.r.Seek(0, io.SeekStart); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrMalformedAr, r)
		}
	}()

	rd := ar.NewReader(c.r)
	next := int64(len(arMagic))
	for next < end {
		size, err := c.checkHeader(next, end)
		if err != nil {
			return err
		}

		header, err := rd.Next()
		if err != nil {
			return fmt.Errorf("reading ar header: %w", err)
		}

		done, err := fn(cleanArName(header.Name), rd, header.Size)
		if err != nil || done {
			return err
		}

		// Member data is padded to an even length
		next += ar.HEADER_BYTE_SIZE + size + size%2
	}

	return nil
}

// checkHeader validates the raw member header at off and returns the member
// size. The read position of c.r is left where it was.
func (c *ArContainer) checkHeader(off, end int64) (int64, error) {
	if end-off < ar.HEADER_BYTE_SIZE {
		return 0, fmt.Errorf("%w: truncated header at %d", ErrMalformedAr, off)
	}

	cur, err := c.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	hdr := make([]byte, ar.HEADER_BYTE_SIZE)
	if _, err := c.r.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	if _, err := io.ReadFull(c.r, hdr); err != nil {
		return 0, fmt.Errorf("reading ar header: %w", err)
	}
	if _, err := c.r.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}

	// name[16] mtime[12] uid[6] gid[6] mode[8] size[10] "`\n"
	if string(hdr[58:60]) != "`\n" {
		return 0, fmt.Errorf("%w: bad terminator at %d", ErrMalformedAr, off)
	}
	mode := bytes.TrimRight(hdr[40:48], " ")
	if len(mode) < 3 || !allDigits(mode, '7') {
		return 0, fmt.Errorf("%w: bad mode %q at %d", ErrMalformedAr, mode, off)
	}
	sizeField := bytes.TrimRight(hdr[48:58], " ")
	if len(sizeField) == 0 || !allDigits(sizeField, '9') {
		return 0, fmt.Errorf("%w: bad size %q at %d", ErrMalformedAr, sizeField, off)
	}
	size, err := strconv.ParseInt(string(sizeField), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad size %q at %d", ErrMalformedAr, sizeField, off)
	}
	if size > end-off-ar.HEADER_BYTE_SIZE {
		return 0, fmt.Errorf("%w: member at %d overruns the archive", ErrMalformedAr, off)
	}

	return size, nil
}

func allDigits(b []byte, highest byte) bool {
	for _, ch := range b {
		if ch < '0' || ch > highest {
			return false
		}
	}
	return true
}

// cleanArName strips the padding and the GNU-style trailing slash. BSD long
// names ("#1/NN") are left as they are; dpkg never writes them.
func cleanArName(name string) string {
	return strings.TrimRight(strings.TrimSpace(name), "/")
}
