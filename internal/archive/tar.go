package archive

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"path"
)

// TarContainer reads members of an in-memory tar archive
type TarContainer struct {
	data []byte
}

// OpenTar returns a container over the tar archive held in data
func OpenTar(data []byte) (*TarContainer, error) {
	c := &TarContainer{data: data}
	if _, err := c.Members(); err != nil {
		return nil, err
	}
	return c, nil
}

// Members returns regular file names in archive order. Names are cleaned, so
// "./control" is reported as "control".
func (c *TarContainer) Members() ([]string, error) {
	var names []string
	err := c.walk(func(name string, _ *tar.Reader) (bool, error) {
		names = append(names, name)
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// ReadMember returns the content of the first regular file called name
func (c *TarContainer) ReadMember(name string) ([]byte, error) {
	var data []byte
	found := false
	want := path.Clean(name)

	err := c.walk(func(member string, tr *tar.Reader) (bool, error) {
		if member != want {
			return false, nil
		}
		buf, err := io.ReadAll(io.LimitReader(tr, MaxMemberSize+1))
		if err != nil {
			return true, fmt.Errorf("reading %s: %w", name, err)
		}
		if len(buf) > MaxMemberSize {
			return true, fmt.Errorf("%s: %w", name, ErrMemberTooLarge)
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

func (c *TarContainer) walk(fn func(name string, tr *tar.Reader) (bool, error)) error {
	tr := tar.NewReader(bytes.NewReader(c.data))
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar header: %w", err)
		}

		if header.Typeflag != tar.TypeReg {
			continue
		}

		done, err := fn(path.Clean(header.Name), tr)
		if err != nil || done {
			return err
		}
	}
}
