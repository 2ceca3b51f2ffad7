package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/ralt/pkgmeta/internal/models"
	"go.yaml.in/yaml/v3"
)

// Fields shown for each package type, in display order
var displayFields = map[string][]string{
	"rpm": {
		models.FieldName,
		models.FieldVersion,
		models.FieldRelease,
		models.FieldSummary,
		models.FieldGroup,
		models.FieldSize,
		models.FieldVendor,
		models.FieldPackager,
		models.FieldArchiveOffset,
		models.FieldComment,
	},
	"deb": {
		models.FieldName,
		models.FieldVersion,
		models.FieldSummary,
		models.FieldSize,
	},
}

// result pairs a path with its metadata or the reason there is none
type result struct {
	path string
	meta *models.PackageMetadata
	err  error
}

// renderer writes results in one output format
type renderer interface {
	Render(r result) error
	Close() error
}

func newRenderer(format string, w io.Writer) renderer {
	if format == "yaml" {
		return &yamlRenderer{enc: yaml.NewEncoder(w)}
	}
	return &textRenderer{w: w}
}

type textRenderer struct {
	w     io.Writer
	count int
}

func (t *textRenderer) Render(r result) error {
	if t.count > 0 {
		fmt.Fprintln(t.w)
	}
	t.count++

	if r.err != nil {
		_, err := fmt.Fprintf(t.w, "%s: no metadata available\n", r.path)
		return err
	}

	fmt.Fprintf(t.w, "%s (%s)\n", r.path, r.meta.Format)
	for _, name := range displayFields[r.meta.Format] {
		v, ok := r.meta.Get(name)
		if !ok {
			continue
		}
		fmt.Fprintf(t.w, "  %-15s %s\n", name+":", v.String())
	}

	if r.meta.RawTags != nil {
		fmt.Fprintln(t.w, "  All tags:")
		for _, tag := range sortedTags(r.meta.RawTags) {
			fmt.Fprintf(t.w, "    %d: %s\n", tag, r.meta.RawTags[tag])
		}
	}
	return nil
}

func (t *textRenderer) Close() error {
	return nil
}

type yamlReport struct {
	Path   string            `yaml:"path"`
	Format string            `yaml:"format,omitempty"`
	Fields *yaml.Node        `yaml:"fields,omitempty"`
	Tags   map[uint32]string `yaml:"tags,omitempty"`
	Error  string            `yaml:"error,omitempty"`
}

type yamlRenderer struct {
	enc *yaml.Encoder
}

func (y *yamlRenderer) Render(r result) error {
	report := yamlReport{Path: r.path}
	if r.err != nil {
		report.Error = r.err.Error()
		return y.enc.Encode(&report)
	}

	fields, err := fieldsNode(r.meta)
	if err != nil {
		return err
	}
	report.Format = r.meta.Format
	report.Fields = fields
	report.Tags = r.meta.RawTags
	return y.enc.Encode(&report)
}

func (y *yamlRenderer) Close() error {
	return y.enc.Close()
}

// fieldsNode builds a mapping that keeps the display order
func fieldsNode(meta *models.PackageMetadata) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range displayFields[meta.Format] {
		v, ok := meta.Get(name)
		if !ok {
			continue
		}
		value := &yaml.Node{}
		if err := value.Encode(v.Interface()); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", name, err)
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: name}, value)
	}
	return node, nil
}

func sortedTags(tags map[uint32]string) []uint32 {
	keys := make([]uint32, 0, len(tags))
	for tag := range tags {
		keys = append(keys, tag)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
