package models

// DefaultMaxEntries bounds the RPM header directory size
const DefaultMaxEntries = 500

// ExtractConfig contains configuration for metadata extraction
type ExtractConfig struct {
	// Everything requests the exhaustive RPM tag listing
	Everything bool

	// ModernControl lets the Debian extractor fall back to
	// control.tar.xz, control.tar.zst and control.tar
	ModernControl bool

	// MaxEntries is the refusal threshold for RPM header entry counts
	MaxEntries int

	// Output
	Format string // "text" or "yaml"
}

// DefaultExtractConfig returns the configuration used when no flags are given
func DefaultExtractConfig() *ExtractConfig {
	return &ExtractConfig{
		MaxEntries: DefaultMaxEntries,
		Format:     "text",
	}
}
