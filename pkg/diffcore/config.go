package diffcore

// Thresholds above which syntax highlighting is disabled for a file.
const (
	StyledMaxLineLen = 1000
	StyledMaxBytes   = 200_000

	// DefaultEncoding is the fallback encoding list DefaultConfig sets.
	// ToUTF8 does not add it on its own: only the list it is given is tried.
	DefaultEncoding = "iso-8859-15"
)

// Config is the configuration record the core accepts, mirroring the
// site-wide options a deployment can override.
type Config struct {
	// SyntaxHighlighting is the global syntax-highlighting toggle.
	SyntaxHighlighting bool
	// HighlightingThreshold disables highlighting when either side
	// exceeds this many lines. Zero means "no threshold".
	HighlightingThreshold int
	// IncludeSpacePatterns lists glob patterns; filenames matching any of
	// them are diffed with whitespace significant (ignore_space=false).
	IncludeSpacePatterns []string
	// ContextNumLines is the number of context lines kept around a
	// collapsed region.
	ContextNumLines int
	// Encoding is a comma-separated list of fallback encodings tried
	// after strict UTF-8 decoding fails. Defaults to DefaultEncoding.
	Encoding string
	// CompatVersion selects the line-differ implementation.
	// 0 selects the legacy patience-diff based matcher, 1 (the default)
	// selects the Myers-style matcher.
	CompatVersion int
}

// CollapseThreshold returns 2*ContextNumLines + 3, the smallest equal-run
// length that triggers collapsing.
func (c Config) CollapseThreshold() int {
	return 2*c.ContextNumLines + 3
}

// DefaultConfig returns the configuration a site uses when it has not
// overridden any settings.
func DefaultConfig() Config {
	return Config{
		SyntaxHighlighting:    true,
		HighlightingThreshold: 0,
		ContextNumLines:       5,
		Encoding:              DefaultEncoding,
		CompatVersion:         1,
	}
}
