package project

import "git.home.luguber.info/inful/sitebuilder/internal/metrics"

// Options configures project construction. The zero value is valid.
type Options struct {
	// OutputRoot overrides the default output directory (source root
	// plus the OutputSuffix).
	OutputRoot string

	// Ignore holds additional ignore globs appended to the defaults.
	Ignore []string

	// Attrs is applied as a sequence of attribute mutations through
	// SetAttr. Unknown keys fail construction with a ConfigurationError.
	Attrs map[string]any

	// Metrics receives sync/build observations; nil means NoopRecorder.
	Metrics metrics.Recorder
}

// Attribute names recognized by SetAttr. Both construction-time Attrs
// and the control script's set() go through the same switch.
const (
	AttrContentNegotiation = "assume_content_negotiation"
	AttrDirectoryIndex     = "assume_directory_index"
)

// OutputSuffix is appended to the source root to form the default
// output root.
const OutputSuffix = "_site"

// DefaultIgnores returns the ignore globs every project starts with.
func DefaultIgnores() []string {
	return []string{"_*", ".git", ".gitignore", ".svn", ".sass-cache", "*~", "*.sw[op]"}
}
