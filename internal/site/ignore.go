package site

import (
	"path"
	"strings"
)

// MatchesAny reports whether any segment of the slash-separated relative
// path matches one of the glob patterns. Matching each segment means a
// pattern like `_*` prunes both `_partial.html` and everything under an
// `_drafts/` directory, and character classes (`*.sw[op]`) work through
// path.Match semantics. Invalid patterns never match.
func MatchesAny(rel string, patterns []string) bool {
	if rel == "" || len(patterns) == 0 {
		return false
	}
	for _, segment := range strings.Split(rel, "/") {
		for _, pattern := range patterns {
			if ok, err := path.Match(pattern, segment); err == nil && ok {
				return true
			}
		}
	}
	return false
}
