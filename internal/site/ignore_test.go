package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesAny(t *testing.T) {
	defaults := []string{"_*", ".git", ".gitignore", ".svn", ".sass-cache", "*~", "*.sw[op]"}

	cases := []struct {
		name string
		rel  string
		want bool
	}{
		{"underscore file", "_partial.html", true},
		{"underscore directory prunes children", "_drafts/post.md", true},
		{"nested underscore segment", "docs/_inner/page.md", true},
		{"git directory", ".git/config", true},
		{"gitignore file", ".gitignore", true},
		{"backup suffix", "notes.txt~", true},
		{"vim swap o", "page.swo", true},
		{"vim swap p", "page.swp", true},
		{"plain page", "index.html", false},
		{"markdown in subdir", "docs/guide.md", false},
		{"swq not in class", "page.swq", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MatchesAny(tc.rel, defaults), "rel=%s", tc.rel)
		})
	}
}

func TestMatchesAnyDuplicatesAndEmpty(t *testing.T) {
	assert.False(t, MatchesAny("", []string{"_*"}))
	assert.False(t, MatchesAny("index.html", nil))
	assert.True(t, MatchesAny("_x", []string{"_*", "_*"}))
}

func TestMatchesAnyInvalidPattern(t *testing.T) {
	// A malformed character class never matches rather than failing.
	assert.False(t, MatchesAny("anything", []string{"[unclosed"}))
}
