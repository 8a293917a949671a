// Package linkcheck verifies relative links in built HTML artifacts.
// It is a post-build diagnostic pass: issues are reported, never fatal.
package linkcheck

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Issue is one unresolvable relative link found in a built artifact.
type Issue struct {
	Artifact string // output-relative path of the HTML file
	Link     string // the offending href/src value
	Target   string // output-relative path the link resolved to
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: link %q resolves to missing %q", i.Artifact, i.Link, i.Target)
}

// linkAttrs maps element tags to the attribute carrying their link.
var linkAttrs = map[string]string{
	"a":      "href",
	"link":   "href",
	"img":    "src",
	"script": "src",
}

// CheckDir walks outputRoot and reports relative links in .html files
// that resolve to paths missing from the output tree. Absolute URLs,
// fragments, and mailto links are out of scope.
func CheckDir(outputRoot string) ([]Issue, error) {
	var issues []Issue

	err := filepath.WalkDir(outputRoot, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(p), ".html") {
			return nil
		}

		rel, err := filepath.Rel(outputRoot, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		found, err := checkFile(outputRoot, rel)
		if err != nil {
			return fmt.Errorf("check %s: %w", rel, err)
		}
		issues = append(issues, found...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk output root: %w", err)
	}
	return issues, nil
}

func checkFile(outputRoot, rel string) ([]Issue, error) {
	file, err := os.Open(filepath.Join(outputRoot, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close() // read-only
	}()

	links, err := extractLinks(file)
	if err != nil {
		return nil, err
	}

	var issues []Issue
	for _, link := range links {
		target, ok := resolveRelative(rel, link)
		if !ok {
			continue
		}
		if _, err := os.Stat(filepath.Join(outputRoot, filepath.FromSlash(target))); err != nil {
			issues = append(issues, Issue{Artifact: rel, Link: link, Target: target})
		}
	}
	return issues, nil
}

// extractLinks parses HTML and collects href/src values from link-like
// elements.
func extractLinks(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attrName, ok := linkAttrs[n.Data]; ok {
				for _, attr := range n.Attr {
					if attr.Key == attrName && attr.Val != "" {
						links = append(links, attr.Val)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

// resolveRelative resolves a link found in the file at rel to an
// output-relative path. Returns ok=false for links that are not
// same-site relative paths (absolute URLs, fragments, mailto, rooted
// paths pointing outside the tree).
func resolveRelative(rel, link string) (string, bool) {
	u, err := url.Parse(link)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return "", false
	}

	var target string
	if strings.HasPrefix(u.Path, "/") {
		target = path.Clean(strings.TrimPrefix(u.Path, "/"))
	} else {
		target = path.Clean(path.Join(path.Dir(rel), u.Path))
	}
	if target == "." || strings.HasPrefix(target, "../") {
		return "", false
	}
	return target, true
}
