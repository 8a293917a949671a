// Package render turns source entries into artifact bytes: markdown is
// converted to HTML and optionally wrapped in a layout template, other
// files copy through verbatim.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"

	"git.home.luguber.info/inful/sitebuilder/internal/helpers"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// LayoutFile is the optional wrapper template at the source root. It is
// tracked as an entry without an artifact; its presence is re-checked on
// every render so adding or removing it takes effect without restarts.
const LayoutFile = "layout.tmpl"

// Page is the data handed to the layout template.
type Page struct {
	Title   string
	Path    string // artifact-relative path
	Content template.HTML
}

// Renderer implements site.Renderer on top of goldmark and html/template.
type Renderer struct {
	sourceRoot string
	helpers    *helpers.Registry
	md         goldmark.Markdown
}

// NewRenderer creates a renderer reading sources under sourceRoot. The
// helper registry is consulted at render time, so script re-registrations
// are visible without rebuilding the renderer.
func NewRenderer(sourceRoot string, reg *helpers.Registry) *Renderer {
	return &Renderer{
		sourceRoot: sourceRoot,
		helpers:    reg,
		md:         goldmark.New(),
	}
}

// Render produces the artifact bytes for an entry.
func (r *Renderer) Render(e *site.Entry) ([]byte, error) {
	source, err := os.ReadFile(e.SourcePath())
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	if !isMarkdown(e.Rel()) {
		return source, nil
	}

	var body bytes.Buffer
	if err := r.md.Convert(source, &body); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	return r.applyLayout(e, body.Bytes())
}

// applyLayout wraps rendered HTML in the layout template when one
// exists; without a layout the body is the artifact.
func (r *Renderer) applyLayout(e *site.Entry, body []byte) ([]byte, error) {
	layoutPath := filepath.Join(r.sourceRoot, LayoutFile)
	if _, err := os.Stat(layoutPath); err != nil {
		if os.IsNotExist(err) {
			return body, nil
		}
		return nil, fmt.Errorf("stat layout: %w", err)
	}

	tmpl, err := template.New(LayoutFile).Funcs(r.helpers.FuncMap()).ParseFiles(layoutPath)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	page := Page{
		Title:   pageTitle(e.Rel()),
		Path:    site.OutputPath(e.Rel()),
		Content: template.HTML(body),
	}

	var out bytes.Buffer
	if err := tmpl.Execute(&out, page); err != nil {
		return nil, fmt.Errorf("execute layout: %w", err)
	}
	return out.Bytes(), nil
}

func isMarkdown(rel string) bool {
	switch strings.ToLower(filepath.Ext(rel)) {
	case ".md", ".markdown", ".mdown", ".mkd":
		return true
	}
	return false
}

// pageTitle derives a human title from the file name: "getting-started.md"
// becomes "Getting Started".
func pageTitle(rel string) string {
	base := filepath.Base(rel)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	words := strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
