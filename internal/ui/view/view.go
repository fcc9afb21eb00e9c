// Package view renders dashboard pages from embedded templates.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/fraudshield/admin-dashboard/internal/ui/badge"
)

//go:embed templates static
var assets embed.FS

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"badge":        func(v any, text string) template.HTML { return badge.HTML(badge.Variant(fmt.Sprint(v)), text) },
	"status":       badge.Status,
	"score":        badge.Score,
	"scoreVariant": badge.ForScore,
	"label":        badge.Label,
	"join":         strings.Join,
	"money":        func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"pct":          func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	"barChart":     BarChart,
	"lower":        strings.ToLower,
}

// New parses the layout and partials once, then clones them for every
// page template.
func New() (*Renderer, error) {
	base, err := template.New("layout").Funcs(funcs).ParseFS(assets, "templates/layout.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	files, err := fs.Glob(assets, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, f := range files {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(assets, f); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", f, err)
		}
		r.pages[strings.TrimSuffix(path.Base(f), ".html")] = t
	}
	return r, nil
}

// Pages lists the parsed page names.
func (r *Renderer) Pages() []string {
	out := make([]string, 0, len(r.pages))
	for name := range r.pages {
		out = append(out, name)
	}
	return out
}

// Render executes page into w. The page is rendered to a buffer first
// so a template error never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page template %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Static serves the stylesheet and script.
func Static() http.FileSystem {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
