package util

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"time"
)

var funcs = template.FuncMap{
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("Jan 2, 2006, 15:04")
	},
	// content is sanitised when it is saved
	"richText": func(s string) template.HTML { return template.HTML(s) },
}

// Renderer executes page templates wrapped in the shared "base" layout.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses layout.html together with every other *.html page
// under dir in fsys.
func NewRenderer(fsys fs.FS, dir string) (*Renderer, error) {
	names, err := fs.Glob(fsys, path.Join(dir, "*.html"))
	if err != nil {
		return nil, err
	}
	layout := path.Join(dir, "layout.html")
	r := &Renderer{pages: map[string]*template.Template{}}
	for _, name := range names {
		if name == layout {
			continue
		}
		t, err := template.New("").Funcs(funcs).ParseFS(fsys, layout, name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[path.Base(name)] = t
	}
	return r, nil
}

// Render writes page with the given status. The page is executed into a
// buffer first so a template error never leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("template %s does not exist", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
