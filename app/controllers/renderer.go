package controllers

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"postboard/app/views"
)

// Renderer writes a named page with its context.
type Renderer interface {
	Render(w io.Writer, name string, data map[string]any) error
}

// HTMLRenderer renders the embedded page templates inside the shared layout.
type HTMLRenderer struct {
	templates map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"media": func(key string) string { return "/media/" + key },
	"date":  func(t time.Time) string { return t.Format("2 January 2006 15:04") },
}

// NewHTMLRenderer parses every page once.
func NewHTMLRenderer() (*HTMLRenderer, error) {
	templates := make(map[string]*template.Template, len(views.Pages))
	for _, page := range views.Pages {
		t, err := template.New(page).Funcs(templateFuncs).ParseFS(views.FS,
			"layout.html",
			"includes/*.html",
			page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		templates[page] = t
	}
	return &HTMLRenderer{templates: templates}, nil
}

// Render executes the layout of the named page.
func (r *HTMLRenderer) Render(w io.Writer, name string, data map[string]any) error {
	t, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
