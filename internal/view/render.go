package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.gohtml
var templatesFS embed.FS

// Renderer рендерит панель продаж из встроенных шаблонов.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer разбирает встроенные шаблоны.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("dashboard").ParseFS(templatesFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render записывает HTML-страницу панели.
func (r *Renderer) Render(w io.Writer, p Page) error {
	return r.tmpl.ExecuteTemplate(w, "layout", p)
}
