package http

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// ParseTemplates loads the dashboard page and its HTMX fragments
func ParseTemplates() (*template.Template, error) {
	return template.New("").
		Funcs(template.FuncMap{
			"inc": func(n int) int { return n + 1 },
		}).
		ParseFS(templateFS, "templates/*.html")
}
