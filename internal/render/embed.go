package render

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

var templates = template.Must(template.ParseFS(embeddedTemplates, "templates/*.tmpl"))

// TemplatesFS exposes the embedded template bundle.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
