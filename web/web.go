// Package web embeds the HTML templates rendered by the handlers.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses every page; each is addressed by its file name.
func Templates() *template.Template {
	return template.Must(template.ParseFS(files, "templates/*.html"))
}
