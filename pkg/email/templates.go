package email

import (
	"embed"
	"html/template"
)

// Şablonlar binary'ye gömülür; deploy'da yanlarında dosya taşınmaz.
//
//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}
