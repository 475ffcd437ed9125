package views

import (
	"embed"
	"html/template"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var files embed.FS

var funcs = template.FuncMap{
	"css": func(s string) template.CSS { return template.CSS(s) },
	"lines": func(s string) []string {
		var out []string
		for _, line := range strings.Split(s, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	},
}

// Templates parses every page template.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(files, "templates/*.html"))
}

// Install registers the page templates on the engine.
func Install(r *gin.Engine) {
	r.SetHTMLTemplate(Templates())
}
