package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"reflect"
)

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates(links *Links) (*template.Template, error) {
	funcs := template.FuncMap{
		"postURL": links.Post,
		"lastIndex": func(list any) int {
			value := reflect.ValueOf(list)
			if value.Kind() != reflect.Slice {
				return -1
			}
			return value.Len() - 1
		},
	}
	tmpl, err := template.New("blog").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("http: parse templates: %w", err)
	}
	return tmpl, nil
}

// render executes name into a buffer first so a template failure never
// leaves a half written page.
func (s *Site) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("http.render.failed", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
