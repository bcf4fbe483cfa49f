package admin

import (
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

//go:embed templates/*.tmpl
var tmplFS embed.FS

var pages = template.Must(template.ParseFS(tmplFS, "templates/*.tmpl"))

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		s.Log.Error("template render failed", zap.String("template", name), zap.Error(err))
	}
}
