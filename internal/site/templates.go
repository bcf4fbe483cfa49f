package site

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

type errorPage struct {
	Code        int
	Title       string
	Message     string
	Description string
}

var errorCopy = map[int]errorPage{
	http.StatusBadRequest: {
		Title:       "Bad request",
		Message:     "The request could not be processed.",
		Description: "Check the address and try again.",
	},
	http.StatusForbidden: {
		Title:       "Access denied",
		Message:     "You do not have access to this page.",
		Description: "Log in with an account that has the required permissions.",
	},
	http.StatusNotFound: {
		Title:       "Page not found",
		Message:     "The page you requested does not exist or has been removed.",
		Description: "You may have followed a broken link, or the page has moved.",
	},
	http.StatusInternalServerError: {
		Title:       "Something went wrong",
		Message:     "An internal error occurred while handling the request.",
		Description: "Try again in a minute; the failure has been logged.",
	},
}

// ErrorPage returns a handler rendering the themed page for code, so
// routers and middleware serve branded errors instead of the
// framework's plain-text ones. Codes without their own copy reuse the
// 500 wording.
func (s *Server) ErrorPage(code int) http.HandlerFunc {
	pg, ok := errorCopy[code]
	if !ok {
		pg = errorCopy[http.StatusInternalServerError]
	}
	pg.Code = code

	return func(w http.ResponseWriter, _ *http.Request) {
		s.render(w, code, "error.html.tmpl", pg)
	}
}

func (s *Server) notFoundPage(w http.ResponseWriter) {
	s.ErrorPage(http.StatusNotFound)(w, nil)
}
