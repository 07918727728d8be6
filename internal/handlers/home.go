package handlers

import (
	_ "embed"
	"html/template"
	"log"
	"net/http"
)

//go:embed home.html
var homeHTML string

var homeTemplate = template.Must(template.New("home").Parse(homeHTML))

// Home renders the built-in upload page. A static frontend directory, when
// configured, takes over the root path instead.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := homeTemplate.Execute(w, map[string]string{
		"Title": "MNIST Classification Service",
	}); err != nil {
		log.Printf("Failed to render homepage: %v", err)
	}
}
