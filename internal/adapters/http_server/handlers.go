// internal/adapters/http_server/handlers.go
package httpserver

import (
	"encoding/json"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Handlers serves a directory for local browser testing of the rendered map.
type Handlers struct{ Root string }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/*", h.static)
	s.mux.Head("/*", h.static)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// static serves files under Root. Directories resolve to their index.html;
// there are no listings and nothing outside Root is reachable.
func (h *Handlers) static(w http.ResponseWriter, r *http.Request) {
	rel := path.Clean("/" + r.URL.Path)
	if strings.Contains(rel, "\x00") {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "invalid path")
		return
	}
	name := filepath.Join(h.Root, filepath.FromSlash(rel))

	fi, err := os.Stat(name)
	if err == nil && fi.IsDir() {
		name = filepath.Join(name, "index.html")
		fi, err = os.Stat(name)
	}
	if err != nil || fi.IsDir() {
		writeProblem(w, http.StatusNotFound, "Not Found", rel)
		return
	}

	// generated files change between runs; make the browser revalidate
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, name)
}
