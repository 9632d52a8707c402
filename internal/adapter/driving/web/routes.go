package web

import (
	"io/fs"
	"net/http"
)

const (
	homePath     = "/"
	formPath     = "/update-cobj"
	staticPrefix = "/static/"
)

// RegisterRoutes mounts the record pages and the embedded stylesheet on mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	mux.Handle("GET "+staticPrefix, staticHandler())

	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET "+formPath, h.RecordForm)
	mux.HandleFunc("POST "+formPath, h.CreateRecord)
}

func staticHandler() http.Handler {
	root, err := fs.Sub(assets, "static")
	if err != nil {
		panic("web: embedded static directory missing: " + err.Error())
	}
	files := http.StripPrefix(staticPrefix, http.FileServerFS(root))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r)
	})
}
