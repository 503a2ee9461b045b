package web

import (
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
)

// Stylesheet handles GET /css/main.css.
func (s *Server) Stylesheet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFileFS(w, r, s.Static, "css/main.css")
}

// Upload handles GET /uploads/{filename}.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")
	f, err := s.Uploads.Open(name)
	if err != nil {
		if statusFor(err) == http.StatusNotFound {
			http.NotFound(w, r)
			return
		}
		s.fail(w, r, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", mtype.String())
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeContent(w, r, name, info.ModTime(), f)
}
