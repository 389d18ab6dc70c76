package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/akinalp/shopapi/pkg"
)

// UploadsHandler serves stored product images from the upload directory.
type UploadsHandler struct {
	dir string
}

// NewUploadsHandler is the constructor.
func NewUploadsHandler(dir string) *UploadsHandler {
	return &UploadsHandler{dir: dir}
}

// Serve godoc
// GET /uploads/{name}
//
// Only flat file names are served. Anything that could leave the directory,
// and directories themselves, answer 404.
func (h *UploadsHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		pkg.ErrorWithMessage(w, http.StatusNotFound, "file not found")
		return
	}

	f, err := os.Open(filepath.Join(h.dir, name))
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusNotFound, "file not found")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		pkg.ErrorWithMessage(w, http.StatusNotFound, "file not found")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, name, info.ModTime(), f)
}
