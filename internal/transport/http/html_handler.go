package http

import (
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
)

// ServeFrontend serves the embedded single-page frontend: index.html at
// the root and every other asset by path, with explicit MIME types
// because embedded filesystems carry no extension metadata.
func ServeFrontend(frontendFS fs.FS, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if name == "" {
			name = "index.html"
		}

		file, err := frontendFS.Open(name)
		if err != nil {
			logger.WarnContext(r.Context(), "frontend asset not found",
				slog.String("path", name),
				slog.String("error", err.Error()))
			http.NotFound(w, r)
			return
		}
		defer file.Close()

		if stat, statErr := file.Stat(); statErr == nil && stat.IsDir() {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", contentTypeFor(name))
		w.Header().Set("X-Content-Type-Options", "nosniff")
		if strings.HasSuffix(name, ".html") {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=86400")
		}

		io.Copy(w, file)
	}
}

// contentTypeFor maps asset extensions to MIME types
func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html":
		return "text/html; charset=utf-8"
	case ".js":
		return "application/javascript"
	case ".css":
		return "text/css"
	case ".json":
		return "application/json"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".ico":
		return "image/x-icon"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
