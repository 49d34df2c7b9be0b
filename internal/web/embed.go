// Package web provides embedded frontend static files for air-gapped deployment.
package web

import (
	"embed"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
)

//go:embed all:dist
var staticFiles embed.FS

// GetFileSystem returns the embedded filesystem with the dist folder as root.
func GetFileSystem() (fs.FS, error) {
	return fs.Sub(staticFiles, "dist")
}

// HasEmbeddedFiles returns true if the studio frontend has been built
// and embedded.
func HasEmbeddedFiles() bool {
	entries, err := staticFiles.ReadDir("dist")
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if entry.Name() == "index.html" {
			return true
		}
	}
	return false
}

// RegisterStaticRoutes registers the frontend static file routes with Echo.
// The API routes should be registered before calling this function.
func RegisterStaticRoutes(e *echo.Echo) error {
	staticFS, err := GetFileSystem()
	if err != nil {
		return err
	}

	fileServer := http.FileServer(http.FS(staticFS))

	// Serve static files for all non-API routes. Unknown paths fall
	// back to index.html so the SPA router can resolve them.
	e.GET("/*", func(c echo.Context) error {
		requestPath := path.Clean(c.Request().URL.Path)
		if requestPath == "." {
			requestPath = "/"
		}

		file, err := staticFS.Open(strings.TrimPrefix(requestPath, "/"))
		if err != nil {
			return serveIndexHTML(c, staticFS)
		}
		defer file.Close()

		stat, err := file.Stat()
		if err != nil || stat.IsDir() {
			return serveIndexHTML(c, staticFS)
		}

		fileServer.ServeHTTP(c.Response(), c.Request())
		return nil
	})

	return nil
}

// serveIndexHTML serves the main index.html for SPA routing
func serveIndexHTML(c echo.Context, staticFS fs.FS) error {
	indexFile, err := staticFS.Open("index.html")
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "index.html not found")
	}
	defer indexFile.Close()

	content, err := io.ReadAll(indexFile)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read index.html")
	}

	return c.HTMLBlob(http.StatusOK, content)
}
