package web

import (
	"embed"
	"io"
	"io/fs"
	"net/http"
	"strings"

	"starterkit/web/api"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"
)

// Embed static directory files
//
//go:embed all:static
var staticFiles embed.FS

const faviconSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 500 500"><rect width="500" height="500" rx="40" fill="#373277"/><text x="250" y="320" font-family="Arial,sans-serif" font-weight="900" font-size="220" fill="#92e5fc" text-anchor="middle">SK</text></svg>`

// SetupStaticFiles configures static file serving using embedded files
func SetupStaticFiles(s *rweb.Server) {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		logger.LogErr(err, "failed to get static subdirectory")
		return
	}

	s.Get("/favicon.ico", func(c rweb.Context) error {
		c.Response().SetHeader("Content-Type", "image/svg+xml")
		c.Response().SetHeader("Cache-Control", "public, max-age=86400")
		return c.Bytes([]byte(faviconSVG))
	})

	s.Get("/robots.txt", func(c rweb.Context) error {
		return serveFile(c, staticFS, "robots.txt")
	})

	s.Get("/static/*", func(c rweb.Context) error {
		return serveFile(c, staticFS, strings.TrimPrefix(c.Request().Path(), "/static/"))
	})
}

func serveFile(c rweb.Context, staticFS fs.FS, path string) error {
	file, err := staticFS.Open(path)
	if err != nil {
		c.SetStatus(http.StatusNotFound)
		return nil
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		c.SetStatus(http.StatusInternalServerError)
		return nil
	}
	if stat.IsDir() {
		c.SetStatus(http.StatusNotFound)
		return nil
	}

	if contentType := api.ContentType(path); contentType != "" {
		c.Response().SetHeader("Content-Type", contentType)
	}

	if isAsset(path) {
		c.Response().SetHeader("Cache-Control", "public, max-age=31536000") // 1 year
	} else {
		c.Response().SetHeader("Cache-Control", "public, max-age=3600") // 1 hour
	}

	content, err := io.ReadAll(file)
	if err != nil {
		c.SetStatus(http.StatusInternalServerError)
		return nil
	}

	return c.Bytes(content)
}

// isAsset checks if the path is a long-lived cacheable asset
func isAsset(path string) bool {
	return strings.HasSuffix(path, ".woff2") ||
		strings.HasSuffix(path, ".woff") ||
		strings.HasSuffix(path, ".ttf")
}
