package web

import (
	"starterkit/config"
	"starterkit/styles"
	"starterkit/web/api"
	"starterkit/web/pages"
	"starterkit/web/pages/shared"

	"github.com/rohanthewiz/rweb"
)

// site is the document shell every page is served in
var site = shared.Page{
	Title:       "Starter Kit",
	Description: "Server rendered starter kit",
}

// setupRoutes configures all application routes
func setupRoutes(s *rweb.Server, cfg *config.Config) {
	s.Get("/", HomeHandler)
	s.Get("/health", api.Health)

	uploads := api.NewUploads(cfg)
	s.Post("/upload", RateLimit(cfg.UploadRate, uploads.Create))
	s.Get("/file/:id", uploads.FileURL)
	s.Get("/uploads", uploads.List)
	s.Get("/uploads/:filename", uploads.Serve)
	s.Get("/api/v1/uploads", uploads.Records)
}

// HomeHandler renders the home page with a fresh style collector per request
func HomeHandler(ctx rweb.Context) error {
	css := styles.NewCollector()
	ctx.Response().SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.WriteHTML(site.Render(css, pages.NewHome(css)))
}
