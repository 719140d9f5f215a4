package app

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ladytrish-Devops/avaloniccornwell.com/internal/handler"
	"github.com/ladytrish-Devops/avaloniccornwell.com/internal/middleware"
	"github.com/ladytrish-Devops/avaloniccornwell.com/internal/web"
)

func (app *App) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Metrics())

	r.Get("/health", handler.Health())
	r.Handle("/metrics", promhttp.Handler())

	// Stored uploads are public by path; the upload dir holds nothing but
	// renamed attachments.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", uploadFileServer(app.config.UploadDir)))

	var notifier handler.Notifier
	if app.queue != nil {
		notifier = app.queue
	}
	submit := handler.NewSubmitHandler(app.logger, app.leads, app.uploads, notifier, app.config.MaxFiles, app.config.MaxFileSizeMB)
	r.Post("/api/submit", submit.Submit)

	admin := handler.NewAdminHandler(app.logger, app.leads, web.Templates)
	r.Group(func(r chi.Router) {
		r.Use(middleware.BasicAuth("leads", app.config.AdminUser, app.config.AdminPassword, app.config.AdminPasswordHash))

		r.Get("/admin", admin.Page)
		r.Get("/api/leads", admin.List)
	})

	return r
}

// uploadFileServer serves files from the upload directory without
// directory listings.
func uploadFileServer(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}
