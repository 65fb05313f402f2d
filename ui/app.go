// Package ui serves the analytics dashboard: the HTML pages, the JSON
// chart API consumed by the front end and the upload endpoints.
package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Manuqueiroz1/relatorio-email/internal"
	"github.com/Manuqueiroz1/relatorio-email/internal/config"
	"github.com/Manuqueiroz1/relatorio-email/internal/report"
	"github.com/Manuqueiroz1/relatorio-email/internal/uploads"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// App represents the dashboard application.
type App struct {
	router    *chi.Mux
	templates *template.Template
	processor *report.Processor
	staging   *uploads.LocalFileStorage
	cfg       *config.Config
	logger    *internal.Logger
}

// NewApp wires the dashboard around an already loaded processor.
func NewApp(cfg *config.Config, processor *report.Processor) (*App, error) {
	funcMap := template.FuncMap{
		"pct": func(v float64) string { return fmt.Sprintf("%.1f%%", v*100) },
		"num": func(v int64) string {
			// Thousands separated with dots, as the dashboard audience reads them.
			s := fmt.Sprintf("%d", v)
			out := ""
			for i, r := range s {
				if i > 0 && (len(s)-i)%3 == 0 {
					out += "."
				}
				out += string(r)
			}
			return out
		},
		"add": func(a, b int) int { return a + b },
		"trend": func(v *float64) string {
			if v == nil {
				return ""
			}
			return fmt.Sprintf("%+.1f%%", *v)
		},
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app := &App{
		router:    chi.NewRouter(),
		templates: templates,
		processor: processor,
		staging:   uploads.NewLocalFileStorage(cfg.Storage.UploadDir),
		cfg:       cfg,
		logger:    internal.DefaultLogger,
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	// Serve static files
	staticFS := http.FileServer(http.FS(embeddedFiles))
	a.router.Handle("/static/*", staticFS)
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	// Main pages
	a.router.Get("/", a.handleDashboard)
	a.router.Get("/semanal", a.handleWeekly)
	a.router.Get("/automacoes", a.handleAutomations)
	a.router.Get("/assuntos", a.handleSubjects)
	a.router.Get("/upload", a.handleUploadPage)

	// Upload endpoints
	a.router.Post("/api/upload/mapeamento", a.handleMappingUpload)
	a.router.Post("/api/upload/semanas", a.handleWeeklyUpload)

	// JSON API
	a.router.Get("/api/resumo", a.handleOverviewJSON)
	a.router.Get("/api/semanas", a.handleWeeksJSON)
	a.router.Get("/api/automacoes", a.handleAutomationsJSON)
	a.router.Get("/api/assuntos", a.handleSubjectsJSON)

	// Chart specifications per page
	a.router.Get("/api/charts/dashboard", a.handleDashboardCharts)
	a.router.Get("/api/charts/semanal", a.handleWeeklyCharts)
	a.router.Get("/api/charts/automacoes", a.handleAutomationCharts)
	a.router.Get("/api/charts/assuntos", a.handleSubjectCharts)

	// Export
	a.router.Get("/api/export/xlsx", a.handleExportXLSX)
}

// Start starts the HTTP server
func (a *App) Start() error {
	addr := ":" + a.cfg.Server.Port
	a.logger.Info("starting dashboard on %s", addr)
	return http.ListenAndServe(addr, a.router)
}

// Router exposes the mux for tests.
func (a *App) Router() http.Handler {
	return a.router
}

func (a *App) renderTemplate(w http.ResponseWriter, templateName string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.templates.ExecuteTemplate(w, templateName, data); err != nil {
		a.logger.Error("template %s: %v", templateName, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}
