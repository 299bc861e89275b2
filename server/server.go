package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/umputun/breakmap/pkg/config"
	"github.com/umputun/breakmap/pkg/dataset"
	"github.com/umputun/breakmap/pkg/domain"
	"github.com/umputun/breakmap/pkg/palette"
	"github.com/umputun/breakmap/pkg/view"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/dataset.go -pkg mocks -skip-ensure -fmt goimports . Dataset

//go:embed templates
var templatesFS embed.FS

// Server represents HTTP server instance
type Server struct {
	config  ConfigProvider
	dataset Dataset
	palette *palette.Palette
	tooltip *view.Tooltip
	version string
	debug   bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
	templates  *template.Template
}

// Dataset provides the parsed table
type Dataset interface {
	Current() dataset.Snapshot
	Invalidate(ctx context.Context) dataset.Snapshot
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
	GetFullConfig() *config.Config
}

// New initializes a new server instance
func New(cfg ConfigProvider, ds Dataset, pal *palette.Palette, version string, debug bool) (*Server, error) {
	tooltip, err := view.NewTooltip(cfg.GetFullConfig().Map.Tooltip)
	if err != nil {
		return nil, fmt.Errorf("tooltip: %w", err)
	}

	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		config:    cfg,
		dataset:   ds,
		palette:   pal,
		tooltip:   tooltip,
		version:   version,
		debug:     debug,
		router:    routegroup.New(http.NewServeMux()),
		templates: tmpl,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	log.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.router,
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("breakmap", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	// web UI
	s.router.HandleFunc("GET /{$}", s.indexHandler)
	s.router.HandleFunc("GET /table", s.tableHandler)
	s.router.HandleFunc("GET /rss", s.rssHandler)

	// API routes
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /columns", s.columnsHandler)
		r.HandleFunc("GET /table", s.tableJSONHandler)
		r.HandleFunc("GET /filters", s.filtersHandler)
		r.HandleFunc("GET /geojson", s.geojsonHandler)
		r.HandleFunc("GET /color/{value}", s.colorHandler)
		r.HandleFunc("POST /reload", s.reloadHandler)
	})

	s.router.Handle("GET /metrics", promhttp.Handler())
}

// selections reads filter values for configured filter columns from query params,
// e.g. ?year=2020&year=2021&status=Closed
func (s *Server) selections(r *http.Request) map[string][]string {
	res := map[string][]string{}
	query := r.URL.Query()
	for _, col := range s.config.GetFullConfig().Filters {
		for _, v := range query[col] {
			if v != "" {
				res[col] = append(res[col], v)
			}
		}
	}
	return res
}

// filtered returns the current table with request filters applied.
// ok is false if data is not available, the error is reported to the client in this case.
func (s *Server) filtered(w http.ResponseWriter, r *http.Request) (*domain.Table, bool) {
	snap := s.dataset.Current()
	if snap.Err != nil {
		renderError(w, r, snap.Err, http.StatusServiceUnavailable)
		return nil, false
	}
	return view.Filter(snap.Table, s.selections(r)), true
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"hex": func(c domain.Color) string { return c.Hex() },
	}
}
