package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"

	"github.com/dreamware/iconshard/internal/iconset"
	"github.com/dreamware/iconshard/internal/registry"
	"github.com/dreamware/iconshard/internal/storage"
)

// Config holds the HTTP server settings.
type Config struct {
	Logger *slog.Logger
	Bind   string

	// CacheSize is the number of icon batch responses kept in memory.
	// 0 disables the response cache.
	CacheSize int

	// AllowOrigins lists CORS origins. Empty means any origin.
	AllowOrigins []string

	// Version is reported by the health endpoint.
	Version string
}

// Server serves icon data from a registry over HTTP.
type Server struct {
	registry *registry.Registry
	storage  *storage.MemoryStorage[iconset.IconMap]
	reloader *registry.Reloader

	echo    *echo.Echo
	httpd   *http.Server
	logger  *slog.Logger
	cache   *lru.Cache[string, []byte]
	version string
}

// New creates a server. store is only used for health reporting.
func New(reg *registry.Registry, store *storage.MemoryStorage[iconset.IconMap], config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	srv := &Server{
		registry: reg,
		storage:  store,
		logger:   logger.With("component", "server"),
		version:  config.Version,
	}

	if config.CacheSize > 0 {
		cache, err := lru.New[string, []byte](config.CacheSize)
		if err != nil {
			return nil, err
		}
		srv.cache = cache
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: config.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
	}))
	e.HTTPErrorHandler = srv.errorHandler

	e.GET("/_health", srv.HandleHealthCheck)
	e.GET("/collections", srv.HandleCollections)
	e.GET("/:file", srv.HandleIcons)
	e.GET("/:prefix/:file", srv.HandleIcon)
	srv.echo = e

	srv.httpd = &http.Server{
		Handler:           srv,
		Addr:              config.Bind,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      time.Minute,
	}
	return srv, nil
}

// SetReloader makes the health endpoint report file reload status.
func (srv *Server) SetReloader(r *registry.Reloader) {
	srv.reloader = r
}

func (srv *Server) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	srv.echo.ServeHTTP(rw, req)
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (srv *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		srv.logger.Info("starting server", "bind", srv.httpd.Addr)
		if err := srv.httpd.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	return srv.Shutdown()
}

// Shutdown stops accepting requests and waits up to 10 seconds for running
// ones.
func (srv *Server) Shutdown() error {
	srv.logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.httpd.Shutdown(ctx)
}
