// Package server is the development HTTP server for a generated site: the
// shell page, the program's Emscripten output and its data files.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/lite-xl/webshell/internal/logger"
)

// Config configures the development server.
type Config struct {
	// SiteDir is the directory served at /.
	SiteDir string
	Addr    string
	// AllowedOrigins enables CORS for these origins. Empty disables CORS.
	AllowedOrigins []string
	Version        string
}

// NewRouter creates the gin router serving cfg.SiteDir.
func NewRouter(cfg Config) (*gin.Engine, error) {
	info, err := os.Stat(cfg.SiteDir)
	if err != nil {
		return nil, fmt.Errorf("accessing site directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", cfg.SiteDir)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.AllowedOrigins,
			AllowMethods:  []string{"GET", "HEAD", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Range"},
			ExposeHeaders: []string{"Content-Length", "Content-Range"},
			MaxAge:        12 * time.Hour,
		}))
	}

	router.Use(LoggingMiddleware())
	router.Use(IsolationMiddleware())
	router.Use(ContentTypeMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.Version})
	})

	files := http.FileServer(http.Dir(cfg.SiteDir))
	router.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.AbortWithStatus(http.StatusMethodNotAllowed)
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	})

	return router, nil
}

// Run serves until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, cfg Config) error {
	router, err := NewRouter(cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Serving %s on %s", cfg.SiteDir, cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Infof("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
