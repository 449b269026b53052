package server

import (
	"path"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lite-xl/webshell/internal/logger"
)

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		p := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			p = p + "?" + raw
		}
		logger.Infof("[%s] %s - %d (%v)", c.Request.Method, p, c.Writer.Status(), time.Since(start))
	}
}

// IsolationMiddleware makes the page cross-origin isolated. Threaded
// Emscripten builds need SharedArrayBuffer, which browsers only expose to
// isolated pages.
func IsolationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		h.Set("Cross-Origin-Embedder-Policy", "require-corp")
		h.Set("Cross-Origin-Resource-Policy", "same-origin")
		c.Next()
	}
}

// ContentTypeMiddleware sets MIME types that browsers are strict about.
func ContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch path.Ext(c.Request.URL.Path) {
		case ".wasm":
			c.Header("Content-Type", "application/wasm")
		case ".js", ".mjs":
			c.Header("Content-Type", "text/javascript; charset=utf-8")
		case ".data":
			c.Header("Content-Type", "application/octet-stream")
		}
		c.Next()
	}
}
