package editor

import (
	"net/http"
	"strings"
	"time"

	"github.com/alexanderramin/showcase/internal/logging"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func (s *Server) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(s.log))
	router.Use(CORS())

	api := router.Group("/api")
	{
		api.GET("/data/:lang", s.getData)
		api.POST("/data/:lang", s.saveData)
		api.POST("/upload/:lang/*path", s.upload)
		api.GET("/collected/*path", s.collected)
		api.POST("/build", s.build)
		api.HEAD("/*path", func(c *gin.Context) { c.Status(http.StatusOK) })
	}

	static := http.FileServer(http.Dir(s.opts.StaticDir))
	router.NoRoute(func(c *gin.Context) {
		switch {
		case c.Request.Method == http.MethodOptions:
			c.Status(http.StatusOK)
		case strings.HasPrefix(c.Request.URL.Path, "/api/"):
			respondError(c, http.StatusNotFound, "API not found")
		case c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead:
			static.ServeHTTP(c.Writer, c.Request)
		default:
			respondError(c, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	return router
}

// CORS opens the API to any origin; the editor page may be opened from a
// different port or from disk.
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:              []string{"Content-Type"},
		OptionsResponseStatusCode: http.StatusOK,
	})
}

func RequestLogger(log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Debug("HTTP request", fields...)
		}
	}
}
