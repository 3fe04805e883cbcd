// Package router wires handlers, the session gate and metrics into a gin engine.
package router

import (
	"log/slog"

	"go-forecast-backend/handlers"
	"go-forecast-backend/middleware"
	"go-forecast-backend/web"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	Mode              string // gin mode, empty keeps the current one
	SecureCookie      bool
	EnableDiagnostics bool // mount /check_forecasts behind the session gate
	Logger            *slog.Logger
}

// Setup builds the engine. Protected routes all share one SessionMiddleware.
func Setup(h *handlers.Handler, sessions middleware.SessionResolver, opts Options) *gin.Engine {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(opts.Logger))
	r.SetHTMLTemplate(web.Templates())

	// Public routes
	r.GET("/", h.Home)
	r.GET("/register", h.RegisterForm)
	r.POST("/register", h.Register)
	r.GET("/login", h.LoginForm)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Protected routes (require a valid session)
	protected := r.Group("/")
	protected.Use(middleware.SessionMiddleware(sessions, opts.SecureCookie, opts.Logger))
	{
		protected.GET("/submit", h.SubmitForm)
		protected.POST("/submit", h.Submit)
		protected.GET("/forecasts", h.ListForecasts)
		protected.GET("/download_csv", h.DownloadCSV)
		protected.GET("/download_xlsx", h.DownloadXLSX)
		if opts.EnableDiagnostics {
			protected.GET("/check_forecasts", h.CheckForecasts)
		}
	}

	return r
}
