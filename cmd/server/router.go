package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/loglens/internal/api"
	apiMiddleware "github.com/phrazzld/loglens/internal/api/middleware"
)

// bodyOverhead leaves room for JSON escaping and the other request fields
// on top of the configured log size limit.
const bodyOverhead = 64 << 10

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.CORS(apiMiddleware.DefaultCORSConfig()))
	r.Use(middleware.Timeout(app.config.Server.RequestTimeout()))

	logHandler := api.NewLogHandler(app.analysisService, api.LogHandlerConfig{
		MaxBodyBytes: 2*app.config.Task.MaxLogBytes + bodyOverhead,
	}, app.logger)
	logHandler.RegisterRoutes(r)

	return r
}
