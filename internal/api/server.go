// Package api serves the dashboard over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/quakeboard/internal/grid"
	"github.com/sells-group/quakeboard/internal/query"
	"github.com/sells-group/quakeboard/internal/store"
)

// Server holds the read-only engine and the saved-view store behind the
// HTTP handlers.
type Server struct {
	engine *query.Engine
	grid   *grid.Builder
	store  store.Store
	cache  *ResponseCache
}

// NewServer creates a Server. st may be nil, in which case the views
// routes are not mounted.
func NewServer(engine *query.Engine, builder *grid.Builder, st store.Store) *Server {
	return &Server{engine: engine, grid: builder, store: st}
}

// WithCache serves the read-only query endpoints through c.
func (s *Server) WithCache(c *ResponseCache) *Server {
	s.cache = c
	return s
}

// Router builds the chi router. corsOrigins lists allowed origins; "*"
// allows any.
func (s *Server) Router(corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/options", s.handleOptions)
		r.Group(func(r chi.Router) {
			if s.cache != nil {
				r.Use(s.cache.Middleware)
			}
			r.Get("/records", s.handleRecords)
			r.Get("/aggregate", s.handleAggregate)
			r.Get("/grid", s.handleGrid)
			r.Get("/map", s.handleMap)
		})
		r.Get("/grid.xlsx", s.handleGridExport)
		if s.cache != nil {
			r.Get("/cache", s.handleCacheStats)
		}

		if s.store != nil {
			r.Route("/views", func(r chi.Router) {
				r.Get("/", s.handleListViews)
				r.Post("/", s.handleCreateView)
				r.Get("/{id}", s.handleGetView)
				r.Delete("/{id}", s.handleDeleteView)
				r.Get("/{id}/grid", s.handleViewGrid)
			})
		}
	})
	return r
}

// requestLogger logs each request with zap once it completes.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
