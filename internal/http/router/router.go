// Package router wires the student handlers and the middleware stack into
// one http.Handler.
package router

import (
	"net/http"

	"github.com/aanand-mishra/students-roster/internal/config"
	"github.com/aanand-mishra/students-roster/internal/http/handlers/student"
	"github.com/aanand-mishra/students-roster/internal/http/middleware"
	"github.com/aanand-mishra/students-roster/internal/storage"
)

// New returns the application handler.
//
// Route table:
//
//	GET    /api/students        → list students (?search=, ?major=)
//	POST   /api/students        → create a student
//	GET    /api/students/{id}   → get one student
//	PUT    /api/students/{id}   → partially update a student
//	DELETE /api/students/{id}   → delete a student
//	GET    /metrics             → Prometheus metrics
func New(store storage.Storage, rl config.RateLimit) http.Handler {
	metrics := middleware.NewMetrics()

	api := http.NewServeMux()
	api.HandleFunc("POST /api/students", student.New(store))
	api.HandleFunc("GET /api/students", student.GetList(store))
	api.HandleFunc("GET /api/students/{id}", student.GetByID(store))
	api.HandleFunc("PUT /api/students/{id}", student.Update(store))
	api.HandleFunc("DELETE /api/students/{id}", student.Delete(store))

	root := http.NewServeMux()
	root.Handle("GET /metrics", metrics.Handler())
	root.Handle("/", wrap(api, rl, metrics))

	return root
}

// wrap applies the middleware stack to the API routes. Logger sits outside
// Recover so a request that panics still gets its access-log line.
func wrap(api http.Handler, rl config.RateLimit, metrics *middleware.Metrics) http.Handler {
	return middleware.Chain(api,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recover,
		middleware.NewRateLimiter(rl.RPS, rl.Burst).Middleware,
		metrics.Middleware,
	)
}
