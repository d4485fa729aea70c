package main

import (
	"net/http"

	"tasks-api/config"
	"tasks-api/handlers"
	"tasks-api/utilities"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// NewRouter registers the task routes. Task ids must be decimal digits; any
// other path segment falls through to the JSON 404 handler.
func NewRouter(h *handlers.TaskHandler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", handlers.HealthHandler).Methods("GET")

	r.HandleFunc("/tasks", h.CreateTaskHandler).Methods("POST")
	r.HandleFunc("/tasks", h.ListTasksHandler).Methods("GET")
	r.HandleFunc("/tasks/{id:[0-9]+}", h.GetTaskHandler).Methods("GET")
	r.HandleFunc("/tasks/{id:[0-9]+}", h.UpdateTaskHandler).Methods("PUT")
	r.HandleFunc("/tasks/{id:[0-9]+}", h.DeleteTaskHandler).Methods("DELETE")

	r.NotFoundHandler = handlers.NotFoundHandler()
	r.MethodNotAllowedHandler = handlers.MethodNotAllowedHandler()

	return r
}

// LoadRoutes wraps the router with panic recovery, CORS and request logging.
func LoadRoutes(cfg config.ServerConfig, h *handlers.TaskHandler) http.Handler {
	r := NewRouter(h)

	recovered := gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(utilities.ErrorLogger),
		gorillahandlers.PrintRecoveryStack(true),
	)(r)

	headers := gorillahandlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", "Authorization"})
	methods := gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	origins := gorillahandlers.AllowedOrigins(cfg.CORSAllowedOrigins)
	exposed := gorillahandlers.ExposedHeaders([]string{handlers.RequestIDHeader})
	utilities.LogInfo("Configuring CORS with allowed origins: %v", cfg.CORSAllowedOrigins)

	return handlers.LoggingMiddleware(gorillahandlers.CORS(headers, methods, origins, exposed)(recovered))
}
