package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/lrperlmu/emotional-clarity-sub000/internal/service"
	"github.com/lrperlmu/emotional-clarity-sub000/internal/transport/rest/handler"
	"github.com/lrperlmu/emotional-clarity-sub000/internal/transport/rest/middleware"
	"github.com/lrperlmu/emotional-clarity-sub000/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService    *service.AuthService
	SessionService *service.SessionService
	WSHub          *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	sessionHandler := handler.NewSessionHandler(c.SessionService)
	studyHandler := handler.NewStudyHandler(c.SessionService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/variants", sessionHandler.Variants).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions", sessionHandler.Start).Methods("POST", "OPTIONS")

	// WebSocket routes (researcher token in query param)
	v1.HandleFunc("/ws/sessions/{sessionId}/monitor", wsHandler.MonitorWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Participant routes (require session token)
	participantRoutes := v1.NewRoute().Subrouter()
	participantRoutes.Use(authMW.RequireParticipant)

	participantRoutes.HandleFunc("/sessions/current", sessionHandler.Current).Methods("GET", "OPTIONS")
	participantRoutes.HandleFunc("/sessions/advance", sessionHandler.Advance).Methods("POST", "OPTIONS")
	participantRoutes.HandleFunc("/sessions/retreat", sessionHandler.Retreat).Methods("POST", "OPTIONS")

	// Researcher routes (require researcher auth)
	researcherRoutes := v1.NewRoute().Subrouter()
	researcherRoutes.Use(authMW.RequireResearcher)

	researcherRoutes.HandleFunc("/studies/sessions", studyHandler.ListSessions).Methods("GET", "OPTIONS")
	researcherRoutes.HandleFunc("/studies/sessions/{sessionId}", studyHandler.GetSession).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
