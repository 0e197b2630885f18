package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lrperlmu/emotional-clarity-sub000/internal/cache"
	"github.com/lrperlmu/emotional-clarity-sub000/internal/catalog"
	"github.com/lrperlmu/emotional-clarity-sub000/internal/config"
	"github.com/lrperlmu/emotional-clarity-sub000/internal/repository"
	"github.com/lrperlmu/emotional-clarity-sub000/internal/service"
	"github.com/lrperlmu/emotional-clarity-sub000/internal/transport/rest"
	"github.com/lrperlmu/emotional-clarity-sub000/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// Knowledge base
	kb, err := catalog.LoadKnowledgeBase(cfg.KnowledgePath)
	if err != nil {
		log.Fatal("Failed to load knowledge base:", err)
	}
	log.Printf("Loaded %d knowledge base entries from %s", len(kb), cfg.KnowledgePath)

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDatabase)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories
	participantRepo := repository.NewParticipantRepo(db)
	sessionRepo := repository.NewSessionRepo(db)
	responseRepo := repository.NewResponseRepo(db)
	eventRepo := repository.NewEventRepo(db)

	// Initialize caches
	progressCache := cache.NewProgressCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService(cfg.ResearcherUser, cfg.ResearcherPass, cfg.JWTSecret)
	sessionSvc := service.NewSessionService(
		participantRepo, sessionRepo, responseRepo, eventRepo,
		progressCache, authSvc, kb, cfg.StatementsPerPage,
	)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	sessionSvc.SetBroadcaster(wsHub)

	// Create router with container
	container := &rest.Container{
		AuthService:    authSvc,
		SessionService: sessionSvc,
		WSHub:          wsHub,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  GET  /v1/variants")
		log.Println("  POST /v1/sessions")
		log.Println("  GET  /v1/sessions/current")
		log.Println("  POST /v1/sessions/advance")
		log.Println("  POST /v1/sessions/retreat")
		log.Println("  GET  /v1/studies/sessions")
		log.Println("  GET  /v1/studies/sessions/{sessionId}")
		log.Println("  WS   /v1/ws/sessions/{sessionId}/monitor")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
