package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mindgrove/mindgrove-backend/internal/data/graph"
	"github.com/mindgrove/mindgrove-backend/internal/handlers"
	"github.com/mindgrove/mindgrove-backend/internal/middleware"
	"github.com/mindgrove/mindgrove-backend/internal/observability"
	"github.com/mindgrove/mindgrove-backend/internal/platform/config"
	"github.com/mindgrove/mindgrove-backend/internal/platform/logger"
	"github.com/mindgrove/mindgrove-backend/internal/platform/neo4jdb"
	"github.com/mindgrove/mindgrove-backend/internal/server"
	"github.com/mindgrove/mindgrove-backend/internal/services"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Config
	log.Info("Loading configuration from main...")
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Error("Could not load config", "error", err)
		os.Exit(1)
	}

	// Tracing
	ctx := context.Background()
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "mindgrove-backend",
		Environment: os.Getenv("DEPLOY_ENV"),
		Version:     os.Getenv("SERVICE_VERSION"),
	})
	if otelShutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	// Neo4j
	log.Info("Connecting to Neo4j from main...")
	neo4jClient, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Error("Could not init Neo4j client", "error", err)
		os.Exit(1)
	}
	defer neo4jClient.Close(ctx)
	graph.EnsureSchema(ctx, neo4jClient, log)

	// Repos
	log.Info("Setting up repos from main...")
	canvasRepo := graph.NewCanvasRepo(neo4jClient, log)
	topicRepo := graph.NewTopicRepo(neo4jClient, log)

	// Gateways
	log.Info("Setting up gateways from main...")
	geminiClient, err := services.NewGeminiClient(log)
	if err != nil {
		log.Error("Could not init GeminiClient", "error", err)
		os.Exit(1)
	}
	var docSearcher services.DocumentSearcher
	if ds, dsErr := services.NewWeaviateSearcher(log); dsErr != nil {
		log.Warn("Could not init WeaviateSearcher, document context disabled", "error", dsErr)
	} else {
		docSearcher = ds
	}
	var internetSearcher services.InternetSearcher
	if is, isErr := services.NewTavilyClient(log); isErr != nil {
		log.Warn("Could not init TavilyClient, web/news search disabled", "error", isErr)
	} else {
		internetSearcher = is
	}

	// Services
	log.Info("Setting up services from main...")
	canvasService := services.NewCanvasService(log, canvasRepo, topicRepo)
	topicService := services.NewTopicService(log, canvasRepo, topicRepo)
	expansionService := services.NewExpansionService(log, canvasRepo, topicRepo, geminiClient, docSearcher)
	insightService := services.NewInsightService(log, topicRepo, geminiClient, docSearcher, internetSearcher)
	verifier, err := services.NewJWTVerifier(log, cfg.Auth.JWTSecret)
	if err != nil {
		log.Error("Could not init JWTVerifier", "error", err)
		os.Exit(1)
	}

	// Handlers
	log.Info("Setting up handlers from main...")
	canvasHandler := handlers.NewCanvasHandler(log, canvasService)
	topicHandler := handlers.NewTopicHandler(log, topicService)
	aiHandler := handlers.NewAIHandler(log, expansionService, insightService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, verifier)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		Mode:           ginMode(cfg.Server.Mode),
		AllowOrigins:   cfg.Server.AllowOrigins,
		AuthMiddleware: authMiddleware,
		CanvasHandler:  canvasHandler,
		TopicHandler:   topicHandler,
		AIHandler:      aiHandler,
	})

	fmt.Printf("Server listening on :%s\n", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func ginMode(logMode string) string {
	if logMode == "production" {
		return "release"
	}
	return "debug"
}
