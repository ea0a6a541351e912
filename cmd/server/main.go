package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/comparaprecos/backend/config"
	httpDelivery "github.com/comparaprecos/backend/internal/delivery/http"
	"github.com/comparaprecos/backend/internal/domain"
	"github.com/comparaprecos/backend/internal/infrastructure/ai"
	"github.com/comparaprecos/backend/internal/infrastructure/cache"
	"github.com/comparaprecos/backend/internal/infrastructure/store"
	"github.com/comparaprecos/backend/internal/usecase"
)

func main() {
	// Load .env if present; real deployments set env vars directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting ComparaPrecos Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	debug := cfg.Server.Environment == "development" || cfg.Matching.EnableDebugLogging

	// Semantic matcher is optional; without an API key the comparison engine
	// simply skips the semantic stage.
	var semantic domain.SemanticMatcher
	aiClient, err := ai.NewClient(ai.Config{
		APIKey:     cfg.AI.APIKey,
		BaseURL:    cfg.AI.BaseURL,
		Model:      cfg.AI.Model,
		BatchSizeA: cfg.AI.BatchSizeA,
		BatchSizeB: cfg.AI.BatchSizeB,
		BatchDelay: cfg.AI.BatchDelay,
	})
	switch {
	case err == nil:
		aiClient.SetDebug(debug)
		semantic = aiClient
		log.Printf("Semantic matching configured: %s (model: %s)", cfg.AI.BaseURL, cfg.AI.Model)
	case errors.Is(err, domain.ErrAIUnavailable):
		log.Printf("WARNING: AI API key not configured - semantic matching disabled")
	default:
		log.Fatalf("Failed to initialize AI client: %v", err)
	}

	// Store scrapers
	italoClient := store.NewItaloClient(cfg.Stores.ItaloBaseURL)
	marconClient := store.NewSearchClient(domain.StoreMarcon, cfg.Stores.MarconBaseURL)
	alfaClient := store.NewSearchClient(domain.StoreAlfa, cfg.Stores.AlfaBaseURL)
	if debug {
		italoClient.SetDebug(true)
		marconClient.SetDebug(true)
		alfaClient.SetDebug(true)
		log.Printf("Store client debug mode enabled")
	}
	storeClients := map[string]domain.StoreClient{
		domain.StoreItalo:  italoClient,
		domain.StoreMarcon: marconClient,
		domain.StoreAlfa:   alfaClient,
	}

	// Synonym dictionary is data: a deployment can extend it via file.
	synonyms := usecase.DefaultSynonyms
	if cfg.Matching.SynonymsFile != "" {
		loaded, err := usecase.LoadSynonymsFile(cfg.Matching.SynonymsFile)
		if err != nil {
			log.Fatalf("Failed to load synonyms file: %v", err)
		}
		synonyms = loaded
		log.Printf("Synonyms loaded from %s (%d entries)", cfg.Matching.SynonymsFile, len(synonyms))
	}

	// Initialize usecase layer
	comparisonService := usecase.NewComparisonService(
		semantic,
		usecase.ComparisonConfig{
			FuzzyThreshold:     cfg.Matching.FuzzyThreshold,
			MaxCandidates:      cfg.Matching.MaxCandidates,
			QuantityTolerance:  cfg.Matching.QuantityTolerance,
			Synonyms:           synonyms,
			SemanticItemCap:    cfg.Matching.SemanticItemCap,
			EnableDebugLogging: cfg.Matching.EnableDebugLogging,
		},
	)

	log.Printf("Matching: fuzzy=%.2f, tolerance=%.0f%%, candidates=%d, debug=%v",
		cfg.Matching.FuzzyThreshold,
		cfg.Matching.QuantityTolerance*100,
		cfg.Matching.MaxCandidates,
		cfg.Matching.EnableDebugLogging)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(comparisonService, storeClients, memoryCache, cfg.Cache.TTL)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
