package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"

	"github.com/username/markfolio/backend/src/config"
	"github.com/username/markfolio/backend/src/handlers"
	"github.com/username/markfolio/backend/src/logger"
	"github.com/username/markfolio/backend/src/services"
	"github.com/username/markfolio/backend/src/store"
)

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Markfolio backend server starting...")

	logger.L.Info("Initializing store...", "path", config.Cfg.DatabasePath)
	kv, err := store.NewSQLiteStore(config.Cfg.DatabasePath)
	if err != nil {
		logger.L.Error("Failed to initialize store", "error", err)
		stdlog.Fatalf("Failed to initialize store: %v", err)
	}
	defer kv.Close()
	repo := store.NewRepository(kv)

	logger.L.Info("Initializing report cache...")
	reportCache := cache.New(config.Cfg.CacheExpiration, config.Cfg.CacheCleanupInterval)

	logger.L.Info("Initializing services and handlers...")
	dashboardService := services.NewDashboardService(repo, reportCache)
	tradeHandler := handlers.NewTradeHandler(dashboardService)
	marketHandler := handlers.NewMarketDataHandler(dashboardService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	logger.L.Info("Configuring routes...")
	r := chi.NewRouter()
	r.Use(handlers.RequestID)
	r.Use(handlers.RateLimit(config.Cfg.RateLimitInterval, config.Cfg.RateLimitBurst))
	r.Use(handlers.CORS(config.Cfg.CORSAllowedOrigin))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "MARKFOLIO Backend is running"})
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]bool{"ok": true})
		})

		api.Post("/trades/upload", tradeHandler.HandleUploadTrades)
		api.Post("/trades", tradeHandler.HandleCreateTrade)
		api.Get("/trades", tradeHandler.HandleListTrades)
		api.Delete("/trades", tradeHandler.HandleClearTrades)

		api.Post("/prices/upload", marketHandler.HandleUploadPrices)
		api.Get("/prices", marketHandler.HandleListPrices)
		api.Delete("/prices", marketHandler.HandleClearPrices)

		api.Get("/pnl", dashboardHandler.HandleGetPnL)
		api.Get("/stats", dashboardHandler.HandleGetStats)
		api.Get("/instruments", dashboardHandler.HandleGetInstruments)
		api.Get("/traders", dashboardHandler.HandleGetTraders)
		api.Delete("/data", dashboardHandler.HandleClearAll)
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	}
	logger.L.Info("Server stopped gracefully.")
}
