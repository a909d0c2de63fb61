package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/krautchanpro/TamrielAuctionHouse/pkg/api"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/clock"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/config"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/handlers"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/middleware"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/notifier"
	dydbstore "github.com/krautchanpro/TamrielAuctionHouse/pkg/storage/dynamodb"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/sweeper"
	auctionsync "github.com/krautchanpro/TamrielAuctionHouse/pkg/sync"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// AWS Session
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	dbClient := dynamodb.NewFromConfig(awsCfg)
	sqsClient := sqs.NewFromConfig(awsCfg)

	clk := clock.NewSystem()
	store := dydbstore.New(dbClient, clk, dydbstore.Tables{
		Listings:      cfg.ListingsTable,
		Players:       cfg.PlayersTable,
		Notifications: cfg.NotificationsTable,
		Sales:         cfg.SalesTable,
		Actions:       cfg.ActionsTable,
		Counters:      cfg.CountersTable,
		Cursors:       cfg.CursorsTable,
	}, cfg.ReservationTTL, cfg.RetentionWindow)

	sqsNotifier := notifier.NewSQSNotifier(sqsClient, cfg.SQSQueueURL)
	engine := auctionsync.NewEngine(store, sqsNotifier, clk)
	handler := handlers.NewApiHandler(store, engine, clk)

	// Background sweeper alongside the API. The scheduled lambda covers
	// deployments that scale this process to zero.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweeper.New(store, sqsNotifier, clk).Run(ctx, cfg.SweepInterval)

	// Registration, health, and stats are reachable without a key; everything
	// else requires the X-API-Key minted at registration.
	public := map[string]bool{
		"/api/v1/health":        true,
		"/api/v1/auth/register": true,
		"/api/v1/stats":         true,
	}
	requireKey := middleware.RequireApiKey(store)

	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.NewStructuredLogger(logger))
	router.Use(func(next http.Handler) http.Handler {
		authed := requireKey(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if public[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			authed.ServeHTTP(w, r)
		})
	})
	api.HandlerFromMux(handler, router)

	slog.Info("starting server", "port", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
