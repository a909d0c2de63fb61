package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"

	"github.com/krautchanpro/TamrielAuctionHouse/pkg/clock"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/config"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/notifier"
	dydbstore "github.com/krautchanpro/TamrielAuctionHouse/pkg/storage/dynamodb"
	"github.com/krautchanpro/TamrielAuctionHouse/pkg/sweeper"
)

var sweep *sweeper.Sweeper

func init() {
	// Load environment variables for local testing.
	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

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

	sweep = sweeper.New(store, notifier.NewSQSNotifier(sqsClient, cfg.SQSQueueURL), clk)
}

// HandleRequest is triggered by an EventBridge Schedule. One invocation runs
// one sweep pass; the pass is idempotent, so overlapping invocations are
// harmless.
func HandleRequest(ctx context.Context) error {
	_, err := sweep.Sweep(ctx)
	return err
}

func main() {
	lambda.Start(HandleRequest)
}
