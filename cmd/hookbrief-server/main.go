// hookbrief-server exposes the analysis pipeline and the generation
// jobs over HTTP. Run records persist in DynamoDB, full results archive
// gzipped to S3, and run-finished events fan out to EventBridge and
// Telegram.
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/viralab/hookbrief/internal/analyzer"
	"github.com/viralab/hookbrief/internal/credentials"
	"github.com/viralab/hookbrief/internal/generator"
	"github.com/viralab/hookbrief/internal/logging"
	"github.com/viralab/hookbrief/internal/notify"
	"github.com/viralab/hookbrief/internal/store"
)

func main() {
	start := time.Now()
	logging.Init()

	addr := logging.EnvOrDefault("HOOKBRIEF_ADDR", ":8080")
	tableName := logging.EnvOrDefault("HOOKBRIEF_TABLE", "hookbrief-runs")
	bucket := logging.EnvOrDefault("HOOKBRIEF_BUCKET", "hookbrief-results")
	eventBus := os.Getenv("HOOKBRIEF_EVENT_BUS")
	telegramToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	telegramChat := os.Getenv("TELEGRAM_CHAT_ID")
	generatorKey := os.Getenv("OPENAI_API_KEY")

	ctx := context.Background()
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}

	runStore := store.NewDynamoStore(dynamodb.NewFromConfig(cfg), tableName)
	archiver := store.NewArchiver(s3.NewFromConfig(cfg), bucket)

	resolver := credentials.NewChain(
		credentials.EnvResolver{},
		credentials.NewSSMResolver(ssm.NewFromConfig(cfg), ""),
	)

	publishers := notify.Fanout{
		notify.NewEventBridgePublisher(eventbridge.NewFromConfig(cfg), eventBus),
	}
	if telegramToken != "" {
		publishers = append(publishers, notify.NewTelegram(telegramToken, telegramChat, ""))
	}

	var genClient *generator.Client
	if generatorKey != "" {
		genClient = generator.NewClient(generatorKey, "")
	}

	srv := &server{
		resolver:  resolver,
		store:     runStore,
		archiver:  archiver,
		publisher: publishers,
		generator: genClient,
	}

	logging.NewStartupLogger("hookbrief-server").
		DynamoTable("runs", tableName).
		S3Bucket("results", bucket).
		EventBus("notifications", eventBus).
		Feature("telegram", telegramToken != "").
		Feature("generation", genClient != nil).
		Config("addr", addr).
		Config("model", analyzer.GetModelName()).
		InitDuration(time.Since(start)).
		Log()

	mux := http.NewServeMux()
	srv.routes(mux)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info().Str("addr", addr).Msg("Listening")
	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
