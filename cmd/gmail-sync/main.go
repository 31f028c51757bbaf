package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/gmail"
	applog "fintrack/internal/log"
)

// On the first poll we look back one day so messages received
// while the syncer was down are not lost.
const initialLookback = 24 * time.Hour

func main() {
	_ = godotenv.Load()

	cfgLog := applog.DefaultConfig()
	cfgLog.Component = applog.ComponentGmail
	logger := applog.SetDefault(cfgLog)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for gmail-sync")
		os.Exit(1)
	}

	gmailClient, err := gmail.NewFromEnv()
	if err != nil {
		logger.Error("Failed to initialize Gmail client", "error", err)
		os.Exit(1)
	}
	if !gmailClient.HasToken() {
		logger.Error("No Gmail token found, run oauth-init first")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	amqpClient, err := amqp.DialWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, 10)
	if err != nil {
		logger.Error("Failed to connect to AMQP broker", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	logger.Info("Gmail sync started", "interval", cfg.GmailSyncInterval.String())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return pollLoop(ctx, gmailClient, amqpClient, cfg.GmailSyncInterval)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error("Gmail sync stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Gmail sync stopped gracefully")
}

func pollLoop(ctx context.Context, gm *gmail.Client, publisher *amqp.Client, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastSync := time.Now().Add(-initialLookback)
	poll(ctx, gm, publisher, &lastSync)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			poll(ctx, gm, publisher, &lastSync)
		}
	}
}

// poll publishes every bank message received since lastSync and advances
// the watermark only past messages that were published successfully, so a
// broker outage retries them on the next tick. The ingest worker dedupes
// redeliveries.
func poll(ctx context.Context, gm *gmail.Client, publisher *amqp.Client, lastSync *time.Time) {
	messages, err := gm.ListBankMessages(ctx, *lastSync)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list bank messages", "error", err)
		return
	}
	if len(messages) == 0 {
		return
	}

	published := 0
	for _, m := range messages {
		msg := &amqp.IngestMessage{
			Source:     "gmail",
			Text:       m.Snippet,
			ReceivedAt: m.Received,
		}
		if err := publisher.PublishIngest(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish ingest message", "error", err, "message_id", m.ID)
			break
		}
		published++
		if m.Received.After(*lastSync) {
			*lastSync = m.Received
		}
	}

	slog.InfoContext(ctx, "Gmail poll complete", "found", len(messages), "published", published)
}
