// The worker consumes melding lifecycle events and queued mail jobs from
// Kafka. Lifecycle events land in the audit store; mail jobs are handed to
// the configured deliverer. Business logic lives in the internal packages,
// main only wires dependencies and owns the process lifecycle.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"meldingen/internal/mail"
	meldingpostgres "meldingen/internal/melding/store/postgres"
	"meldingen/internal/platform/config"
	"meldingen/internal/platform/logger"
	"meldingen/pkg/platform/audit"
	auditmemory "meldingen/pkg/platform/audit/store/memory"
	auditpostgres "meldingen/pkg/platform/audit/store/postgres"
	auditworker "meldingen/pkg/platform/audit/worker"
	"meldingen/pkg/platform/events"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, db, err := auditStore(cfg, log)
	if err != nil {
		log.Error("audit store", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	lifecycle, err := events.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Group, cfg.Kafka.Topic)
	if err != nil {
		log.Error("lifecycle consumer", "error", err)
		os.Exit(1)
	}
	defer lifecycle.Close()

	mailJobs, err := events.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Group+"-mail", cfg.Kafka.MailTopic)
	if err != nil {
		log.Error("mail consumer", "error", err)
		os.Exit(1)
	}
	defer mailJobs.Close()

	trail := auditworker.NewWorker(store)
	deliverer := logDeliverer(log)

	log.Info("worker starting",
		"brokers", cfg.Kafka.Brokers,
		"lifecycle_topic", cfg.Kafka.Topic,
		"mail_topic", cfg.Kafka.MailTopic,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return lifecycle.Run(ctx, func(ctx context.Context, key, payload []byte) error {
			if err := trail.Handle(ctx, payload); err != nil {
				// A malformed or unappendable event is logged and skipped;
				// stopping the consumer would stall the whole trail.
				log.ErrorContext(ctx, "lifecycle event", "key", string(key), "error", err)
			}
			return nil
		})
	})
	g.Go(func() error {
		return mailJobs.Run(ctx, func(ctx context.Context, key, payload []byte) error {
			if err := mail.HandleJob(ctx, deliverer, payload); err != nil {
				log.ErrorContext(ctx, "mail job", "key", string(key), "error", err)
			}
			return nil
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("worker stopped", "error", err)
		os.Exit(1)
	}
	log.Info("worker stopped")
}

// auditStore opens the postgres-backed audit trail when a DSN is configured
// and falls back to the in-memory store for development. The returned db is
// nil in the memory case.
func auditStore(cfg config.Config, log *slog.Logger) (audit.Store, *sql.DB, error) {
	if cfg.PostgresDSN == "" {
		log.Warn("no postgres dsn configured, audit trail is in-memory only")
		return auditmemory.NewInMemoryStore(), nil, nil
	}
	db, err := meldingpostgres.Open(cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	return auditpostgres.New(db), db, nil
}

// logDeliverer records mail jobs instead of sending them. Production swaps
// in a provider-backed Deliverer here.
func logDeliverer(log *slog.Logger) mail.Deliverer {
	return mail.DeliverFunc(func(ctx context.Context, job mail.Job) error {
		log.InfoContext(ctx, "mail delivered",
			"kind", job.Kind,
			"melding_id", job.MeldingID.String(),
			"email", job.Email,
		)
		return nil
	})
}
