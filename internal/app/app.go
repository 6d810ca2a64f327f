// Package app assembles the engine from configuration. Binaries stay thin:
// they build a Config, call Build, and own the process lifecycle. Every
// optional backend degrades explicitly: no postgres DSN means in-memory
// stores, no redis URL means no name cache, no kafka brokers means the log
// mailer and a store-only audit trail.
package app

import (
	"context"
	"fmt"
	"log/slog"

	assetmemory "meldingen/internal/asset/store/memory"
	assetpostgres "meldingen/internal/asset/store/postgres"
	"meldingen/internal/classification/cache"
	classificationservice "meldingen/internal/classification/service"
	classificationmemory "meldingen/internal/classification/store/memory"
	classificationpostgres "meldingen/internal/classification/store/postgres"
	"meldingen/internal/mail"
	"meldingen/internal/melding/metrics"
	"meldingen/internal/melding/models"
	"meldingen/internal/melding/service"
	"meldingen/internal/melding/statemachine"
	meldingstore "meldingen/internal/melding/store"
	meldingmemory "meldingen/internal/melding/store/memory"
	meldingpostgres "meldingen/internal/melding/store/postgres"
	"meldingen/internal/melding/token"
	"meldingen/internal/platform/config"
	platformredis "meldingen/internal/platform/redis"
	audit "meldingen/pkg/platform/audit"
	auditmemory "meldingen/pkg/platform/audit/store/memory"
	auditpostgres "meldingen/pkg/platform/audit/store/postgres"
	"meldingen/pkg/platform/audit/publisher"
	"meldingen/pkg/platform/events"
)

// Prometheus collectors register globally, so the package holds the one
// metrics instance any number of Build calls share.
var engineMetrics = metrics.New()

// App is the assembled engine plus everything that needs closing.
type App struct {
	Service *service.Service
	Audit   *publisher.Publisher

	closers []func()
}

// Build wires the service from cfg. The classifier adapter is the one
// collaborator the caller supplies; the external text classifier is not
// this module's to implement.
func Build(ctx context.Context, cfg config.Config, log *slog.Logger, adapter classificationservice.Adapter) (*App, error) {
	a := &App{}

	var (
		meldingen  meldingstore.Store
		lookup     classificationservice.Lookup
		assets     service.AssetStore
		assetTypes service.AssetTypeStore
		trail      audit.Store
	)
	if cfg.PostgresDSN != "" {
		db, err := meldingpostgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, func() { db.Close() })
		meldingen = meldingpostgres.New(db)
		lookup = classificationpostgres.New(db)
		assets = assetpostgres.NewAssetStore(db)
		assetTypes = assetpostgres.NewAssetTypeStore(db)
		trail = auditpostgres.New(db)
	} else {
		log.Warn("no postgres dsn configured, running on in-memory stores")
		meldingen = meldingmemory.New()
		lookup = classificationmemory.New()
		assets = assetmemory.NewAssetStore()
		assetTypes = assetmemory.NewAssetTypeStore()
		trail = auditmemory.NewInMemoryStore()
	}

	rdb, err := platformredis.New(cfg.Redis)
	if err != nil {
		a.Close()
		return nil, err
	}
	if rdb != nil {
		a.closers = append(a.closers, func() { rdb.Close() })
		lookup = cache.New(rdb.Client, lookup, cfg.Redis.LookupTTL, log)
	}

	var mailer mail.Mailer = mail.NewLogMailer(log)
	pubOpts := []publisher.Option{
		publisher.WithAsyncBuffer(256),
		publisher.WithLogger(log),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		lifecycle, err := events.NewProducer(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("lifecycle producer: %w", err)
		}
		a.closers = append(a.closers, lifecycle.Close)
		pubOpts = append(pubOpts, publisher.WithForwarder(lifecycle))

		mailJobs, err := events.NewProducer(ctx, cfg.Kafka.Brokers, cfg.Kafka.MailTopic)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("mail producer: %w", err)
		}
		a.closers = append(a.closers, mailJobs.Close)
		mailer = mail.NewQueueMailer(mailJobs)
	}

	// Appended last so Close flushes the publisher before its forwarder goes.
	pub := publisher.NewPublisher(trail, pubOpts...)
	a.closers = append(a.closers, pub.Close)
	a.Audit = pub

	a.Service = service.New(service.Deps{
		Store:         meldingen,
		Machine:       statemachine.New(),
		Generator:     token.RandomGenerator{},
		Verifier:      token.NewVerifier(meldingen),
		Invalidator:   token.NewInvalidator(meldingen, models.StateSubmitted),
		Classifier:    classificationservice.NewClassifier(adapter, lookup),
		Reclassifier:  classificationservice.NewReclassifier(assets, meldingen, log),
		Assets:        assets,
		AssetTypes:    assetTypes,
		Mailer:        mailer,
		Audit:         pub,
		Metrics:       engineMetrics,
		Logger:        log,
		TokenDuration: cfg.TokenDuration,
	})
	return a, nil
}

// Close releases backends in reverse acquisition order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
