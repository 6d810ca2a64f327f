// The engine hosts the melding lifecycle service: stores, classification
// cache, audit publisher, and the kafka producers feeding cmd/worker. The
// transport front-end mounts the assembled Service; it is wired by the
// deployment, not by this module.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"meldingen/internal/app"
	classificationservice "meldingen/internal/classification/service"
	"meldingen/internal/platform/config"
	"meldingen/internal/platform/logger"
	"meldingen/pkg/platform/sentinel"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Without an external text classifier every melding stays uncategorized,
	// which the service treats as the recoverable no-category branch.
	adapter := classificationservice.AdapterFunc(func(context.Context, string) (string, error) {
		return "", fmt.Errorf("no classifier adapter configured: %w", sentinel.ErrClassificationNotFound)
	})

	a, err := app.Build(ctx, cfg, log, adapter)
	if err != nil {
		log.Error("assemble engine", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	log.Info("engine ready", "brokers", cfg.Kafka.Brokers, "lifecycle_topic", cfg.Kafka.Topic)

	<-ctx.Done()
	log.Info("engine stopping")
}
