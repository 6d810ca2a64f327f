package worker

import (
	"context"
	"encoding/json"
	"fmt"

	audit "meldingen/pkg/platform/audit"
)

// Worker decodes lifecycle events from the Kafka topic and persists them.
// It backs cmd/worker, where the consumer feeds Handle per record.
type Worker struct {
	store audit.Store
}

func NewWorker(store audit.Store) *Worker {
	return &Worker{store: store}
}

func (w *Worker) Handle(ctx context.Context, payload []byte) error {
	var event audit.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("decode lifecycle event: %w", err)
	}
	if err := w.store.Append(ctx, event); err != nil {
		return fmt.Errorf("append lifecycle event: %w", err)
	}
	return nil
}
