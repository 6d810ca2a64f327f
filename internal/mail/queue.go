package mail

import (
	"context"
	"encoding/json"
	"fmt"

	"meldingen/internal/melding/models"
	"meldingen/pkg/domain"
)

const (
	JobConfirmation = "confirmation"
	JobCompletion   = "completion"
)

// Job is the wire format of a queued notification. Delivery workers only
// need the address and the melding id; they never load the full melding.
type Job struct {
	Kind      string           `json:"kind"`
	MeldingID domain.MeldingID `json:"melding_id"`
	Email     string           `json:"email"`
	Text      string           `json:"text,omitempty"`
}

// Sink publishes a serialized mail job. Satisfied by events.Producer.
type Sink interface {
	Produce(ctx context.Context, key string, payload []byte) error
}

// QueueMailer hands notifications to a broker topic instead of delivering
// them inline. Meldingen without an email address are skipped silently; the
// melder chose not to leave contact info.
type QueueMailer struct {
	sink Sink
}

func NewQueueMailer(sink Sink) *QueueMailer {
	return &QueueMailer{sink: sink}
}

func (m *QueueMailer) SendConfirmation(ctx context.Context, melding *models.Melding) error {
	return m.enqueue(ctx, Job{
		Kind:      JobConfirmation,
		MeldingID: melding.ID,
		Email:     emailOrEmpty(melding),
	})
}

func (m *QueueMailer) SendCompletion(ctx context.Context, melding *models.Melding, text string) error {
	return m.enqueue(ctx, Job{
		Kind:      JobCompletion,
		MeldingID: melding.ID,
		Email:     emailOrEmpty(melding),
		Text:      text,
	})
}

func (m *QueueMailer) enqueue(ctx context.Context, job Job) error {
	if job.Email == "" {
		return nil
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode mail job: %w", err)
	}
	if err := m.sink.Produce(ctx, job.MeldingID.String(), payload); err != nil {
		return fmt.Errorf("enqueue mail job: %w", err)
	}
	return nil
}

// Deliverer sends a decoded job to the melder. The development implementation
// is LogMailer behind DeliverFunc; production plugs in a real provider.
type Deliverer interface {
	Deliver(ctx context.Context, job Job) error
}

// DeliverFunc adapts a function to the Deliverer interface.
type DeliverFunc func(ctx context.Context, job Job) error

func (f DeliverFunc) Deliver(ctx context.Context, job Job) error { return f(ctx, job) }

// HandleJob decodes a queued payload and passes it to the deliverer. It is
// the consumer-side counterpart of QueueMailer.
func HandleJob(ctx context.Context, deliverer Deliverer, payload []byte) error {
	var job Job
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("decode mail job: %w", err)
	}
	if err := deliverer.Deliver(ctx, job); err != nil {
		return fmt.Errorf("deliver %s mail: %w", job.Kind, err)
	}
	return nil
}
