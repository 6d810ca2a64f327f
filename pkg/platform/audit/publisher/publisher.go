package publisher

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"meldingen/pkg/domain"
	audit "meldingen/pkg/platform/audit"
)

// Forwarder pushes a serialized event to an external sink (the Kafka topic
// consumed by cmd/worker). Best-effort: a forward failure is logged, the
// local append has already happened.
type Forwarder interface {
	Produce(ctx context.Context, key string, payload []byte) error
}

// Publisher fans audit events out to the store and an optional forwarder.
// In async mode Emit never blocks domain flow; a full buffer drops the event
// after logging, which is acceptable for an observability trail.
type Publisher struct {
	store     audit.Store
	forwarder Forwarder
	logger    *slog.Logger

	inbox chan audit.Event
	wg    sync.WaitGroup

	// mu serializes Emit's enqueue against Close so an Emit racing Close
	// cannot send on the closed inbox.
	mu      sync.RWMutex
	closing bool
}

type Option func(*Publisher)

// WithAsyncBuffer makes Emit enqueue into a buffer drained by a background
// goroutine instead of appending inline.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

// WithForwarder also publishes every event to the given sink.
func WithForwarder(f Forwarder) Option {
	return func(p *Publisher) {
		p.forwarder = f
	}
}

// WithLogger overrides the default slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an event. In sync mode failures propagate; in async mode they
// are logged by the drain goroutine.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if p.inbox == nil {
		return p.deliver(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closing {
		return nil
	}

	select {
	case p.inbox <- event:
		return nil
	default:
		p.logger.Warn("audit buffer full, dropping event",
			"melding_id", event.MeldingID.String(),
			"action", event.Action,
		)
		return nil
	}
}

// List returns the audit trail for a melding.
func (p *Publisher) List(ctx context.Context, id domain.MeldingID) ([]audit.Event, error) {
	return p.store.ListByMelding(ctx, id)
}

// Close stops the drain goroutine after flushing buffered events.
func (p *Publisher) Close() {
	if p.inbox == nil {
		return
	}

	p.mu.Lock()
	if p.closing {
		p.mu.Unlock()
		return
	}
	p.closing = true
	close(p.inbox)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.inbox {
		if err := p.deliver(context.Background(), event); err != nil {
			p.logger.Error("audit event delivery failed",
				"error", err,
				"melding_id", event.MeldingID.String(),
				"action", event.Action,
			)
		}
	}
}

func (p *Publisher) deliver(ctx context.Context, event audit.Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	if p.forwarder != nil {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}
		if err := p.forwarder.Produce(ctx, event.MeldingID.String(), payload); err != nil {
			p.logger.Warn("audit event forward failed",
				"error", err,
				"melding_id", event.MeldingID.String(),
			)
		}
	}
	return nil
}
