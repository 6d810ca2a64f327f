// Package cache decorates the classification name lookup with a redis
// read-through cache. Classification names are resolved on every intake and
// every update, while the classification set itself changes rarely.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"meldingen/internal/classification/models"
	"meldingen/internal/classification/service"
)

const keyPrefix = "meldingen:classification:name:"

// NameLookup wraps a service.Lookup. Cache failures degrade to the wrapped
// lookup; they are logged, never surfaced.
type NameLookup struct {
	client *goredis.Client
	next   service.Lookup
	ttl    time.Duration
	logger *slog.Logger
}

var _ service.Lookup = (*NameLookup)(nil)

// New returns a caching lookup. A nil client disables caching and delegates
// every call, so wiring stays unconditional at the call site.
func New(client *goredis.Client, next service.Lookup, ttl time.Duration, logger *slog.Logger) *NameLookup {
	return &NameLookup{client: client, next: next, ttl: ttl, logger: logger}
}

func (l *NameLookup) FindByName(ctx context.Context, name string) (*models.Classification, error) {
	if l.client == nil {
		return l.next.FindByName(ctx, name)
	}

	key := keyPrefix + name

	payload, err := l.client.Get(ctx, key).Bytes()
	if err == nil {
		var c models.Classification
		if err := json.Unmarshal(payload, &c); err == nil {
			return &c, nil
		}
		// Corrupt entry; drop it and fall through.
		l.client.Del(ctx, key)
	} else if err != goredis.Nil {
		l.logger.WarnContext(ctx, "classification cache read failed", "error", err, "name", name)
	}

	c, err := l.next.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(c); err == nil {
		if err := l.client.Set(ctx, key, payload, l.ttl).Err(); err != nil {
			l.logger.WarnContext(ctx, "classification cache write failed", "error", err, "name", name)
		}
	}
	return c, nil
}

// Invalidate removes a cached name, to be called when a classification is
// renamed or deleted.
func (l *NameLookup) Invalidate(ctx context.Context, name string) error {
	if l.client == nil {
		return nil
	}
	if err := l.client.Del(ctx, keyPrefix+name).Err(); err != nil {
		return fmt.Errorf("invalidate classification cache: %w", err)
	}
	return nil
}
