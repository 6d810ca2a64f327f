// Package token implements the melder's possession credential: generation,
// verification, and state-guarded revocation.
package token

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"meldingen/internal/melding/models"
	"meldingen/pkg/domain"
	"meldingen/pkg/platform/sentinel"
)

// Generator produces possession tokens. Implementations must be
// cryptographically unpredictable.
type Generator interface {
	Generate() (string, error)
}

// RandomGenerator draws 32 bytes from crypto/rand, encoded base64url.
type RandomGenerator struct{}

func (RandomGenerator) Generate() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Retriever is the slice of the melding store the verifier needs.
type Retriever interface {
	Retrieve(ctx context.Context, id domain.MeldingID) (*models.Melding, error)
}

// Store is the slice needed by the invalidator.
type Store interface {
	Retriever
	Save(ctx context.Context, m *models.Melding) error
}

// Verifier checks that a caller still holds the possession credential for a
// melding. It never mutates; verifying twice with the same valid token yields
// the same melding.
type Verifier struct {
	store Retriever
	now   func() time.Time
}

func NewVerifier(store Retriever) *Verifier {
	return &Verifier{store: store, now: time.Now}
}

// NewVerifierAt allows tests to pin the clock.
func NewVerifierAt(store Retriever, now func() time.Time) *Verifier {
	return &Verifier{store: store, now: now}
}

// Verify returns the melding when the token is valid. Failures are kept
// distinct: sentinel.ErrNotFound when the melding is absent,
// sentinel.ErrInvalidToken on mismatch, sentinel.ErrTokenExpired when the
// stored expiry lies in the past even if the token matches exactly.
func (v *Verifier) Verify(ctx context.Context, id domain.MeldingID, token string) (*models.Melding, error) {
	melding, err := v.store.Retrieve(ctx, id)
	if err != nil {
		return nil, err
	}

	if melding.Token == nil || *melding.Token != token {
		return nil, sentinel.ErrInvalidToken
	}

	if melding.TokenExpires != nil && melding.TokenExpires.Before(v.now()) {
		return nil, sentinel.ErrTokenExpired
	}

	return melding, nil
}

// Invalidator revokes a melding's token. Revocation is tied to a state
// allow-list so a token cannot be withdrawn while the melder is still inside
// the form flow.
type Invalidator struct {
	store   Store
	allowed map[models.State]struct{}
}

// NewInvalidator builds an invalidator that permits revocation only from the
// given states. The default caller passes only StateSubmitted.
func NewInvalidator(store Store, allowed ...models.State) *Invalidator {
	set := make(map[models.State]struct{}, len(allowed))
	for _, s := range allowed {
		set[s] = struct{}{}
	}
	return &Invalidator{store: store, allowed: set}
}

// Invalidate clears the token and persists the melding. Returns
// sentinel.ErrInvalidState when the melding's state is not in the allow-list.
func (i *Invalidator) Invalidate(ctx context.Context, melding *models.Melding) (*models.Melding, error) {
	if _, ok := i.allowed[melding.State]; !ok {
		return nil, fmt.Errorf("invalidate token from state %q: %w", melding.State, sentinel.ErrInvalidState)
	}

	melding.Token = nil
	melding.TokenExpires = nil

	if err := i.store.Save(ctx, melding); err != nil {
		return nil, err
	}
	return melding, nil
}
