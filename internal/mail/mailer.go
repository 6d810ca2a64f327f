// Package mail defines the outbound notification boundary. Actual delivery
// is an external collaborator; the engine only hands meldingen over and is
// allowed to ignore failures.
package mail

import (
	"context"
	"log/slog"

	"meldingen/internal/melding/models"
)

//go:generate mockgen -source=mailer.go -destination=mocks/mock_mailer.go -package=mocks

// Mailer dispatches melder-facing notifications. Implementations must be
// safe to call after the triggering state transition has been persisted; a
// returned error is logged by the caller and never rolls anything back.
type Mailer interface {
	// SendConfirmation notifies the melder that their melding was submitted.
	SendConfirmation(ctx context.Context, melding *models.Melding) error
	// SendCompletion notifies the melder that their melding was completed,
	// with an operator-supplied text.
	SendCompletion(ctx context.Context, melding *models.Melding, text string) error
}

// LogMailer writes notifications to the log instead of delivering them.
// Used in development and as the fallback when no broker is configured.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendConfirmation(ctx context.Context, melding *models.Melding) error {
	m.logger.InfoContext(ctx, "confirmation mail",
		"melding_id", melding.ID.String(),
		"email", emailOrEmpty(melding),
	)
	return nil
}

func (m *LogMailer) SendCompletion(ctx context.Context, melding *models.Melding, text string) error {
	m.logger.InfoContext(ctx, "completion mail",
		"melding_id", melding.ID.String(),
		"email", emailOrEmpty(melding),
		"text", text,
	)
	return nil
}

func emailOrEmpty(m *models.Melding) string {
	if m.Email == nil {
		return ""
	}
	return *m.Email
}
