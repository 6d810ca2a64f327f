package service

import (
	"context"
	"fmt"

	"meldingen/internal/melding/models"
	"meldingen/pkg/domain"
	"meldingen/pkg/platform/audit"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Operator actions retrieve directly, without a token: operator identity is
// established by the transport layer, not by this engine.

// Process moves a melding into active handling.
func (s *Service) Process(ctx context.Context, id domain.MeldingID) (*models.Melding, error) {
	return s.operatorTransition(ctx, id, models.TransitionProcess)
}

// AwaitProcessing parks a melding until capacity frees up.
func (s *Service) AwaitProcessing(ctx context.Context, id domain.MeldingID) (*models.Melding, error) {
	return s.operatorTransition(ctx, id, models.TransitionAwaitProcessing)
}

// Plan schedules a melding for a known follow-up moment.
func (s *Service) Plan(ctx context.Context, id domain.MeldingID) (*models.Melding, error) {
	return s.operatorTransition(ctx, id, models.TransitionPlan)
}

// Complete closes a melding. A non-empty text triggers a completion mail to
// the melder carrying that text; dispatch failure is logged, never fatal.
func (s *Service) Complete(ctx context.Context, id domain.MeldingID, text string) (*models.Melding, error) {
	ctx, span := s.tracer.Start(ctx, "melding.complete",
		trace.WithAttributes(attribute.String("melding.id", id.String())))
	defer span.End()

	melding, err := s.operatorTransition(ctx, id, models.TransitionComplete)
	if err != nil {
		return nil, err
	}

	if text != "" {
		if err := s.mailer.SendCompletion(ctx, melding, text); err != nil {
			s.metrics.IncrementMailDispatchFailures()
			s.logger.ErrorContext(ctx, "completion mail dispatch failed",
				"melding_id", melding.ID.String(),
				"error", err,
			)
		} else {
			s.metrics.IncrementMailDispatches()
		}
	}
	return melding, nil
}

// Cancel withdraws a melding from handling.
func (s *Service) Cancel(ctx context.Context, id domain.MeldingID) (*models.Melding, error) {
	return s.operatorTransition(ctx, id, models.TransitionCancel)
}

// RequestReopen records a melder's wish to reopen a completed melding.
func (s *Service) RequestReopen(ctx context.Context, id domain.MeldingID) (*models.Melding, error) {
	return s.operatorTransition(ctx, id, models.TransitionRequestReopen)
}

// Reopen puts a completed melding back into the backoffice flow.
func (s *Service) Reopen(ctx context.Context, id domain.MeldingID) (*models.Melding, error) {
	return s.operatorTransition(ctx, id, models.TransitionReopen)
}

func (s *Service) operatorTransition(ctx context.Context, id domain.MeldingID, t models.Transition) (*models.Melding, error) {
	melding, err := s.store.Retrieve(ctx, id)
	if err != nil {
		return nil, err
	}

	from := melding.State
	if err := s.machine.Transition(melding, t); err != nil {
		s.metrics.IncrementTransitionRejected()
		return nil, err
	}

	melding.UpdatedAt = s.now()
	if err := s.store.Save(ctx, melding); err != nil {
		return nil, fmt.Errorf("save melding: %w", err)
	}

	s.metrics.ObserveTransition(string(t))
	s.emit(ctx, audit.Event{
		MeldingID: melding.ID,
		Action:    string(audit.EventTransitionApplied),
		FromState: string(from),
		ToState:   string(melding.State),
	})
	return melding, nil
}
