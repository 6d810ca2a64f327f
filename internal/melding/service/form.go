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

// Location is the melder-submitted coordinate plus the address enrichment
// resolved by the form frontend.
type Location struct {
	Lat float64
	Lon float64

	Street              *string
	HouseNumber         *int
	HouseNumberAddition *string
	PostalCode          *string
	City                *string
}

// AnswerQuestions marks the questionnaire step done. The answers themselves
// live with the form collaborator, not on the melding.
func (s *Service) AnswerQuestions(ctx context.Context, id domain.MeldingID, tok string) (*models.Melding, error) {
	return s.guestTransition(ctx, id, tok, models.TransitionAnswerQuestions, nil)
}

// AddAttachments marks the attachment step done.
func (s *Service) AddAttachments(ctx context.Context, id domain.MeldingID, tok string) (*models.Melding, error) {
	return s.guestTransition(ctx, id, tok, models.TransitionAddAttachments, nil)
}

// SubmitLocation records where the issue is.
func (s *Service) SubmitLocation(ctx context.Context, id domain.MeldingID, tok string, loc Location) (*models.Melding, error) {
	return s.guestTransition(ctx, id, tok, models.TransitionSubmitLocation, func(m *models.Melding) {
		m.Lat = &loc.Lat
		m.Lon = &loc.Lon
		m.Street = loc.Street
		m.HouseNumber = loc.HouseNumber
		m.HouseNumberAddition = loc.HouseNumberAddition
		m.PostalCode = loc.PostalCode
		m.City = loc.City
	})
}

// AddContactInfo records how the melder wants to be reached. Both fields are
// optional; the step itself is what advances the form.
func (s *Service) AddContactInfo(ctx context.Context, id domain.MeldingID, tok string, phone, email *string) (*models.Melding, error) {
	return s.guestTransition(ctx, id, tok, models.TransitionAddContactInfo, func(m *models.Melding) {
		m.Phone = phone
		m.Email = email
	})
}

// Submit hands the melding over to the backoffice. The possession token is
// revoked in the same unit of work; the confirmation mail is dispatched after
// the save and its failure never rolls anything back.
func (s *Service) Submit(ctx context.Context, id domain.MeldingID, tok string) (*models.Melding, error) {
	ctx, span := s.tracer.Start(ctx, "melding.submit",
		trace.WithAttributes(attribute.String("melding.id", id.String())))
	defer span.End()

	melding, err := s.verifier.Verify(ctx, id, tok)
	if err != nil {
		return nil, err
	}

	from := melding.State
	if err := s.machine.Transition(melding, models.TransitionSubmit); err != nil {
		s.metrics.IncrementTransitionRejected()
		return nil, err
	}

	melding.UpdatedAt = s.now()
	melding, err = s.invalidator.Invalidate(ctx, melding)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(string(models.TransitionSubmit))
	s.metrics.IncrementTokensInvalidated()
	s.emit(ctx, audit.Event{
		MeldingID: melding.ID,
		Action:    string(audit.EventTransitionApplied),
		FromState: string(from),
		ToState:   string(melding.State),
	})
	s.emit(ctx, audit.Event{
		MeldingID: melding.ID,
		Action:    string(audit.EventTokenInvalidated),
	})

	if err := s.mailer.SendConfirmation(ctx, melding); err != nil {
		s.metrics.IncrementMailDispatchFailures()
		s.logger.ErrorContext(ctx, "confirmation mail dispatch failed",
			"melding_id", melding.ID.String(),
			"error", err,
		)
	} else {
		s.metrics.IncrementMailDispatches()
	}

	return melding, nil
}

func (s *Service) guestTransition(ctx context.Context, id domain.MeldingID, tok string, t models.Transition, mutate func(*models.Melding)) (*models.Melding, error) {
	melding, err := s.verifier.Verify(ctx, id, tok)
	if err != nil {
		return nil, err
	}

	from := melding.State
	if err := s.machine.Transition(melding, t); err != nil {
		s.metrics.IncrementTransitionRejected()
		return nil, err
	}
	if mutate != nil {
		mutate(melding)
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
