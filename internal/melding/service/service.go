// Package service is the orchestration layer for the melding lifecycle.
// Every public method is one retrieve, mutate, save unit; the state machine
// is the only writer of Melding.State and the persistence boundary resolves
// concurrent writers through the version check.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	assetmodels "meldingen/internal/asset/models"
	classificationmodels "meldingen/internal/classification/models"
	"meldingen/internal/mail"
	"meldingen/internal/melding/metrics"
	"meldingen/internal/melding/models"
	"meldingen/internal/melding/statemachine"
	"meldingen/internal/melding/store"
	"meldingen/internal/melding/token"
	"meldingen/pkg/domain"
	"meldingen/pkg/platform/audit"
	"meldingen/pkg/relationship"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Classifier resolves free text to a classification. Failures are
// recoverable at this layer: the melding proceeds uncategorized.
type Classifier interface {
	Classify(ctx context.Context, text string) (*classificationmodels.Classification, error)
}

// Reclassifier handles the side effects of a category change on an already
// classified melding. It runs before the classification field is overwritten.
type Reclassifier interface {
	Reclassify(ctx context.Context, melding *models.Melding, newClassification *classificationmodels.Classification) error
}

// AssetStore is the slice of the asset repository the service needs.
type AssetStore interface {
	Save(ctx context.Context, a assetmodels.Asset) error
	Retrieve(ctx context.Context, id domain.AssetID) (*assetmodels.Asset, error)
	FindByExternalIDAndAssetTypeID(ctx context.Context, externalID string, assetTypeID domain.AssetTypeID) (*assetmodels.Asset, error)
	Delete(ctx context.Context, id domain.AssetID) error
}

// AssetTypeStore resolves asset type identifiers.
type AssetTypeStore interface {
	Retrieve(ctx context.Context, id domain.AssetTypeID) (*assetmodels.AssetType, error)
}

// Auditor records lifecycle events. Emission is best-effort; a failing
// auditor never rolls back a persisted transition.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Deps bundles the service's collaborators. Zero TokenDuration defaults to
// 72 hours; nil Logger falls back to slog.Default.
type Deps struct {
	Store         store.Store
	Machine       *statemachine.Machine
	Generator     token.Generator
	Verifier      *token.Verifier
	Invalidator   *token.Invalidator
	Classifier    Classifier
	Reclassifier  Reclassifier
	Assets        AssetStore
	AssetTypes    AssetTypeStore
	Mailer        mail.Mailer
	Audit         Auditor
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
	TokenDuration time.Duration
}

const defaultTokenDuration = 72 * time.Hour

type Service struct {
	store         store.Store
	machine       *statemachine.Machine
	generator     token.Generator
	verifier      *token.Verifier
	invalidator   *token.Invalidator
	classifier    Classifier
	reclassifier  Reclassifier
	assets        AssetStore
	assetTypes    AssetTypeStore
	relationships *relationship.Manager[*models.Melding, assetmodels.Asset]
	mailer        mail.Mailer
	audit         Auditor
	metrics       *metrics.Metrics
	logger        *slog.Logger
	tracer        trace.Tracer
	tokenDuration time.Duration
	now           func() time.Time
}

func New(deps Deps) *Service {
	if deps.TokenDuration <= 0 {
		deps.TokenDuration = defaultTokenDuration
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{
		store:         deps.Store,
		machine:       deps.Machine,
		generator:     deps.Generator,
		verifier:      deps.Verifier,
		invalidator:   deps.Invalidator,
		classifier:    deps.Classifier,
		reclassifier:  deps.Reclassifier,
		assets:        deps.Assets,
		assetTypes:    deps.AssetTypes,
		relationships: relationship.New[*models.Melding, assetmodels.Asset](deps.Store, assetAccessor{}),
		mailer:        deps.Mailer,
		audit:         deps.Audit,
		metrics:       deps.Metrics,
		logger:        deps.Logger,
		tracer:        otel.Tracer("meldingen/melding/service"),
		tokenDuration: deps.TokenDuration,
		now:           time.Now,
	}
}

// Create persists a new melding, issues its possession token, and attempts
// classification. The melding is saved first so it has an identity before
// any collaborator sees it; the classify transition happens only when a
// category resolved; the final save happens regardless.
func (s *Service) Create(ctx context.Context, text string) (*models.Melding, error) {
	ctx, span := s.tracer.Start(ctx, "melding.create")
	defer span.End()

	now := s.now()
	melding := &models.Melding{
		ID:        domain.NewMeldingID(),
		Text:      text,
		State:     models.StateNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, melding); err != nil {
		return nil, fmt.Errorf("save new melding: %w", err)
	}
	span.SetAttributes(attribute.String("melding.id", melding.ID.String()))

	tok, err := s.generator.Generate()
	if err != nil {
		return nil, err
	}
	expires := now.Add(s.tokenDuration)
	melding.Token = &tok
	melding.TokenExpires = &expires

	if classification, err := s.classifier.Classify(ctx, text); err != nil {
		s.metrics.IncrementClassificationFailures()
		s.logger.WarnContext(ctx, "classification failed, melding stays uncategorized",
			"melding_id", melding.ID.String(),
			"error", err,
		)
	} else {
		melding.Classification = classification
		if err := s.machine.Transition(melding, models.TransitionClassify); err != nil {
			return nil, err
		}
		s.metrics.ObserveTransition(string(models.TransitionClassify))
	}

	melding.UpdatedAt = s.now()
	if err := s.store.Save(ctx, melding); err != nil {
		return nil, fmt.Errorf("save melding: %w", err)
	}

	s.metrics.IncrementMeldingenCreated()
	s.emit(ctx, audit.Event{
		MeldingID: melding.ID,
		Action:    string(audit.EventMeldingCreated),
		ToState:   string(melding.State),
	})
	return melding, nil
}

// UpdateRequest carries the melder-editable fields. A nil Text leaves the
// text, and therefore the classification, untouched.
type UpdateRequest struct {
	Text *string
}

// Update edits a melding's text under token guard and re-classifies it. The
// reclassifier runs before the classification is overwritten because its
// side effects are defined relative to the old category.
func (s *Service) Update(ctx context.Context, id domain.MeldingID, tok string, req UpdateRequest) (*models.Melding, error) {
	ctx, span := s.tracer.Start(ctx, "melding.update",
		trace.WithAttributes(attribute.String("melding.id", id.String())))
	defer span.End()

	melding, err := s.verifier.Verify(ctx, id, tok)
	if err != nil {
		return nil, err
	}

	if req.Text == nil || *req.Text == melding.Text {
		return melding, nil
	}
	melding.Text = *req.Text

	newClassification, err := s.classifier.Classify(ctx, melding.Text)
	if err != nil {
		s.metrics.IncrementClassificationFailures()
		s.logger.WarnContext(ctx, "reclassification failed to resolve a category",
			"melding_id", melding.ID.String(),
			"error", err,
		)
		newClassification = nil
	}

	if melding.Classification != nil {
		if err := s.reclassifier.Reclassify(ctx, melding, newClassification); err != nil {
			return nil, err
		}
	}
	melding.Classification = newClassification

	from := melding.State
	if newClassification != nil {
		if err := s.machine.Transition(melding, models.TransitionClassify); err != nil {
			s.metrics.IncrementTransitionRejected()
			return nil, err
		}
		s.metrics.ObserveTransition(string(models.TransitionClassify))
	}

	melding.UpdatedAt = s.now()
	if err := s.store.Save(ctx, melding); err != nil {
		return nil, fmt.Errorf("save melding: %w", err)
	}

	s.emit(ctx, audit.Event{
		MeldingID: melding.ID,
		Action:    string(audit.EventMeldingUpdated),
		FromState: string(from),
		ToState:   string(melding.State),
	})
	return melding, nil
}

// Retrieve returns a melding by id.
func (s *Service) Retrieve(ctx context.Context, id domain.MeldingID) (*models.Melding, error) {
	return s.store.Retrieve(ctx, id)
}

// List returns meldingen narrowed by the given options.
func (s *Service) List(ctx context.Context, opts store.ListOptions) ([]*models.Melding, error) {
	return s.store.List(ctx, opts)
}

// Delete removes a melding.
func (s *Service) Delete(ctx context.Context, id domain.MeldingID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.emit(ctx, audit.Event{
		MeldingID: id,
		Action:    string(audit.EventMeldingDeleted),
	})
	return nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed",
			"error", err,
			"melding_id", event.MeldingID.String(),
			"action", event.Action,
		)
	}
}
