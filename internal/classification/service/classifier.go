// Package service holds classification behavior: mapping free text to a
// known classification and handling the fallout when an already classified
// melding changes category.
package service

import (
	"context"
	"fmt"

	"meldingen/internal/classification/models"
)

//go:generate mockgen -source=classifier.go -destination=../mocks/mock_classifier.go -package=mocks

// Adapter maps free text to a classification name. Implementations wrap an
// external text-classification service and may fail.
type Adapter interface {
	Classify(ctx context.Context, text string) (string, error)
}

// AdapterFunc adapts a function to the Adapter interface.
type AdapterFunc func(ctx context.Context, text string) (string, error)

func (f AdapterFunc) Classify(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// Lookup resolves a classification name to a known classification. Returns
// sentinel.ErrClassificationNotFound (wrapped or bare) for unknown names.
type Lookup interface {
	FindByName(ctx context.Context, name string) (*models.Classification, error)
}

// Classifier combines the adapter with the lookup. Callers must treat every
// failure as recoverable: the melding proceeds without a category and the
// classify transition is skipped, it is never a reason to abort intake.
type Classifier struct {
	adapter Adapter
	lookup  Lookup
}

func NewClassifier(adapter Adapter, lookup Lookup) *Classifier {
	return &Classifier{adapter: adapter, lookup: lookup}
}

// Classify returns the classification for the given text, or an error when
// the adapter fails or produces a name no classification matches.
func (c *Classifier) Classify(ctx context.Context, text string) (*models.Classification, error) {
	name, err := c.adapter.Classify(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("classify text: %w", err)
	}

	classification, err := c.lookup.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resolve classification %q: %w", name, err)
	}
	return classification, nil
}
