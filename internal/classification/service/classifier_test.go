package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"meldingen/internal/classification/mocks"
	"meldingen/internal/classification/models"
	"meldingen/internal/classification/service"
	"meldingen/pkg/domain"
	"meldingen/pkg/platform/sentinel"
)

func TestClassifier_Classify(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves adapter name through lookup", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		adapter := mocks.NewMockAdapter(ctrl)
		lookup := mocks.NewMockLookup(ctrl)

		want := &models.Classification{ID: domain.NewClassificationID(), Name: "lighting"}
		adapter.EXPECT().Classify(gomock.Any(), "Lantaarnpaal kapot").Return("lighting", nil)
		lookup.EXPECT().FindByName(gomock.Any(), "lighting").Return(want, nil)

		got, err := service.NewClassifier(adapter, lookup).Classify(ctx, "Lantaarnpaal kapot")
		require.NoError(t, err)
		assert.Same(t, want, got)
	})

	t.Run("adapter failure propagates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		adapter := mocks.NewMockAdapter(ctrl)
		lookup := mocks.NewMockLookup(ctrl)

		boom := errors.New("model unavailable")
		adapter.EXPECT().Classify(gomock.Any(), gomock.Any()).Return("", boom)

		_, err := service.NewClassifier(adapter, lookup).Classify(ctx, "text")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("unknown name surfaces as classification not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		adapter := mocks.NewMockAdapter(ctrl)
		lookup := mocks.NewMockLookup(ctrl)

		adapter.EXPECT().Classify(gomock.Any(), gomock.Any()).Return("phantom", nil)
		lookup.EXPECT().FindByName(gomock.Any(), "phantom").Return(nil, sentinel.ErrClassificationNotFound)

		_, err := service.NewClassifier(adapter, lookup).Classify(ctx, "text")
		assert.ErrorIs(t, err, sentinel.ErrClassificationNotFound)
	})
}
