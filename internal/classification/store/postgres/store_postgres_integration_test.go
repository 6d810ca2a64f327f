//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	assetmodels "meldingen/internal/asset/models"
	assetpostgres "meldingen/internal/asset/store/postgres"
	"meldingen/internal/classification/models"
	"meldingen/internal/classification/store/postgres"
	"meldingen/pkg/domain"
	"meldingen/pkg/platform/sentinel"
	"meldingen/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres   *containers.PostgresContainer
	store      *postgres.Store
	assetTypes *assetpostgres.AssetTypeStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.postgres.Apply(s.T(), containers.Schema()...)
	s.store = postgres.New(s.postgres.DB)
	s.assetTypes = assetpostgres.NewAssetTypeStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "classifications", "asset_types")
	s.Require().NoError(err)
}

func newClassification(name string) *models.Classification {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Classification{
		ID:        domain.NewClassificationID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *PostgresStoreSuite) TestSaveAndFindByName() {
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	at := assetmodels.AssetType{ID: domain.NewAssetTypeID(), Name: "lampposts", CreatedAt: now, UpdatedAt: now}
	s.Require().NoError(s.assetTypes.Save(ctx, at))

	c := newClassification("lighting")
	c.AssetType = &at
	s.Require().NoError(s.store.Save(ctx, c))

	got, err := s.store.FindByName(ctx, "lighting")
	s.Require().NoError(err)
	s.Equal(c.ID, got.ID)
	s.Require().NotNil(got.AssetType)
	s.Equal(at.ID, got.AssetType.ID)
}

func (s *PostgresStoreSuite) TestFindByNameUnknown() {
	_, err := s.store.FindByName(context.Background(), "nonexistent")
	s.ErrorIs(err, sentinel.ErrClassificationNotFound)
}

func (s *PostgresStoreSuite) TestRename() {
	ctx := context.Background()

	c := newClassification("garbage")
	s.Require().NoError(s.store.Save(ctx, c))

	c.Name = "waste"
	s.Require().NoError(s.store.Save(ctx, c))

	_, err := s.store.FindByName(ctx, "garbage")
	s.ErrorIs(err, sentinel.ErrClassificationNotFound)

	got, err := s.store.FindByName(ctx, "waste")
	s.Require().NoError(err)
	s.Equal(c.ID, got.ID)
}

func (s *PostgresStoreSuite) TestList() {
	ctx := context.Background()

	for _, name := range []string{"trees", "lighting", "waste"} {
		s.Require().NoError(s.store.Save(ctx, newClassification(name)))
	}

	classifications, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(classifications, 3)
	s.Equal("lighting", classifications[0].Name, "listed in name order")
	s.Equal("trees", classifications[1].Name)
	s.Equal("waste", classifications[2].Name)
}

func (s *PostgresStoreSuite) TestDelete() {
	ctx := context.Background()

	c := newClassification("lighting")
	s.Require().NoError(s.store.Save(ctx, c))

	s.Require().NoError(s.store.Delete(ctx, c.ID))
	_, err := s.store.Retrieve(ctx, c.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
