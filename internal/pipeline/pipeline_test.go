package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/kainuguru/ingestion-core/internal/adapter"
	"github.com/kainuguru/ingestion-core/internal/matching"
	"github.com/kainuguru/ingestion-core/internal/models"
	"github.com/kainuguru/ingestion-core/internal/repositories"
)

func setupDB(t *testing.T) *bun.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:pipeline_%s?mode=memory&cache=shared", t.Name())
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	for _, m := range []interface{}{
		(*models.Retailer)(nil),
		(*models.CanonicalProduct)(nil),
		(*models.RetailerListing)(nil),
		(*models.PriceObservation)(nil),
		(*models.LatestPrice)(nil),
		(*models.IngestionRun)(nil),
		(*models.ProductOverride)(nil),
	} {
		_, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}
	return db
}

type fakeAdapter struct {
	pages         []adapter.PageStub
	listings      map[string][]adapter.Listing
	details       map[string]adapter.Detail
	normalized    map[string]adapter.NormalizedProduct
	listPagesErr  error
	failListing   map[string]bool
	failParsePage map[string]bool
}

func (f *fakeAdapter) ListPages() ([]adapter.PageStub, error) {
	if f.listPagesErr != nil {
		return nil, f.listPagesErr
	}
	return f.pages, nil
}

func (f *fakeAdapter) ParseListing(page adapter.PageStub) ([]adapter.Listing, error) {
	if f.failParsePage[page.URL] {
		return nil, errors.New("listing page blocked")
	}
	return f.listings[page.URL], nil
}

func (f *fakeAdapter) FetchDetail(listing adapter.Listing) (adapter.Detail, error) {
	if f.failListing[listing.SourceProductID] {
		return adapter.Detail{}, errors.New("boom")
	}
	return f.details[listing.SourceProductID], nil
}

func (f *fakeAdapter) Normalize(listing adapter.Listing, detail adapter.Detail) (adapter.NormalizedProduct, error) {
	return f.normalized[listing.SourceProductID], nil
}

func newRunner(db *bun.DB) *Runner {
	retailers := repositories.NewRetailerRepository(db)
	runs := repositories.NewIngestionRunRepository(db)
	canonical := repositories.NewCanonicalProductRepository(db)
	listings := repositories.NewRetailerListingRepository(db)
	prices := repositories.NewPriceRepository(db)
	matcher := matching.NewEngine(canonical, listings)
	return NewRunner(retailers, runs, canonical, listings, prices, matcher)
}

func createRetailer(t *testing.T, db *bun.DB, slug, vertical string) *models.Retailer {
	t.Helper()
	retailer := &models.Retailer{Slug: slug, DisplayName: slug, Vertical: vertical, Active: true}
	_, err := db.NewInsert().Model(retailer).Exec(context.Background())
	require.NoError(t, err)
	return retailer
}

func TestRun_CreatesCanonicalAndListingForNewProduct(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	retailer := createRetailer(t, db, "pb-tech", "tech")

	page := adapter.PageStub{URL: "https://example.com/p/1"}
	listing := adapter.Listing{SourceProductID: "pb-1", Title: "Acer Nitro 16", URL: page.URL, Brand: "Acer", Category: "laptops"}
	fake := &fakeAdapter{
		pages:    []adapter.PageStub{page},
		listings: map[string][]adapter.Listing{page.URL: {listing}},
		details:  map[string]adapter.Detail{"pb-1": {GTIN: "1234567890123", PriceNZD: 1499.0}},
		normalized: map[string]adapter.NormalizedProduct{
			"pb-1": {
				Vertical: "tech", SourceProductID: "pb-1", Title: "Acer Nitro 16", URL: page.URL,
				CanonicalName: "Acer Nitro 16", Brand: "Acer", Category: "laptops",
				GTIN: "1234567890123", PriceNZD: 1499.0, Attributes: map[string]interface{}{"ram_gb": "16"},
			},
		},
	}

	runner := newRunner(db)
	run, err := runner.Run(ctx, "pb-tech", fake)
	require.NoError(t, err)
	assert.Equal(t, string(models.RunStatusCompleted), run.Status)
	assert.Equal(t, 1, run.ItemsTotal)
	assert.Equal(t, 1, run.ItemsNew)
	assert.Equal(t, 0, run.ItemsUpdated)
	assert.Equal(t, 0, run.ItemsFailed)
	assert.NotNil(t, run.FinishedAt)

	canonical, err := repositories.NewCanonicalProductRepository(db).FindByGTIN(ctx, "tech", "1234567890123")
	require.NoError(t, err)
	require.NotNil(t, canonical)
	assert.Equal(t, "Acer Nitro 16", canonical.CanonicalName)

	stored, err := repositories.NewRetailerListingRepository(db).GetBySourceProductID(ctx, retailer.ID, "pb-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotNil(t, stored.ProductID)
	assert.Equal(t, canonical.ID, *stored.ProductID)
}

func TestRun_SecondRunUpdatesExistingListingAndRecordsNewPrice(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	retailer := createRetailer(t, db, "pb-tech", "tech")

	page := adapter.PageStub{URL: "https://example.com/p/1"}
	listing := adapter.Listing{SourceProductID: "pb-1", Title: "Acer Nitro 16", URL: page.URL, Brand: "Acer", Category: "laptops"}
	makeAdapter := func(price float64, gtin string) *fakeAdapter {
		return &fakeAdapter{
			pages:    []adapter.PageStub{page},
			listings: map[string][]adapter.Listing{page.URL: {listing}},
			details:  map[string]adapter.Detail{"pb-1": {GTIN: gtin, PriceNZD: price}},
			normalized: map[string]adapter.NormalizedProduct{
				"pb-1": {
					Vertical: "tech", SourceProductID: "pb-1", Title: "Acer Nitro 16", URL: page.URL,
					CanonicalName: "Acer Nitro 16", Brand: "Acer", Category: "laptops",
					GTIN: gtin, PriceNZD: price,
				},
			},
		}
	}

	runner := newRunner(db)
	_, err := runner.Run(ctx, "pb-tech", makeAdapter(1499.0, "1234567890123"))
	require.NoError(t, err)

	run2, err := runner.Run(ctx, "pb-tech", makeAdapter(1399.0, "1234567890123"))
	require.NoError(t, err)
	assert.Equal(t, 1, run2.ItemsUpdated)
	assert.Equal(t, 0, run2.ItemsNew)

	existing, err := repositories.NewRetailerListingRepository(db).GetBySourceProductID(ctx, retailer.ID, "pb-1")
	require.NoError(t, err)
	require.NotNil(t, existing)

	latestObs, err := repositories.NewPriceRepository(db).MaxCapturedAt(ctx, existing.ID)
	require.NoError(t, err)
	require.NotNil(t, latestObs)
	assert.Equal(t, 1399.0, latestObs.Regular)
}

func TestRun_ParseListingFailureIncrementsFailedAndContinues(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	createRetailer(t, db, "pb-tech", "tech")

	goodPage := adapter.PageStub{URL: "https://example.com/p/good"}
	badPage := adapter.PageStub{URL: "https://example.com/p/bad"}
	listing := adapter.Listing{SourceProductID: "pb-1", Title: "Widget", URL: goodPage.URL, Brand: "Acme", Category: "misc"}

	fake := &fakeAdapter{
		pages:         []adapter.PageStub{badPage, goodPage},
		listings:      map[string][]adapter.Listing{goodPage.URL: {listing}},
		details:       map[string]adapter.Detail{"pb-1": {PriceNZD: 9.99}},
		failParsePage: map[string]bool{badPage.URL: true},
		normalized: map[string]adapter.NormalizedProduct{
			"pb-1": {
				Vertical: "tech", SourceProductID: "pb-1", Title: "Widget", URL: goodPage.URL,
				CanonicalName: "Widget", Brand: "Acme", Category: "misc", PriceNZD: 9.99,
			},
		},
	}

	runner := newRunner(db)
	run, err := runner.Run(ctx, "pb-tech", fake)
	require.NoError(t, err)
	assert.Equal(t, string(models.RunStatusCompleted), run.Status)
	assert.Equal(t, 1, run.ItemsTotal)
	assert.Equal(t, 1, run.ItemsNew)
	assert.Equal(t, 1, run.ItemsFailed)
}

func TestRun_ListPagesErrorFailsWholeRun(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	createRetailer(t, db, "pb-tech", "tech")

	fake := &fakeAdapter{listPagesErr: errors.New("site unreachable")}
	runner := newRunner(db)
	run, err := runner.Run(ctx, "pb-tech", fake)
	require.NoError(t, err)
	assert.Equal(t, string(models.RunStatusFailed), run.Status)
	require.NotNil(t, run.ErrorSummary)
	assert.Contains(t, *run.ErrorSummary, "site unreachable")
	assert.NotNil(t, run.FinishedAt)
}

func TestRun_UnknownRetailerErrors(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	runner := newRunner(db)
	_, err := runner.Run(ctx, "does-not-exist", &fakeAdapter{})
	require.Error(t, err)
}
