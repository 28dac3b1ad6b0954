package matching

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/kainuguru/ingestion-core/internal/models"
	"github.com/kainuguru/ingestion-core/internal/repositories"
)

func setupDB(t *testing.T) *bun.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:matching_%s?mode=memory&cache=shared", t.Name())
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

func strPtr(s string) *string { return &s }

func TestMatch_GTINTier(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	products := repositories.NewCanonicalProductRepository(db)
	listings := repositories.NewRetailerListingRepository(db)
	engine := NewEngine(products, listings)

	existing := &models.CanonicalProduct{
		ID:            "cp-1",
		CanonicalName: "Acer Nitro 16 Gaming Laptop",
		Vertical:      "tech",
		Brand:         "Acer",
		Category:      "laptops",
		GTIN:          strPtr("1234567890123"),
	}
	require.NoError(t, products.Create(ctx, existing))

	item := Item{
		Vertical:      "tech",
		CanonicalName: "Acer Nitro 16",
		Brand:         "Acer",
		Category:      "laptops",
		GTIN:          "1234567890123",
	}

	result, err := engine.Match(ctx, item, "")
	require.NoError(t, err)
	assert.Equal(t, TierGTIN, result.Tier)
	require.NotNil(t, result.CanonicalID)
	assert.Equal(t, "cp-1", *result.CanonicalID)
	assert.Equal(t, 1.0, result.Score)
}

func TestMatch_FuzzyTier(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	products := repositories.NewCanonicalProductRepository(db)
	listings := repositories.NewRetailerListingRepository(db)
	engine := NewEngine(products, listings)

	existing := &models.CanonicalProduct{
		ID:            "cp-2",
		CanonicalName: "Acer Nitro16 Gaming Laptop",
		Vertical:      "tech",
		Brand:         "Acer",
		Category:      "laptops",
		Attributes: models.AttributeMap{
			"cpu_score":  7000,
			"ram_gb":     16,
			"storage_gb": 512,
		},
	}
	require.NoError(t, products.Create(ctx, existing))

	item := Item{
		Vertical:      "tech",
		CanonicalName: "Acer Nitro 16 Gaming",
		Brand:         "Acer",
		Category:      "laptops",
		Attributes: map[string]interface{}{
			"cpu_score":  7000,
			"ram_gb":     16,
			"storage_gb": 512,
		},
	}

	result, err := engine.Match(ctx, item, "")
	require.NoError(t, err)
	assert.Equal(t, TierFuzzy, result.Tier)
	assert.GreaterOrEqual(t, result.Score, 0.82)
	require.NotNil(t, result.CanonicalID)
	assert.Equal(t, "cp-2", *result.CanonicalID)
}

func TestMatch_PharmaVariantSplit(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	products := repositories.NewCanonicalProductRepository(db)
	listings := repositories.NewRetailerListingRepository(db)
	engine := NewEngine(products, listings)

	existing := &models.CanonicalProduct{
		ID:            "cp-3",
		CanonicalName: "Panadol Tablets 500mg 20 Pack",
		Vertical:      "pharma",
		Brand:         "Panadol",
		Category:      "pain-relief",
		GTIN:          strPtr("9999999999999"),
		Attributes: models.AttributeMap{
			"strength":  "500mg",
			"form":      "tablet",
			"pack_size": "20",
		},
	}
	require.NoError(t, products.Create(ctx, existing))

	item := Item{
		Vertical:      "pharma",
		CanonicalName: "Panadol Caplets 500mg 24 Pack",
		Brand:         "Panadol",
		Category:      "pain-relief",
		GTIN:          "9999999999999",
		Attributes: map[string]interface{}{
			"strength":  "500mg",
			"form":      "caplet",
			"pack_size": "24",
		},
	}

	result, err := engine.Match(ctx, item, "")
	require.NoError(t, err)
	assert.Equal(t, TierNew, result.Tier)
	assert.Nil(t, result.CanonicalID)
}

func TestTokenSetRatio_SplitTokenStaysSimilar(t *testing.T) {
	a := tokenSetRatio("ACER NITRO 16 GAMING LAPTOP", "ACER NITRO16 GAMING LAPTOP")
	assert.Greater(t, a, 0.8)
}
