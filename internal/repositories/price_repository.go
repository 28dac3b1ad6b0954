package repositories

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"

	"github.com/kainuguru/ingestion-core/internal/models"
	"github.com/kainuguru/ingestion-core/internal/repositories/base"
)

// PriceRepository inserts append-only PriceObservation rows and maintains the LatestPrice
// projection.
type PriceRepository struct {
	db           *bun.DB
	observations *base.Repository[models.PriceObservation]
}

func NewPriceRepository(db *bun.DB) *PriceRepository {
	return &PriceRepository{
		db:           db,
		observations: base.NewRepository[models.PriceObservation](db, "po.id"),
	}
}

// InsertObservation always inserts a new row (spec §4.9: "Always insert a new row").
func (r *PriceRepository) InsertObservation(ctx context.Context, obs *models.PriceObservation) error {
	return r.observations.Create(ctx, obs)
}

// UpsertLatest inserts or updates the LatestPrice row for a retailer listing.
func (r *PriceRepository) UpsertLatest(ctx context.Context, latest *models.LatestPrice) error {
	_, err := r.db.NewInsert().
		Model(latest).
		On("CONFLICT (retailer_listing_id) DO UPDATE").
		Set("regular = EXCLUDED.regular").
		Set("promo = EXCLUDED.promo").
		Set("promo_text = EXCLUDED.promo_text").
		Set("discount_percent = EXCLUDED.discount_percent").
		Set("captured_at = EXCLUDED.captured_at").
		Exec(ctx)
	return err
}

// MaxCapturedAt returns the listing's observation with the latest captured_at, or nil when
// the listing has none.
func (r *PriceRepository) MaxCapturedAt(ctx context.Context, retailerListingID string) (*models.PriceObservation, error) {
	var obs models.PriceObservation
	err := r.db.NewSelect().
		Model(&obs).
		Where("po.retailer_listing_id = ?", retailerListingID).
		Order("po.captured_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &obs, nil
}
