package repositories

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"

	"github.com/kainuguru/ingestion-core/internal/models"
	"github.com/kainuguru/ingestion-core/internal/repositories/base"
)

// RetailerListingRepository persists RetailerListing rows, keyed uniquely by
// (retailer_id, source_product_id).
type RetailerListingRepository struct {
	db   *bun.DB
	base *base.Repository[models.RetailerListing]
}

func NewRetailerListingRepository(db *bun.DB) *RetailerListingRepository {
	return &RetailerListingRepository{
		db:   db,
		base: base.NewRepository[models.RetailerListing](db, "rl.id"),
	}
}

func (r *RetailerListingRepository) GetByID(ctx context.Context, id string) (*models.RetailerListing, error) {
	return r.base.GetByID(ctx, id)
}

// GetBySourceProductID looks up the existing listing for (retailer, source-product-id),
// returning (nil, nil) when none exists — callers treat that as "create new".
func (r *RetailerListingRepository) GetBySourceProductID(ctx context.Context, retailerID int64, sourceProductID string) (*models.RetailerListing, error) {
	var listing models.RetailerListing
	err := r.db.NewSelect().
		Model(&listing).
		Where("rl.retailer_id = ?", retailerID).
		Where("rl.source_product_id = ?", sourceProductID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &listing, nil
}

func (r *RetailerListingRepository) Create(ctx context.Context, l *models.RetailerListing) error {
	return r.base.Create(ctx, l)
}

func (r *RetailerListingRepository) Update(ctx context.Context, l *models.RetailerListing) error {
	return r.base.Update(ctx, l)
}

// GetOverride returns the ProductOverride for a listing, if any.
func (r *RetailerListingRepository) GetOverride(ctx context.Context, retailerListingID string) (*models.ProductOverride, error) {
	var override models.ProductOverride
	err := r.db.NewSelect().
		Model(&override).
		Where("po_ov.retailer_listing_id = ?", retailerListingID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &override, nil
}
