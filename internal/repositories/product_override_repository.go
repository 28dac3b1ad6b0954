package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/kainuguru/ingestion-core/internal/models"
	"github.com/kainuguru/ingestion-core/internal/repositories/base"
)

// ProductOverrideRepository persists manual listing->canonical overrides. The core only
// reads these (via RetailerListingRepository.GetOverride); creation is an admin-surface
// concern out of scope for this module, but the write path is kept so tests can seed
// overrides directly.
type ProductOverrideRepository struct {
	base *base.Repository[models.ProductOverride]
}

func NewProductOverrideRepository(db *bun.DB) *ProductOverrideRepository {
	return &ProductOverrideRepository{base: base.NewRepository[models.ProductOverride](db, "po_ov.id")}
}

func (r *ProductOverrideRepository) Create(ctx context.Context, o *models.ProductOverride) error {
	return r.base.Create(ctx, o)
}
