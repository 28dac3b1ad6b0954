package repositories

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"

	"github.com/kainuguru/ingestion-core/internal/models"
	"github.com/kainuguru/ingestion-core/internal/repositories/base"
)

// RetailerRepository reads Retailer rows. The core never creates or mutates retailers — they
// are seeded externally.
type RetailerRepository struct {
	db   *bun.DB
	base *base.Repository[models.Retailer]
}

func NewRetailerRepository(db *bun.DB) *RetailerRepository {
	return &RetailerRepository{db: db, base: base.NewRepository[models.Retailer](db, "r.id")}
}

// GetBySlug looks up a retailer by its unique slug, returning (nil, nil) when not found so
// the pipeline can translate that into a whole-run failure (spec §4.9 step 1).
func (r *RetailerRepository) GetBySlug(ctx context.Context, slug string) (*models.Retailer, error) {
	var retailer models.Retailer
	err := r.db.NewSelect().
		Model(&retailer).
		Where("r.slug = ?", slug).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &retailer, nil
}
