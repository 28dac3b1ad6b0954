package repositories

import (
	"context"
	"database/sql"
	"strings"

	"github.com/uptrace/bun"

	"github.com/kainuguru/ingestion-core/internal/models"
	"github.com/kainuguru/ingestion-core/internal/repositories/base"
)

// CanonicalProductRepository persists CanonicalProduct rows and exposes the lookup queries
// the matching engine needs.
type CanonicalProductRepository struct {
	db   *bun.DB
	base *base.Repository[models.CanonicalProduct]
}

func NewCanonicalProductRepository(db *bun.DB) *CanonicalProductRepository {
	return &CanonicalProductRepository{
		db:   db,
		base: base.NewRepository[models.CanonicalProduct](db, "cp.id"),
	}
}

func (r *CanonicalProductRepository) GetByID(ctx context.Context, id string) (*models.CanonicalProduct, error) {
	return r.base.GetByID(ctx, id)
}

func (r *CanonicalProductRepository) Create(ctx context.Context, p *models.CanonicalProduct) error {
	return r.base.Create(ctx, p)
}

func (r *CanonicalProductRepository) Update(ctx context.Context, p *models.CanonicalProduct) error {
	return r.base.Update(ctx, p)
}

// FindByGTIN implements the matching engine's GTIN tier: exact vertical + canonicalized GTIN
// match.
func (r *CanonicalProductRepository) FindByGTIN(ctx context.Context, vertical, gtin string) (*models.CanonicalProduct, error) {
	if gtin == "" {
		return nil, nil
	}
	var p models.CanonicalProduct
	err := r.db.NewSelect().
		Model(&p).
		Where("cp.vertical = ?", vertical).
		Where("cp.gtin = ?", gtin).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// FindByModel implements the matching engine's model tier: vertical + case-insensitive brand
// + (MPN or model number) match.
func (r *CanonicalProductRepository) FindByModel(ctx context.Context, vertical, brand, mpn, modelNumber string) (*models.CanonicalProduct, error) {
	if mpn == "" && modelNumber == "" {
		return nil, nil
	}
	var p models.CanonicalProduct
	q := r.db.NewSelect().
		Model(&p).
		Where("cp.vertical = ?", vertical).
		Where("LOWER(cp.brand) = ?", strings.ToLower(brand))

	switch {
	case mpn != "" && modelNumber != "":
		q = q.Where("(cp.mpn = ? OR cp.model_number = ?)", mpn, modelNumber)
	case mpn != "":
		q = q.Where("cp.mpn = ?", mpn)
	default:
		q = q.Where("cp.model_number = ?", modelNumber)
	}

	err := q.Limit(1).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// FindFuzzyCandidates returns up to `limit` canonicals sharing (vertical, brand, category),
// the candidate pool for the matching engine's fuzzy tier.
func (r *CanonicalProductRepository) FindFuzzyCandidates(ctx context.Context, vertical, brand, category string, limit int) ([]*models.CanonicalProduct, error) {
	var candidates []*models.CanonicalProduct
	err := r.db.NewSelect().
		Model(&candidates).
		Where("cp.vertical = ?", vertical).
		Where("LOWER(cp.brand) = ?", strings.ToLower(brand)).
		Where("LOWER(cp.category) = ?", strings.ToLower(category)).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return candidates, nil
}
