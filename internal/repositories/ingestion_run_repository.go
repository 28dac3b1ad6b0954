package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/kainuguru/ingestion-core/internal/models"
	"github.com/kainuguru/ingestion-core/internal/repositories/base"
)

// IngestionRunRepository persists IngestionRun rows.
type IngestionRunRepository struct {
	base *base.Repository[models.IngestionRun]
}

func NewIngestionRunRepository(db *bun.DB) *IngestionRunRepository {
	return &IngestionRunRepository{base: base.NewRepository[models.IngestionRun](db, "ir.id")}
}

func (r *IngestionRunRepository) Create(ctx context.Context, run *models.IngestionRun) error {
	return r.base.Create(ctx, run)
}

func (r *IngestionRunRepository) Update(ctx context.Context, run *models.IngestionRun) error {
	return r.base.Update(ctx, run)
}

func (r *IngestionRunRepository) GetByID(ctx context.Context, id string) (*models.IngestionRun, error) {
	return r.base.GetByID(ctx, id)
}
