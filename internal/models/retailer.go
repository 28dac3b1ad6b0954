package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Retailer identifies a source of listings. Seeded externally (migrations/admin tooling);
// the ingestion core only ever reads it.
type Retailer struct {
	bun.BaseModel `bun:"table:retailers,alias:r"`

	ID          int64  `bun:"id,pk,autoincrement" json:"id"`
	Slug        string `bun:"slug,unique,notnull" json:"slug"`
	DisplayName string `bun:"display_name,notnull" json:"display_name"`
	Vertical    string `bun:"vertical,notnull,default:'tech'" json:"vertical"`
	Active      bool   `bun:"active,notnull,default:true" json:"active"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Listings []*RetailerListing `bun:"rel:has-many,join:id=retailer_id" json:"listings,omitempty"`
}

func (r *Retailer) TableName() string {
	return "retailers"
}
