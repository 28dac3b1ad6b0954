package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ProductOverride is a manual mapping from a retailer-listing to a canonical product, with a
// reason. It overrides whatever the matching engine would otherwise decide.
type ProductOverride struct {
	bun.BaseModel `bun:"table:product_overrides,alias:po_ov"`

	ID                string `bun:"id,pk" json:"id"`
	RetailerListingID string `bun:"retailer_listing_id,unique,notnull" json:"retailer_listing_id"`
	ProductID         string `bun:"product_id,notnull" json:"product_id"`
	Reason            string `bun:"reason,notnull" json:"reason"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

func (po *ProductOverride) TableName() string {
	return "product_overrides"
}
