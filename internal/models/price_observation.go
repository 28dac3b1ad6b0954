package models

import (
	"time"

	"github.com/uptrace/bun"
)

// PriceObservation is an append-only capture of a retailer listing's price at a point in
// time. Immutable after insert.
type PriceObservation struct {
	bun.BaseModel `bun:"table:price_observations,alias:po"`

	ID                string   `bun:"id,pk" json:"id"`
	RetailerListingID string   `bun:"retailer_listing_id,notnull" json:"retailer_listing_id"`
	Regular           float64  `bun:"regular,notnull" json:"regular"`
	Promo             *float64 `bun:"promo" json:"promo,omitempty"`
	PromoText         *string  `bun:"promo_text" json:"promo_text,omitempty"`
	DiscountPercent   *float64 `bun:"discount_percent" json:"discount_percent,omitempty"`
	CapturedAt        time.Time `bun:"captured_at,notnull,default:current_timestamp" json:"captured_at"`

	RetailerListing *RetailerListing `bun:"rel:belongs-to,join:retailer_listing_id=id" json:"-"`
}

func (po *PriceObservation) TableName() string {
	return "price_observations"
}
