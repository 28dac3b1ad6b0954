package models

import (
	"time"

	"github.com/uptrace/bun"
)

// LatestPrice is a derived projection, kept in step with the most recent PriceObservation for
// a retailer listing. One row per retailer-listing; not authoritative on its own.
type LatestPrice struct {
	bun.BaseModel `bun:"table:latest_prices,alias:lp"`

	RetailerListingID string    `bun:"retailer_listing_id,pk" json:"retailer_listing_id"`
	Regular           float64   `bun:"regular,notnull" json:"regular"`
	Promo             *float64  `bun:"promo" json:"promo,omitempty"`
	PromoText         *string   `bun:"promo_text" json:"promo_text,omitempty"`
	DiscountPercent   *float64  `bun:"discount_percent" json:"discount_percent,omitempty"`
	CapturedAt        time.Time `bun:"captured_at,notnull,default:current_timestamp" json:"captured_at"`
}

func (lp *LatestPrice) TableName() string {
	return "latest_prices"
}

// FromObservation copies the observation's price fields onto the latest-price projection.
func (lp *LatestPrice) FromObservation(obs *PriceObservation) {
	lp.RetailerListingID = obs.RetailerListingID
	lp.Regular = obs.Regular
	lp.Promo = obs.Promo
	lp.PromoText = obs.PromoText
	lp.DiscountPercent = obs.DiscountPercent
	lp.CapturedAt = obs.CapturedAt
}
