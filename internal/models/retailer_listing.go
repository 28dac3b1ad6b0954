package models

import (
	"time"

	"github.com/uptrace/bun"
)

// RetailerListing is one row per (retailer, source-product-id): a retailer's specific offer
// for a (possibly not-yet-canonicalized) product.
type RetailerListing struct {
	bun.BaseModel `bun:"table:retailer_listings,alias:rl"`

	ID              string  `bun:"id,pk" json:"id"`
	RetailerID      int64   `bun:"retailer_id,notnull" json:"retailer_id"`
	ProductID       *string `bun:"product_id" json:"product_id,omitempty"`
	SourceProductID string  `bun:"source_product_id,notnull" json:"source_product_id"`

	Title    string  `bun:"title,notnull" json:"title"`
	URL      string  `bun:"url,notnull" json:"url"`
	ImageURL *string `bun:"image_url" json:"image_url,omitempty"`

	RawAttributes AttributeMap `bun:"raw_attributes,type:jsonb" json:"raw_attributes"`
	Availability  *string      `bun:"availability" json:"availability,omitempty"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Retailer  *Retailer         `bun:"rel:belongs-to,join:retailer_id=id" json:"retailer,omitempty"`
	Product   *CanonicalProduct `bun:"rel:belongs-to,join:product_id=id" json:"product,omitempty"`
	Prices    []*PriceObservation `bun:"rel:has-many,join:id=retailer_listing_id" json:"prices,omitempty"`
	Latest    *LatestPrice      `bun:"rel:has-one,join:id=retailer_listing_id" json:"latest_price,omitempty"`
	Override  *ProductOverride  `bun:"rel:has-one,join:id=retailer_listing_id" json:"override,omitempty"`
}

func (rl *RetailerListing) TableName() string {
	return "retailer_listings"
}

// ApplyUpsert copies the mutable fields of a freshly-normalized listing onto the stored row,
// the per-item upsert step of the pipeline (spec §4.9: "update its {product_id, title, url,
// image_url, raw_attributes, availability}").
func (rl *RetailerListing) ApplyUpsert(productID *string, title, url string, imageURL *string, raw AttributeMap, availability *string) {
	rl.ProductID = productID
	rl.Title = title
	rl.URL = url
	rl.ImageURL = imageURL
	rl.RawAttributes = raw
	rl.Availability = availability
}
