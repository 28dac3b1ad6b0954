// Package pipeline drives one retailer's ingestion run end to end: discover pages,
// parse listings, fetch detail, normalize, match against the canonical catalog, and
// upsert (spec §4.9).
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kainuguru/ingestion-core/internal/adapter"
	"github.com/kainuguru/ingestion-core/internal/matching"
	"github.com/kainuguru/ingestion-core/internal/models"
	"github.com/kainuguru/ingestion-core/internal/monitoring"
	"github.com/kainuguru/ingestion-core/internal/repositories"
	"github.com/kainuguru/ingestion-core/pkg/logger"
)

const searchableTextMaxTokens = 220

// Runner executes ingestion runs for a single retailer slug against a configured adapter.
type Runner struct {
	retailers *repositories.RetailerRepository
	runs      *repositories.IngestionRunRepository
	canonical *repositories.CanonicalProductRepository
	listings  *repositories.RetailerListingRepository
	prices    *repositories.PriceRepository
	matcher   *matching.Engine
}

func NewRunner(
	retailers *repositories.RetailerRepository,
	runs *repositories.IngestionRunRepository,
	canonical *repositories.CanonicalProductRepository,
	listings *repositories.RetailerListingRepository,
	prices *repositories.PriceRepository,
	matcher *matching.Engine,
) *Runner {
	return &Runner{
		retailers: retailers,
		runs:      runs,
		canonical: canonical,
		listings:  listings,
		prices:    prices,
		matcher:   matcher,
	}
}

// Run executes one full ingestion run for retailerSlug using src, and returns the
// finished IngestionRun (spec §4.9 steps 1-6). When the error is nil the returned run
// carries a terminal status; a listPages failure is reported as a failed run with an error
// summary, not as an error. A non-nil error (unknown retailer, failed lookup, or failed run
// creation) comes with a nil run.
func (r *Runner) Run(ctx context.Context, retailerSlug string, src adapter.SourceAdapter) (*models.IngestionRun, error) {
	retailer, err := r.retailers.GetBySlug(ctx, retailerSlug)
	if err != nil {
		return nil, fmt.Errorf("pipeline: looking up retailer %s: %w", retailerSlug, err)
	}
	if retailer == nil {
		return nil, fmt.Errorf("pipeline: unknown retailer slug %q", retailerSlug)
	}

	run := &models.IngestionRun{
		ID:         uuid.New().String(),
		RetailerID: retailer.ID,
		Status:     string(models.RunStatusRunning),
		StartedAt:  time.Now().UTC(),
	}
	if err := r.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("pipeline: creating run: %w", err)
	}

	log := logger.PipelineLogger(run.ID, retailerSlug)
	start := time.Now().UTC()

	pages, err := src.ListPages()
	if err != nil {
		r.finish(ctx, run, fmt.Errorf("listPages: %w", err))
		monitoring.RunsTotal.WithLabelValues(retailerSlug, run.Status).Inc()
		monitoring.RunDurationSeconds.WithLabelValues(retailerSlug).Observe(time.Since(start).Seconds())
		return run, nil
	}

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			log.Warn().Msg("run cancelled between pages")
			break
		}

		listings, err := src.ParseListing(page)
		if err != nil {
			log.Warn().Err(err).Str("url", page.URL).Msg("parseListing failed, skipping page")
			run.RecordFailed()
			monitoring.RunItemsTotal.WithLabelValues(retailerSlug, "failed").Inc()
			continue
		}

		for _, listing := range listings {
			if err := ctx.Err(); err != nil {
				log.Warn().Msg("run cancelled between listings")
				break
			}

			run.RecordItem()
			monitoring.RunItemsTotal.WithLabelValues(retailerSlug, "total").Inc()

			outcome, err := r.processListing(ctx, retailer, src, listing)
			if err != nil {
				log.Warn().Err(err).Str("source_product_id", listing.SourceProductID).Msg("item failed")
				run.RecordFailed()
				monitoring.RunItemsTotal.WithLabelValues(retailerSlug, "failed").Inc()
				continue
			}

			switch outcome {
			case outcomeNew:
				run.RecordNew()
				monitoring.RunItemsTotal.WithLabelValues(retailerSlug, "new").Inc()
			case outcomeUpdated:
				run.RecordUpdated()
				monitoring.RunItemsTotal.WithLabelValues(retailerSlug, "updated").Inc()
			}
		}
	}

	r.finish(ctx, run, nil)
	monitoring.RunsTotal.WithLabelValues(retailerSlug, run.Status).Inc()
	monitoring.RunDurationSeconds.WithLabelValues(retailerSlug).Observe(time.Since(start).Seconds())
	log.Info().
		Int("items_total", run.ItemsTotal).
		Int("items_new", run.ItemsNew).
		Int("items_updated", run.ItemsUpdated).
		Int("items_failed", run.ItemsFailed).
		Msg("run finished")
	return run, nil
}

type itemOutcome int

const (
	outcomeUnchanged itemOutcome = iota
	outcomeNew
	outcomeUpdated
)

// processListing runs fetchDetail -> normalize -> match -> upsert for one listing
// (spec §4.9 step 4).
func (r *Runner) processListing(ctx context.Context, retailer *models.Retailer, src adapter.SourceAdapter, listing adapter.Listing) (itemOutcome, error) {
	detail, err := src.FetchDetail(listing)
	if err != nil {
		return outcomeUnchanged, fmt.Errorf("fetchDetail: %w", err)
	}

	normalized, err := src.Normalize(listing, detail)
	if err != nil {
		return outcomeUnchanged, fmt.Errorf("normalize: %w", err)
	}

	existing, err := r.listings.GetBySourceProductID(ctx, retailer.ID, normalized.SourceProductID)
	if err != nil {
		return outcomeUnchanged, fmt.Errorf("loading existing listing: %w", err)
	}

	existingListingID := ""
	if existing != nil {
		existingListingID = existing.ID
	}

	matchResult, err := r.matcher.Match(ctx, matching.Item{
		Vertical:      normalized.Vertical,
		CanonicalName: normalized.CanonicalName,
		Brand:         normalized.Brand,
		Category:      normalized.Category,
		GTIN:          normalized.GTIN,
		MPN:           normalized.MPN,
		ModelNumber:   normalized.ModelNumber,
		Attributes:    normalized.Attributes,
	}, existingListingID)
	if err != nil {
		return outcomeUnchanged, fmt.Errorf("matching: %w", err)
	}
	monitoring.MatchTierTotal.WithLabelValues(normalized.Vertical, string(matchResult.Tier)).Inc()

	product, err := r.resolveCanonical(ctx, matchResult, normalized)
	if err != nil {
		return outcomeUnchanged, fmt.Errorf("resolving canonical: %w", err)
	}

	listingID, outcome, err := r.upsertListing(ctx, retailer, existing, product, normalized)
	if err != nil {
		return outcomeUnchanged, fmt.Errorf("upserting listing: %w", err)
	}

	if err := r.recordPrice(ctx, listingID, normalized); err != nil {
		return outcomeUnchanged, fmt.Errorf("recording price: %w", err)
	}

	return outcome, nil
}

// resolveCanonical reuses the matched canonical (merging in any monotonic-fill fields),
// or creates a brand new one (spec §4.9: "reuse matched canonical or create new").
func (r *Runner) resolveCanonical(ctx context.Context, match matching.Result, normalized adapter.NormalizedProduct) (*models.CanonicalProduct, error) {
	if match.CanonicalID != nil {
		product, err := r.canonical.GetByID(ctx, *match.CanonicalID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("matched canonical %s vanished", *match.CanonicalID)
		}

		decision := product.ShouldTransitionVertical(normalized.Vertical, normalized.VerticalSource, normalized.VerticalConfidence)
		if decision {
			product.Vertical = normalized.Vertical
		}

		product.FillIdentifiersMonotonic(normalized.GTIN, normalized.MPN, normalized.ModelNumber, normalized.ImageURL)
		product.ApplyBrandCategory(normalized.Brand, normalized.Category)
		product.MergeAttributes(models.AttributeMap(normalized.Attributes))
		product.RebuildSearchableText(searchableTextMaxTokens)

		if err := r.canonical.Update(ctx, product); err != nil {
			return nil, err
		}
		return product, nil
	}

	var gtin, mpn, modelNumber, imageURL *string
	if normalized.GTIN != "" {
		gtin = &normalized.GTIN
	}
	if normalized.MPN != "" {
		mpn = &normalized.MPN
	}
	if normalized.ModelNumber != "" {
		modelNumber = &normalized.ModelNumber
	}
	if normalized.ImageURL != "" {
		imageURL = &normalized.ImageURL
	}

	product := &models.CanonicalProduct{
		ID:            uuid.New().String(),
		CanonicalName: normalized.CanonicalName,
		Vertical:      normalized.Vertical,
		Brand:         normalized.Brand,
		Category:      normalized.Category,
		GTIN:          gtin,
		MPN:           mpn,
		ModelNumber:   modelNumber,
		ImageURL:      imageURL,
		Attributes:    models.AttributeMap(normalized.Attributes),
	}
	product.RebuildSearchableText(searchableTextMaxTokens)

	if err := r.canonical.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// upsertListing creates or updates the RetailerListing row and reports its id plus whether
// it was new.
func (r *Runner) upsertListing(ctx context.Context, retailer *models.Retailer, existing *models.RetailerListing, product *models.CanonicalProduct, normalized adapter.NormalizedProduct) (string, itemOutcome, error) {
	var imageURL *string
	if normalized.ImageURL != "" {
		imageURL = &normalized.ImageURL
	}
	var availability *string
	if normalized.Availability != "" {
		availability = &normalized.Availability
	}

	if existing != nil {
		existing.ApplyUpsert(&product.ID, normalized.Title, normalized.URL, imageURL, models.AttributeMap(normalized.RawAttributes), availability)
		if err := r.listings.Update(ctx, existing); err != nil {
			return "", outcomeUnchanged, err
		}
		return existing.ID, outcomeUpdated, nil
	}

	listing := &models.RetailerListing{
		ID:              uuid.New().String(),
		RetailerID:      retailer.ID,
		SourceProductID: normalized.SourceProductID,
	}
	listing.ApplyUpsert(&product.ID, normalized.Title, normalized.URL, imageURL, models.AttributeMap(normalized.RawAttributes), availability)
	if err := r.listings.Create(ctx, listing); err != nil {
		return "", outcomeUnchanged, err
	}
	return listing.ID, outcomeNew, nil
}

// recordPrice always inserts a new PriceObservation, then refreshes the LatestPrice
// projection (spec §4.9: "always insert a new row").
func (r *Runner) recordPrice(ctx context.Context, retailerListingID string, normalized adapter.NormalizedProduct) error {
	if retailerListingID == "" {
		return nil
	}
	capturedAt := normalized.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now().UTC()
	}

	var promoText *string
	if normalized.PromoText != "" {
		promoText = &normalized.PromoText
	}

	obs := &models.PriceObservation{
		ID:                uuid.New().String(),
		RetailerListingID: retailerListingID,
		Regular:           normalized.PriceNZD,
		Promo:             normalized.PromoPriceNZD,
		PromoText:         promoText,
		DiscountPercent:   normalized.DiscountPct,
		CapturedAt:        capturedAt,
	}
	if err := r.prices.InsertObservation(ctx, obs); err != nil {
		return err
	}

	latest := &models.LatestPrice{}
	latest.FromObservation(obs)
	return r.prices.UpsertLatest(ctx, latest)
}

// finish stamps the run terminal and persists it; err nil means a clean completion, non-nil
// means a top-level failure (spec §4.9 steps 3 and 5).
func (r *Runner) finish(ctx context.Context, run *models.IngestionRun, err error) {
	now := time.Now().UTC()
	if err != nil {
		run.Fail(now, err.Error())
	} else {
		run.Complete(now)
	}
	if updateErr := r.runs.Update(ctx, run); updateErr != nil {
		logger.PipelineLogger(run.ID, "").Error().Err(updateErr).Msg("failed to persist finished run")
	}
}

