package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunItemsTotal tracks items_total/items_new/items_updated/items_failed across runs.
	// Labels:
	//   - retailer
	//   - outcome: "total", "new", "updated", "failed"
	RunItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestion_run_items_total",
			Help: "Total listings processed by an ingestion run, by outcome",
		},
		[]string{"retailer", "outcome"},
	)

	// RunsTotal tracks run completions by final status.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestion_runs_total",
			Help: "Total ingestion runs by final status",
		},
		[]string{"retailer", "status"},
	)

	// RunDurationSeconds tracks wall-clock run duration.
	RunDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingestion_run_duration_seconds",
			Help:    "Ingestion run duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"retailer"},
	)

	// FetchAttemptsTotal is a counter for HTTP fetcher outcomes. No code in this module
	// records to it.
	// Labels:
	//   - retailer
	//   - outcome: "success", "retried", "anti_bot_challenge", "permanent_error", "browser_fallback"
	FetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestion_fetch_attempts_total",
			Help: "HTTP fetch attempts by outcome",
		},
		[]string{"retailer", "outcome"},
	)

	// MatchTierTotal tracks which matching tier resolved each listing.
	// Labels:
	//   - vertical
	//   - tier: "gtin", "model", "manual_override", "fuzzy", "new"
	MatchTierTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestion_match_tier_total",
			Help: "Matching engine decisions by tier",
		},
		[]string{"vertical", "tier"},
	)

	// DiscoveryPoolSize is a histogram for the number of candidate URLs discovery produced per
	// run. No code in this module records to it.
	DiscoveryPoolSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingestion_discovery_pool_size",
			Help:    "Candidate product URLs produced by discovery per run",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
		},
		[]string{"retailer"},
	)
)
