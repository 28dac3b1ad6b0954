package models

import (
	"time"

	"github.com/uptrace/bun"
)

// IngestionRunStatus is the lifecycle state of one pipeline execution.
type IngestionRunStatus string

const (
	RunStatusRunning   IngestionRunStatus = "running"
	RunStatusCompleted IngestionRunStatus = "completed"
	RunStatusFailed    IngestionRunStatus = "failed"
)

// IngestionRun is one row per pipeline execution for one retailer.
type IngestionRun struct {
	bun.BaseModel `bun:"table:ingestion_runs,alias:ir"`

	ID         string `bun:"id,pk" json:"id"`
	RetailerID int64  `bun:"retailer_id,notnull" json:"retailer_id"`
	Status     string `bun:"status,notnull,default:'running'" json:"status"`

	ItemsTotal   int `bun:"items_total,notnull,default:0" json:"items_total"`
	ItemsNew     int `bun:"items_new,notnull,default:0" json:"items_new"`
	ItemsUpdated int `bun:"items_updated,notnull,default:0" json:"items_updated"`
	ItemsFailed  int `bun:"items_failed,notnull,default:0" json:"items_failed"`

	ErrorSummary *string `bun:"error_summary" json:"error_summary,omitempty"`

	UsedFixtureFallback bool `bun:"used_fixture_fallback,notnull,default:false" json:"used_fixture_fallback"`

	StartedAt  time.Time  `bun:"started_at,nullzero,notnull,default:current_timestamp" json:"started_at"`
	FinishedAt *time.Time `bun:"finished_at" json:"finished_at,omitempty"`
}

func (ir *IngestionRun) TableName() string {
	return "ingestion_runs"
}

const errorSummaryMaxLen = 2000

// Complete marks the run as completed and stamps finished_at.
func (ir *IngestionRun) Complete(now time.Time) {
	ir.Status = string(RunStatusCompleted)
	ir.FinishedAt = &now
}

// Fail marks the whole run as failed with a truncated error summary, per spec §7's
// "fatal failures expose a truncated error summary".
func (ir *IngestionRun) Fail(now time.Time, reason string) {
	ir.Status = string(RunStatusFailed)
	if len(reason) > errorSummaryMaxLen {
		reason = reason[:errorSummaryMaxLen]
	}
	ir.ErrorSummary = &reason
	ir.FinishedAt = &now
}

// IsRunning reports whether the run has not yet reached a terminal status.
func (ir *IngestionRun) IsRunning() bool {
	return ir.Status == string(RunStatusRunning)
}

// RecordItem increments items_total for a listing handed off by parseListing, before the
// pipeline attempts fetchDetail/normalize/match/upsert on it.
func (ir *IngestionRun) RecordItem() {
	ir.ItemsTotal++
}

// RecordNew increments items_new (the upsert created a new retailer listing).
func (ir *IngestionRun) RecordNew() {
	ir.ItemsNew++
}

// RecordUpdated increments items_updated (the upsert updated an existing retailer listing).
func (ir *IngestionRun) RecordUpdated() {
	ir.ItemsUpdated++
}

// RecordFailed increments items_failed (a per-item failure; the run continues).
func (ir *IngestionRun) RecordFailed() {
	ir.ItemsFailed++
}
