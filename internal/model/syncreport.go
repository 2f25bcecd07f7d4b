package model

import "time"

// SyncReport summarizes one orchestration run for a single kind.
type SyncReport struct {
	RunID      string        `json:"run_id"`
	Kind       Kind          `json:"kind"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"-"`

	Listed  int `json:"listed"`  // items in the remote listing
	Skipped int `json:"skipped"` // skip-detail: meta hash unchanged
	Fetched int `json:"fetched"` // detail fetches performed
	Updated int `json:"updated"` // rows upserted with changed fields
	Touched int `json:"touched"` // rows where only last_synced_at advanced
	Failed  int `json:"failed"`  // items skipped on permanent errors
	Missing int `json:"missing"` // persisted rows absent from the listing

	Err string `json:"error,omitempty"`
}

// Stats is the per-kind summary served by the stats endpoints.
type Stats struct {
	Kind       Kind       `json:"kind"`
	Count      int64      `json:"count"`
	LastSynced *time.Time `json:"last_synced,omitempty"`
	Running    bool       `json:"running"`
}
