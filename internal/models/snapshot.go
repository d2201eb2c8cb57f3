package models

import "time"

// PublicSnapshot is the precomputed status-page body, keyed by a small
// name-space. Body is opaque JSON the Aggregator owns the shape of.
type PublicSnapshot struct {
	Key         string    `json:"key" gorm:"column:key;primaryKey"`
	GeneratedAt time.Time `json:"generated_at" gorm:"column:generated_at"`
	Body        string    `json:"body" gorm:"column:body;type:text"`
}

func (PublicSnapshot) TableName() string { return "public_snapshots" }

// PublicSnapshotKey is the single name-space the status page uses.
const PublicSnapshotKey = "status"
