package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openuptime/uptimer/internal/models"
)

// GetSnapshot loads the named cached aggregation, or nil if none has
// ever been computed.
func (q *Queries) GetSnapshot(ctx context.Context, key string) (*models.PublicSnapshot, error) {
	var s models.PublicSnapshot
	err := q.db.WithContext(ctx).First(&s, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStorage("get_snapshot", err)
	}
	return &s, nil
}

// PutSnapshot writes through the cache row. It is a write-through
// cache of a pure aggregation over the rest of the Store: callers
// always recompute before calling this, never patch the body in place.
func (q *Queries) PutSnapshot(ctx context.Context, key string, generatedAt time.Time, body string) error {
	err := q.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"generated_at", "body"}),
		}).
		Create(&models.PublicSnapshot{Key: key, GeneratedAt: generatedAt, Body: body}).Error
	return wrapStorage("put_snapshot", err)
}
