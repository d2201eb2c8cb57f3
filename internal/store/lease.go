package store

import (
	"context"
	"time"

	"github.com/openuptime/uptimer/internal/models"
)

// ClaimLease attempts to claim the named lock for holder, with a lease
// lasting ttl from now. A row is claimable iff it does not exist, has
// already expired, or is already held by this holder. The claim is a
// single conditional upsert so two concurrent instances can never both
// win it for the same tick.
func (q *Queries) ClaimLease(ctx context.Context, name, holder string, now time.Time, ttl time.Duration) (bool, error) {
	expiresAt := now.Add(ttl)

	res := q.db.WithContext(ctx).Exec(`
		INSERT INTO locks (name, holder, acquired_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			holder = EXCLUDED.holder,
			acquired_at = EXCLUDED.acquired_at,
			expires_at = EXCLUDED.expires_at
		WHERE locks.expires_at <= ? OR locks.holder = ?
	`, name, holder, now, expiresAt, now, holder)
	if res.Error != nil {
		return false, wrapStorage("claim_lease", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ReleaseLease clears the lease early so the next tick doesn't have to
// wait out the full TTL. Best-effort: if it fails, the lease simply
// expires naturally.
func (q *Queries) ReleaseLease(ctx context.Context, name, holder string, now time.Time) error {
	err := q.db.WithContext(ctx).
		Model(&models.Lock{}).
		Where("name = ? AND holder = ?", name, holder).
		Update("expires_at", now).Error
	return wrapStorage("release_lease", err)
}
