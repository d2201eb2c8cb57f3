package models

import "time"

// Lock is the scheduler's lease row. A row is claimable iff it does not
// exist, has expired, or the holder matches the claiming instance.
type Lock struct {
	Name      string    `json:"name" gorm:"column:name;primaryKey"`
	Holder    string    `json:"holder" gorm:"column:holder"`
	AcquiredAt time.Time `json:"acquired_at" gorm:"column:acquired_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"column:expires_at"`
}

func (Lock) TableName() string { return "locks" }

// SchedulerTickLock is the well-known lease name the scheduler claims
// once per tick.
const SchedulerTickLock = "scheduled-tick"
