package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openuptime/uptimer/internal/models"
)

// ListChannels returns every configured notification channel.
func (q *Queries) ListChannels(ctx context.Context) ([]*models.NotificationChannel, error) {
	var out []*models.NotificationChannel
	if err := q.db.WithContext(ctx).Find(&out).Error; err != nil {
		return nil, wrapStorage("list_channels", err)
	}
	return out, nil
}

// GetChannel loads a single channel by id.
func (q *Queries) GetChannel(ctx context.Context, id int64) (*models.NotificationChannel, error) {
	var c models.NotificationChannel
	if err := q.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, wrapStorage("get_channel", err)
	}
	return &c, nil
}

// ClaimDelivery inserts the (event_key, channel_id) row with status
// pending. Because the pair is the primary key and the insert is
// ON CONFLICT DO NOTHING, a second caller racing on the same pair
// inserts no row and gets claimed=false: the delivery is already
// claimed by someone else, and this caller must not send.
func (q *Queries) ClaimDelivery(ctx context.Context, eventKey string, channelID int64, now time.Time) (claimed bool, err error) {
	res := q.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.NotificationDelivery{
			EventKey:    eventKey,
			ChannelID:   channelID,
			Status:      models.DeliveryPending,
			AttemptedAt: now,
		})
	if res.Error != nil {
		return false, wrapStorage("claim_delivery", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// FinalizeDelivery records the outcome of a claimed delivery.
func (q *Queries) FinalizeDelivery(ctx context.Context, eventKey string, channelID int64, status models.DeliveryStatus, httpStatus *int, deliveryErr *string, finalizedAt time.Time) error {
	err := q.db.WithContext(ctx).
		Model(&models.NotificationDelivery{}).
		Where("event_key = ? AND channel_id = ?", eventKey, channelID).
		Updates(map[string]interface{}{
			"status":       status,
			"http_status":  httpStatus,
			"error":        deliveryErr,
			"finalized_at": finalizedAt,
		}).Error
	return wrapStorage("finalize_delivery", err)
}

// DeliveryExists reports whether a delivery row already exists for the
// pair.
func (q *Queries) DeliveryExists(ctx context.Context, eventKey string, channelID int64) (bool, error) {
	var d models.NotificationDelivery
	err := q.db.WithContext(ctx).
		First(&d, "event_key = ? AND channel_id = ?", eventKey, channelID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, wrapStorage("delivery_exists", err)
	}
	return true, nil
}
