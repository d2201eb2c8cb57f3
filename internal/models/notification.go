package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// NotificationChannel is a webhook sink. Config is stored as JSON and
// unmarshalled into the typed fields below on read, matching the
// JSON-config convention used by Monitor.
type NotificationChannel struct {
	ID        int64                  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string                 `json:"name" gorm:"column:name"`
	Config    map[string]interface{} `json:"config" gorm:"-"`
	ConfigRaw string                 `json:"-" gorm:"column:config;type:text"`
	CreatedAt time.Time              `json:"created_at"`
}

func (NotificationChannel) TableName() string { return "notification_channels" }

func (c *NotificationChannel) AfterFind(tx *gorm.DB) error {
	if c.ConfigRaw == "" {
		return nil
	}
	return json.Unmarshal([]byte(c.ConfigRaw), &c.Config)
}

func (c *NotificationChannel) BeforeSave(tx *gorm.DB) error {
	if c.Config == nil {
		return nil
	}
	raw, err := json.Marshal(c.Config)
	if err != nil {
		return err
	}
	c.ConfigRaw = string(raw)
	return nil
}

type SigningConfig struct {
	Enabled   bool
	SecretRef string
}

// ChannelConfig is the typed view of NotificationChannel.Config.
type ChannelConfig struct {
	URL             string
	Method          string
	Headers         map[string]string
	PayloadType     PayloadType
	TimeoutMS       int
	Signing         SigningConfig
	MessageTemplate string
	PayloadTemplate map[string]interface{}
	EnabledEvents   []EventType
}

func (c *NotificationChannel) Parsed() ChannelConfig {
	out := ChannelConfig{
		Method:      "POST",
		TimeoutMS:   5000,
		PayloadType: PayloadJSON,
		Headers:     map[string]string{},
	}
	if c.Config == nil {
		return out
	}
	if v, ok := c.Config["url"].(string); ok {
		out.URL = v
	}
	if v, ok := c.Config["method"].(string); ok && v != "" {
		out.Method = v
	}
	if v, ok := c.Config["timeout_ms"].(float64); ok && v > 0 {
		out.TimeoutMS = int(v)
	}
	if v, ok := c.Config["payload_type"].(string); ok {
		out.PayloadType = ParsePayloadType(v)
	}
	if raw, ok := c.Config["headers"].(map[string]interface{}); ok {
		for k, v := range raw {
			if s, ok := v.(string); ok {
				out.Headers[k] = s
			}
		}
	}
	if raw, ok := c.Config["signing"].(map[string]interface{}); ok {
		if en, ok := raw["enabled"].(bool); ok {
			out.Signing.Enabled = en
		}
		if ref, ok := raw["secret_ref"].(string); ok {
			out.Signing.SecretRef = ref
		}
	}
	if v, ok := c.Config["message_template"].(string); ok {
		out.MessageTemplate = v
	}
	if v, ok := c.Config["payload_template"].(map[string]interface{}); ok {
		out.PayloadTemplate = v
	}
	if raw, ok := c.Config["enabled_events"].([]interface{}); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				out.EnabledEvents = append(out.EnabledEvents, EventType(s))
			}
		}
	}
	return out
}

// AcceptsEvent reports whether the filter in enabled_events lets this
// event through. test.ping always bypasses the filter.
func (c ChannelConfig) AcceptsEvent(e EventType) bool {
	if e == EventTestPing || len(c.EnabledEvents) == 0 {
		return true
	}
	for _, allowed := range c.EnabledEvents {
		if allowed == e {
			return true
		}
	}
	return false
}

// NotificationDelivery is the idempotency ledger row for one
// (event_key, channel_id) pair. Once it exists, no other delivery may
// be initiated for the same pair.
type NotificationDelivery struct {
	EventKey     string         `json:"event_key" gorm:"column:event_key;primaryKey"`
	ChannelID    int64          `json:"channel_id" gorm:"column:channel_id;primaryKey"`
	Status       DeliveryStatus `json:"status" gorm:"column:status"`
	HTTPStatus   *int           `json:"http_status" gorm:"column:http_status"`
	Error        *string        `json:"error" gorm:"column:error"`
	AttemptedAt  time.Time      `json:"attempted_at" gorm:"column:attempted_at"`
	FinalizedAt  *time.Time     `json:"finalized_at" gorm:"column:finalized_at"`
}

func (NotificationDelivery) TableName() string { return "notification_deliveries" }
