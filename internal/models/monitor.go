package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Monitor is the user's declarative target. Config is type-specific:
// for MonitorTypeHTTP it carries method/headers/body/accepted_status_codes/
// keyword/invert_keyword/follow_redirects; for MonitorTypeTCP it carries
// host/port. It is stored as a single JSON column (ConfigRaw) and
// unmarshalled into Config on read, mirroring the JSON-config pattern
// used throughout the monitoring systems surveyed rather than a wide
// sparse table of type-specific nullable columns.
type Monitor struct {
	ID              int64                  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name            string                 `json:"name" gorm:"not null"`
	Type            MonitorType            `json:"type" gorm:"column:type;not null;index"`
	IsActive        bool                   `json:"is_active" gorm:"column:is_active;default:true;index"`
	IntervalSec     int                     `json:"interval_sec" gorm:"column:interval_sec;default:60"`
	TimeoutMS       int                     `json:"timeout_ms" gorm:"column:timeout_ms;default:5000"`
	FailuresToDown  int                     `json:"failures_to_down" gorm:"column:failures_to_down;default:2"`
	SuccessesToUp   int                     `json:"successes_to_up" gorm:"column:successes_to_up;default:2"`
	Config          map[string]interface{} `json:"config" gorm:"-"`
	ConfigRaw       string                  `json:"-" gorm:"column:config;type:text"`
	CreatedAt       time.Time               `json:"created_at"`
}

func (Monitor) TableName() string { return "monitors" }

func (m *Monitor) AfterFind(tx *gorm.DB) error {
	if m.ConfigRaw == "" {
		return nil
	}
	return json.Unmarshal([]byte(m.ConfigRaw), &m.Config)
}

func (m *Monitor) BeforeSave(tx *gorm.DB) error {
	if m.Config == nil {
		return nil
	}
	raw, err := json.Marshal(m.Config)
	if err != nil {
		return err
	}
	m.ConfigRaw = string(raw)
	return nil
}

func (m *Monitor) configString(key, fallback string) string {
	if v, ok := m.Config[key].(string); ok {
		return v
	}
	return fallback
}

func (m *Monitor) configBool(key string, fallback bool) bool {
	if v, ok := m.Config[key].(bool); ok {
		return v
	}
	return fallback
}

func (m *Monitor) configStringMap(key string) map[string]string {
	out := make(map[string]string)
	raw, ok := m.Config[key].(map[string]interface{})
	if !ok {
		return out
	}
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

func (m *Monitor) configIntSlice(key string, fallback []int) []int {
	raw, ok := m.Config[key].([]interface{})
	if !ok {
		return fallback
	}
	out := make([]int, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(float64); ok {
			out = append(out, int(f))
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func (m *Monitor) configInt(key string, fallback int) int {
	if v, ok := m.Config[key].(float64); ok {
		return int(v)
	}
	return fallback
}

// HTTPConfig returns the typed view of Config for an HTTP monitor.
func (m *Monitor) HTTPConfig() HTTPMonitorConfig {
	return HTTPMonitorConfig{
		URL:                 m.configString("url", ""),
		Method:              m.configString("method", "GET"),
		Headers:             m.configStringMap("headers"),
		Body:                m.configString("body", ""),
		FollowRedirects:     m.configBool("follow_redirects", true),
		AcceptedStatusCodes: m.configIntSlice("accepted_status_codes", []int{200}),
		Keyword:             m.configString("keyword", ""),
		InvertKeyword:       m.configBool("invert_keyword", false),
	}
}

// TCPConfig returns the typed view of Config for a TCP monitor.
func (m *Monitor) TCPConfig() TCPMonitorConfig {
	return TCPMonitorConfig{
		Host: m.configString("host", ""),
		Port: m.configInt("port", 0),
	}
}

type HTTPMonitorConfig struct {
	URL                 string
	Method              string
	Headers             map[string]string
	Body                string
	FollowRedirects     bool
	AcceptedStatusCodes []int
	Keyword             string
	InvertKeyword       bool
}

type TCPMonitorConfig struct {
	Host string
	Port int
}
