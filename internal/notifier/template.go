package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/openuptime/uptimer/internal/models"
)

// templateVars builds the substitution set for one delivery: the
// event's own Vars plus the ambient {channel, event, event_id,
// timestamp} fields every render adds.
func templateVars(ch *models.NotificationChannel, event Event) map[string]interface{} {
	vars := make(map[string]interface{}, len(event.Vars)+4)
	for k, v := range event.Vars {
		vars[k] = v
	}
	vars["channel"] = ch.Name
	vars["event"] = string(event.Type)
	vars["event_id"] = event.EventKey
	vars["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	return vars
}

// renderTemplate substitutes {name}-style placeholders only; there is
// no expression evaluation and no code execution, so an operator
// cannot use a channel's template to run arbitrary logic. Missing
// keys substitute to empty string.
func renderTemplate(tpl string, vars map[string]interface{}) string {
	if tpl == "" {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(tpl); {
		if tpl[i] == '{' {
			if end := strings.IndexByte(tpl[i:], '}'); end >= 0 {
				name := tpl[i+1 : i+end]
				b.WriteString(stringifyVar(vars[name]))
				i += end + 1
				continue
			}
		}
		b.WriteByte(tpl[i])
		i++
	}
	return b.String()
}

// renderPayloadTemplate walks a structured template tree, substituting
// every string leaf with renderTemplate and passing every other leaf
// through unchanged.
func renderPayloadTemplate(tpl interface{}, vars map[string]interface{}) interface{} {
	switch v := tpl.(type) {
	case string:
		return renderTemplate(v, vars)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			out[k] = renderPayloadTemplate(val, vars)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = renderPayloadTemplate(val, vars)
		}
		return out
	default:
		return v
	}
}

func stringifyVar(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// renderPayload produces the body map sent to the channel: the
// operator's payload_template if configured, otherwise a default
// shape carrying the rendered message and the raw vars.
func renderPayload(cfg models.ChannelConfig, vars map[string]interface{}, message string) map[string]interface{} {
	if cfg.PayloadTemplate != nil {
		rendered := renderPayloadTemplate(cfg.PayloadTemplate, vars)
		if m, ok := rendered.(map[string]interface{}); ok {
			return m
		}
	}
	payload := map[string]interface{}{
		"event":      vars["event"],
		"event_id":   vars["event_id"],
		"channel":    vars["channel"],
		"timestamp":  vars["timestamp"],
		"monitor_id": vars["monitor_id"],
	}
	if message != "" {
		payload["message"] = message
	} else {
		payload["message"] = defaultMessage(vars)
	}
	return payload
}

func defaultMessage(vars map[string]interface{}) string {
	event, _ := vars["event"].(string)
	switch models.EventType(event) {
	case models.EventMonitorDown:
		return fmt.Sprintf("monitor %v is down: %v", vars["monitor_id"], vars["error"])
	case models.EventMonitorUp:
		return fmt.Sprintf("monitor %v is back up", vars["monitor_id"])
	case models.EventTestPing:
		return "test notification from uptimer"
	default:
		return event
	}
}
