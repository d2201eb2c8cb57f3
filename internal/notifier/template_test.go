package notifier

import (
	"testing"

	"github.com/openuptime/uptimer/internal/models"
)

func TestRenderTemplate_SubstitutesKnownPlaceholders(t *testing.T) {
	vars := map[string]interface{}{"monitor_id": int64(7), "error": "timeout"}

	got := renderTemplate("monitor {monitor_id} failed: {error}", vars)

	want := "monitor 7 failed: timeout"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderTemplate_MissingKeySubstitutesEmpty(t *testing.T) {
	got := renderTemplate("hello {nonexistent}!", map[string]interface{}{})

	if got != "hello !" {
		t.Fatalf("got %q, want %q", got, "hello !")
	}
}

func TestRenderTemplate_UnterminatedBraceIsLiteral(t *testing.T) {
	got := renderTemplate("this has an { unterminated brace", map[string]interface{}{})

	if got != "this has an { unterminated brace" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderTemplate_NeverEvaluatesExpressions(t *testing.T) {
	vars := map[string]interface{}{"1+1": "two"}

	got := renderTemplate("{1+1}", vars)

	if got != "two" {
		t.Fatalf("expected a literal key lookup, not arithmetic, got %q", got)
	}
}

func TestRenderPayloadTemplate_WalksNestedStructuresAndLeavesNonStringsAlone(t *testing.T) {
	tpl := map[string]interface{}{
		"text":    "monitor {monitor_id}",
		"retries": float64(3),
		"tags":    []interface{}{"{event}", "static"},
		"nested": map[string]interface{}{
			"inner": "{monitor_id}-ok",
		},
	}
	vars := map[string]interface{}{"monitor_id": int64(42), "event": "monitor.down"}

	rendered := renderPayloadTemplate(tpl, vars).(map[string]interface{})

	if rendered["text"] != "monitor 42" {
		t.Fatalf("got %v", rendered["text"])
	}
	if rendered["retries"] != float64(3) {
		t.Fatalf("expected non-string leaf to pass through unchanged, got %v", rendered["retries"])
	}
	tags := rendered["tags"].([]interface{})
	if tags[0] != "monitor.down" || tags[1] != "static" {
		t.Fatalf("got %v", tags)
	}
	nested := rendered["nested"].(map[string]interface{})
	if nested["inner"] != "42-ok" {
		t.Fatalf("got %v", nested["inner"])
	}
}

func TestRenderPayload_UsesDefaultShapeWhenNoTemplateConfigured(t *testing.T) {
	vars := map[string]interface{}{
		"monitor_id": int64(1),
		"event":      "monitor.down",
		"event_id":   "monitor.down:1:5",
		"channel":    "ops-webhook",
		"error":      "connect_refused",
	}

	payload := renderPayload(models.ChannelConfig{}, vars, "")

	if payload["event"] != "monitor.down" {
		t.Fatalf("got %v", payload["event"])
	}
	if payload["message"] == "" {
		t.Fatalf("expected a default message to be generated")
	}
}
