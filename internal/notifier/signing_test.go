package notifier

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"testing"
	"time"
)

func TestSignRequest_SetsExpectedHeadersAndSignature(t *testing.T) {
	req, err := http.NewRequest(http.MethodPost, "https://example.com/hook", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	now := time.Unix(1700000000, 0)
	body := []byte(`{"event":"monitor.down"}`)

	signRequest(req, "shared-secret", body, now)

	if req.Header.Get("X-Uptimer-Timestamp") != "1700000000" {
		t.Fatalf("got timestamp %q", req.Header.Get("X-Uptimer-Timestamp"))
	}

	mac := hmac.New(sha256.New, []byte("shared-secret"))
	mac.Write([]byte("1700000000."))
	mac.Write(body)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	if got := req.Header.Get("X-Uptimer-Signature"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSignRequest_DifferentSecretsProduceDifferentSignatures(t *testing.T) {
	now := time.Unix(1700000000, 0)
	body := []byte("payload")

	req1, _ := http.NewRequest(http.MethodPost, "https://example.com/hook", nil)
	signRequest(req1, "secret-a", body, now)

	req2, _ := http.NewRequest(http.MethodPost, "https://example.com/hook", nil)
	signRequest(req2, "secret-b", body, now)

	if req1.Header.Get("X-Uptimer-Signature") == req2.Header.Get("X-Uptimer-Signature") {
		t.Fatalf("expected different secrets to produce different signatures")
	}
}
