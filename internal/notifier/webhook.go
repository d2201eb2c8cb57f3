package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/openuptime/uptimer/internal/models"
)

// send renders the event, builds the request for the channel's
// payload_type, signs it if configured, and delivers it within ctx's
// deadline. It never returns an error; every failure path is encoded
// in the returned delivery status so the caller can finalize the
// ledger row regardless of outcome.
func (n *Notifier) send(ctx context.Context, ch *models.NotificationChannel, cfg models.ChannelConfig, event Event) (models.DeliveryStatus, *int, *string) {
	vars := templateVars(ch, event)
	message := renderTemplate(cfg.MessageTemplate, vars)
	payload := renderPayload(cfg, vars, message)

	req, rawBody, err := buildRequest(ctx, cfg, payload)
	if err != nil {
		msg := err.Error()
		return models.DeliveryFailed, nil, &msg
	}

	if cfg.Signing.Enabled {
		secret, ok := n.resolveSecret(cfg.Signing.SecretRef)
		if !ok {
			msg := fmt.Sprintf("secret %q not found in environment", cfg.Signing.SecretRef)
			return models.DeliveryFailed, nil, &msg
		}
		signRequest(req, secret, rawBody, n.now())
	}

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			msg := "timeout"
			return models.DeliveryFailed, nil, &msg
		}
		msg := err.Error()
		return models.DeliveryFailed, nil, &msg
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return models.DeliverySuccess, &code, nil
	}
	msg := fmt.Sprintf("HTTP %d", code)
	return models.DeliveryFailed, &code, &msg
}

// buildRequest constructs the HTTP request per payload_type. A method
// that cannot carry a body (GET, HEAD) always falls back to query
// params, regardless of the configured payload_type.
func buildRequest(ctx context.Context, cfg models.ChannelConfig, payload map[string]interface{}) (*http.Request, []byte, error) {
	method := cfg.Method
	if method == "" {
		method = "POST"
	}
	canCarryBody := method != http.MethodGet && method != http.MethodHead

	targetURL := cfg.URL
	var body []byte
	var contentType string

	switch {
	case cfg.PayloadType == models.PayloadParam || !canCarryBody:
		u, err := url.Parse(cfg.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid webhook url: %w", err)
		}
		q := u.Query()
		for k, v := range flatten(payload) {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
		targetURL = u.String()

	case cfg.PayloadType == models.PayloadFormURL:
		form := url.Values{}
		for k, v := range flatten(payload) {
			form.Set(k, v)
		}
		body = []byte(form.Encode())
		contentType = "application/x-www-form-urlencoded"

	default:
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = raw
		contentType = "application/json"
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, targetURL, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, body, nil
}

// flatten string-coerces a payload map for form/param encoding: every
// value becomes its string representation, one level deep.
func flatten(payload map[string]interface{}) map[string]string {
	out := make(map[string]string, len(payload))
	for k, v := range payload {
		switch val := v.(type) {
		case string:
			out[k] = val
		case nil:
			out[k] = ""
		default:
			raw, err := json.Marshal(v)
			if err == nil {
				out[k] = string(raw)
			}
		}
	}
	return out
}
