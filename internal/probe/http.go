package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/openuptime/uptimer/internal/models"
)

// HTTPTarget is the fully-resolved input to one HTTP probe.
type HTTPTarget struct {
	models.HTTPMonitorConfig
	TimeoutMS int
}

// HTTPProbe runs HTTP/HTTPS checks. It holds no per-monitor state; a
// single instance is safe to reuse across every tick.
type HTTPProbe struct {
	SSRF *SSRFValidator
}

func NewHTTPProbe(ssrf *SSRFValidator) *HTTPProbe {
	return &HTTPProbe{SSRF: ssrf}
}

// Check performs one HTTP probe attempt. It returns a typed Outcome
// for every possible failure; it never returns a non-nil error, since
// a probe failure is data, not an exceptional condition.
func (p *HTTPProbe) Check(ctx context.Context, target HTTPTarget) Outcome {
	if err := p.SSRF.ValidateURL(target.URL); err != nil {
		return Outcome{Status: Down, Error: "ssrf_blocked"}
	}

	timeout := time.Duration(target.TimeoutMS) * time.Millisecond
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{Timeout: timeout}).DialContext,
		},
	}
	if !target.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var body io.Reader
	if target.Body != "" {
		body = strings.NewReader(target.Body)
	}
	req, err := http.NewRequestWithContext(ctx, firstNonEmpty(target.Method, "GET"), target.URL, body)
	if err != nil {
		return Outcome{Status: Down, Error: "invalid_request"}
	}
	for k, v := range target.Headers {
		req.Header.Set(k, v)
	}
	// Cache-bypass discipline: the probe must never observe a cached
	// response, from either a client-side cache or an upstream proxy.
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return classifyRequestError(ctx, err, start)
	}
	defer resp.Body.Close()

	accepted := target.AcceptedStatusCodes
	if len(accepted) == 0 {
		accepted = []int{200}
	}
	statusOK := false
	for _, code := range accepted {
		if resp.StatusCode == code {
			statusOK = true
			break
		}
	}
	if !statusOK {
		latency := time.Since(start).Milliseconds()
		return Outcome{Status: Down, LatencyMS: int(latency), Error: fmt.Sprintf("http_%d", resp.StatusCode)}
	}

	if target.Keyword == "" {
		latency := time.Since(start).Milliseconds()
		return Outcome{Status: Up, LatencyMS: int(latency)}
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return Outcome{Status: Down, LatencyMS: int(latency), Error: "timeout"}
		}
		return Outcome{Status: Down, LatencyMS: int(latency), Error: "read_error"}
	}

	found := strings.Contains(string(bodyBytes), target.Keyword)
	if found == target.InvertKeyword {
		return Outcome{Status: Down, LatencyMS: int(latency), Error: "assertion_failed"}
	}
	return Outcome{Status: Up, LatencyMS: int(latency)}
}

func firstNonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// classifyRequestError turns a transport-level failure into a short,
// stable error code instead of the raw wrapped error text.
func classifyRequestError(ctx context.Context, err error, start time.Time) Outcome {
	latency := int(time.Since(start).Milliseconds())
	if ctx.Err() == context.DeadlineExceeded {
		return Outcome{Status: Down, LatencyMS: latency, Error: "timeout"}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Outcome{Status: Down, LatencyMS: latency, Error: "timeout"}
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return Outcome{Status: Down, LatencyMS: latency, Error: "connect_refused"}
	}

	var tlsErr tls.RecordHeaderError
	var certErr x509.CertificateInvalidError
	var unknownAuthErr x509.UnknownAuthorityError
	if errors.As(err, &tlsErr) || errors.As(err, &certErr) || errors.As(err, &unknownAuthErr) {
		return Outcome{Status: Down, LatencyMS: latency, Error: "tls_error"}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return Outcome{Status: Down, LatencyMS: latency, Error: "dns_error"}
	}

	return Outcome{Status: Down, LatencyMS: latency, Error: "connection_failed"}
}
