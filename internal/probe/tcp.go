package probe

import (
	"context"
	"errors"
	"net"
	"strconv"
	"syscall"
	"time"
)

// TCPTarget is the fully-resolved input to one TCP probe.
type TCPTarget struct {
	Host      string
	Port      int
	TimeoutMS int
}

// TCPProbe checks whether a TCP port accepts a connection. It closes
// the connection immediately and never sends a payload.
type TCPProbe struct {
	SSRF *SSRFValidator
}

func NewTCPProbe(ssrf *SSRFValidator) *TCPProbe {
	return &TCPProbe{SSRF: ssrf}
}

func (p *TCPProbe) Check(ctx context.Context, target TCPTarget) Outcome {
	if err := p.SSRF.ValidateHost(target.Host); err != nil {
		return Outcome{Status: Down, Error: "ssrf_blocked"}
	}

	timeout := time.Duration(target.TimeoutMS) * time.Millisecond
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dialer := &net.Dialer{Timeout: timeout}
	address := net.JoinHostPort(target.Host, strconv.Itoa(target.Port))

	start := time.Now()
	conn, err := dialer.DialContext(ctx, "tcp", address)
	latency := int(time.Since(start).Milliseconds())
	if err != nil {
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
		return Outcome{Status: Down, LatencyMS: latency, Error: "connection_failed"}
	}
	conn.Close()

	return Outcome{Status: Up, LatencyMS: latency}
}
