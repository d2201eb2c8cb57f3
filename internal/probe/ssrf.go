package probe

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// SSRFValidator re-validates a probe target's resolved address
// immediately before each probe: admin-write-time validation alone is
// not enough because DNS can change between writes. AllowPrivateIPs/
// AllowMetadata exist only for self-hosted deployments that explicitly
// opt in to monitoring their own internal network.
type SSRFValidator struct {
	AllowPrivateIPs bool
	AllowMetadata   bool
	Resolve         func(host string) ([]net.IP, error)
}

// NewSSRFValidator returns a validator using net.LookupIP for DNS
// resolution.
func NewSSRFValidator(allowPrivateIPs, allowMetadata bool) *SSRFValidator {
	return &SSRFValidator{
		AllowPrivateIPs: allowPrivateIPs,
		AllowMetadata:   allowMetadata,
		Resolve:         net.LookupIP,
	}
}

var metadataHosts = []string{
	"169.254.169.254",
	"metadata.google.internal",
	"169.254.170.2",
	"fd00:ec2::254",
}

// ValidateURL checks scheme and resolved address for an HTTP target.
func (v *SSRFValidator) ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("only http and https schemes are allowed")
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("url has no hostname")
	}
	return v.ValidateHost(host)
}

// ValidateHost resolves host and checks every address, used by both
// the HTTP and TCP probes.
func (v *SSRFValidator) ValidateHost(host string) error {
	if !v.AllowMetadata {
		lower := strings.ToLower(host)
		for _, blocked := range metadataHosts {
			if lower == blocked || strings.HasSuffix(lower, "."+blocked) {
				return fmt.Errorf("target resolves to a cloud metadata endpoint")
			}
		}
	}

	if ip := net.ParseIP(host); ip != nil {
		return v.validateIP(ip)
	}

	ips, err := v.Resolve(host)
	if err != nil {
		return fmt.Errorf("failed to resolve host: %w", err)
	}
	if len(ips) == 0 {
		return fmt.Errorf("host did not resolve to any address")
	}
	for _, ip := range ips {
		if err := v.validateIP(ip); err != nil {
			return fmt.Errorf("address %s rejected: %w", ip, err)
		}
	}
	return nil
}

func (v *SSRFValidator) validateIP(ip net.IP) error {
	if v.AllowPrivateIPs {
		return nil
	}
	if ip.IsLoopback() {
		return fmt.Errorf("loopback address not allowed")
	}
	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return fmt.Errorf("link-local address not allowed")
	}
	if ip.IsMulticast() {
		return fmt.Errorf("multicast address not allowed")
	}
	if ip.IsUnspecified() {
		return fmt.Errorf("unspecified address not allowed")
	}
	if isPrivate(ip) {
		return fmt.Errorf("private/reserved address not allowed")
	}
	return nil
}

var privateCIDRs = []string{
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"169.254.0.0/16",
	"127.0.0.0/8",
	"fc00::/7",
	"fe80::/10",
	"::1/128",
}

func isPrivate(ip net.IP) bool {
	for _, cidr := range privateCIDRs {
		_, network, err := net.ParseCIDR(cidr)
		if err == nil && network.Contains(ip) {
			return true
		}
	}
	return false
}
