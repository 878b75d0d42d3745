package accessibility

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// NormalizeURL standardizes a target URL so equivalent spellings share one
// cache identity. It lowercases the scheme and host, strips default ports
// and fragments, and sorts query parameters.
func NormalizeURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: parse: %v", ErrInvalidURL, err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	if u.Scheme == "http" && strings.HasSuffix(u.Host, ":80") {
		u.Host = strings.TrimSuffix(u.Host, ":80")
	}
	if u.Scheme == "https" && strings.HasSuffix(u.Host, ":443") {
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	u.Fragment = ""

	q := u.Query()
	u.RawQuery = q.Encode()

	if u.Path == "" {
		u.Path = "/"
	}

	return u.String(), nil
}

// TargetValidator vets normalized URLs before a browser session is spent on
// them. The zero value rejects non-HTTP schemes and private address space;
// BlockedHosts adds operator-configured host patterns on top.
type TargetValidator struct {
	blocklist    *hostPatternBlocklist
	allowPrivate bool
}

// NewTargetValidator builds a validator from configured blocked host
// patterns. Patterns support exact hosts, "*.example.com", and
// ".example.com" suffix forms. allowPrivate permits loopback and RFC 1918
// targets, which is only sensible in development.
func NewTargetValidator(blockedHosts []string, allowPrivate bool) *TargetValidator {
	return &TargetValidator{
		blocklist:    newHostPatternBlocklist(blockedHosts),
		allowPrivate: allowPrivate,
	}
}

// Validate checks a normalized URL and returns ErrInvalidURL (wrapped with
// the reason) when the target must not be fetched.
func (v *TargetValidator) Validate(normalized string) error {
	u, err := url.Parse(normalized)
	if err != nil {
		return fmt.Errorf("%w: parse: %v", ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	if v != nil && v.blocklist.IsBlocked(host) {
		return fmt.Errorf("%w: host %q is blocked", ErrInvalidURL, host)
	}

	if v == nil || !v.allowPrivate {
		if ip := net.ParseIP(host); ip != nil && isPrivateAddress(ip) {
			return fmt.Errorf("%w: host %q resolves to private address space", ErrInvalidURL, host)
		}
		if strings.EqualFold(host, "localhost") || strings.HasSuffix(strings.ToLower(host), ".localhost") {
			return fmt.Errorf("%w: host %q is loopback", ErrInvalidURL, host)
		}
	}

	return nil
}

func isPrivateAddress(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified()
}
