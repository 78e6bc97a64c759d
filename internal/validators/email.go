package validators

import (
	"errors"
	"net"
	"strings"
)

// NormalizeEmail is the canonical form used everywhere an email becomes an
// identity: signup, login and idempotency keys must agree on it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsEmailDomainValid rejects addresses whose domain cannot receive mail.
// DNS being down lets a bad address through; that beats blocking signups.
func IsEmailDomainValid(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}

	domain := email[at+1:]

	if mx, err := net.LookupMX(domain); err == nil && len(mx) > 0 {
		return true
	}

	ips, err := net.LookupIP(domain)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return false
		}
		// Resolver trouble is not the client's fault.
		return true
	}
	return len(ips) > 0
}
