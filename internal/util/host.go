package util

import (
	"net"
	"strings"
)

// IsProductionHost reports whether the request host matches one of the
// configured production host suffixes. Cookies issued for production-like
// hosts carry the Secure attribute; local and preview deployments do not, so
// the flow keeps working over plain HTTP during development.
func IsProductionHost(host string, suffixes []string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return false
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	for _, suffix := range suffixes {
		suffix = strings.ToLower(strings.TrimSpace(suffix))
		if suffix == "" {
			continue
		}
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}
