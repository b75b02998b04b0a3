// Package util provides small shared helpers for the auth service: cookie
// wire-format handling and host classification.
package util

import (
	"strconv"
	"strings"
)

// SameSite enumerates the SameSite cookie attribute values.
type SameSite string

const (
	SameSiteStrict SameSite = "Strict"
	SameSiteLax    SameSite = "Lax"
	SameSiteNone   SameSite = "None"
)

// CookieOptions configures the attributes emitted by SerializeCookie.
//
// MaxAge follows the wire semantics of the flow: a value of 0 emits
// "Max-Age=0" and expires the cookie immediately, a positive value emits that
// lifetime in seconds, and a negative value omits the attribute entirely.
type CookieOptions struct {
	HTTPOnly bool
	Secure   bool
	SameSite SameSite
	MaxAge   int
	Path     string
}

// ParseCookies parses a Cookie request header into a name to value mapping.
// Segments are split on ";" and trimmed; each segment is split on the FIRST
// "=" so values containing further "=" characters survive verbatim. Segments
// without a "=" or with an empty name are skipped rather than treated as
// errors.
func ParseCookies(header string) map[string]string {
	cookies := make(map[string]string)
	for _, segment := range strings.Split(header, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		idx := strings.Index(segment, "=")
		if idx <= 0 {
			continue
		}
		cookies[segment[:idx]] = segment[idx+1:]
	}
	return cookies
}

// SerializeCookie builds a Set-Cookie directive string for the given name and
// value, honoring the provided options.
func SerializeCookie(name, value string, opts CookieOptions) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteString("=")
	b.WriteString(value)

	if opts.HTTPOnly {
		b.WriteString("; HttpOnly")
	}
	if opts.Secure {
		b.WriteString("; Secure")
	}
	if opts.SameSite != "" {
		b.WriteString("; SameSite=")
		b.WriteString(string(opts.SameSite))
	}
	if opts.MaxAge >= 0 {
		b.WriteString("; Max-Age=")
		b.WriteString(strconv.Itoa(opts.MaxAge))
	}
	if opts.Path != "" {
		b.WriteString("; Path=")
		b.WriteString(opts.Path)
	}
	return b.String()
}
