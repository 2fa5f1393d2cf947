package auth

import (
	"net/url"
	"strings"
)

// CookieSettings controls the scope of the session cookie.
type CookieSettings struct {
	Secure bool
	// Domain is empty for a host-only cookie.
	Domain string
}

// DeriveCookieSettings reads the cookie scope from the public base URL.
// Only a plain http base URL turns Secure off; an unparsable or empty one
// keeps it on. cookieDomain, when set, shares the cookie with subdomains and
// gains a leading dot if it lacks one.
//
//	http://localhost:8080                 → {Secure: false}
//	https://datadrift.example.com         → {Secure: true}
//	https://a.example.com + "example.com" → {Secure: true, Domain: ".example.com"}
func DeriveCookieSettings(baseURL, cookieDomain string) CookieSettings {
	settings := CookieSettings{Secure: true}

	if u, err := url.Parse(baseURL); err == nil && strings.EqualFold(u.Scheme, "http") {
		settings.Secure = false
	}

	if d := strings.TrimSpace(cookieDomain); d != "" {
		if !strings.HasPrefix(d, ".") {
			d = "." + d
		}
		settings.Domain = strings.ToLower(d)
	}
	return settings
}
