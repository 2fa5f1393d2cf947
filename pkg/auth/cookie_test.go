package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveCookieSettings(t *testing.T) {
	tests := []struct {
		name         string
		baseURL      string
		cookieDomain string
		want         CookieSettings
	}{
		{"localhost http", "http://localhost:8080", "", CookieSettings{Secure: false}},
		{"uppercase scheme", "HTTP://127.0.0.1:8080", "", CookieSettings{Secure: false}},
		{"public https", "https://datadrift.example.com", "", CookieSettings{Secure: true}},
		{"internal hosts stay host-only", "https://console.corp.internal", "", CookieSettings{Secure: true}},
		{"explicit domain", "https://a.example.com", ".example.com", CookieSettings{Secure: true, Domain: ".example.com"}},
		{"domain gains dot", "https://a.example.com", "Example.com", CookieSettings{Secure: true, Domain: ".example.com"}},
		{"explicit domain over http", "http://a.example.com", ".example.com", CookieSettings{Secure: false, Domain: ".example.com"}},
		{"empty base URL", "", "", CookieSettings{Secure: true}},
		{"unparsable base URL", "://nope", "", CookieSettings{Secure: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveCookieSettings(tt.baseURL, tt.cookieDomain))
		})
	}
}
