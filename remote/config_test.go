package remote

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"no origin header", nil, "", true},
		{"same host", nil, "http://example.test:7681", true},
		{"other host", nil, "http://evil.test", false},
		{"listed", []string{"http://app.test"}, "http://app.test", true},
		{"listed case-insensitive", []string{"HTTP://APP.TEST"}, "http://app.test", true},
		{"wildcard", []string{"*"}, "http://anything.test", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.AllowedOrigins = tt.allowed
			r := httptest.NewRequest("GET", "http://example.test:7681/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, cfg.checkOrigin(r))
		})
	}
}
