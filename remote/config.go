package remote

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config holds WebSocket server configuration
type Config struct {
	// Address to bind
	Address string

	// Origins allowed to open sessions besides the serving host; "*" allows any
	AllowedOrigins []string

	// Connection limits
	MaxSessions    int
	MaxMessageSize int64
	// Largest widget size a page may report; bigger hello/resize frames are ignored
	MaxCols int
	MaxRows int

	// Timing
	HandshakeTimeout time.Duration
	HelloTimeout     time.Duration // wait for the page to report its size
	WriteTimeout     time.Duration
	PongTimeout      time.Duration
	PingInterval     time.Duration
	ShutdownTimeout  time.Duration

	// Buffer sizes
	ReadBufferSize  int
	WriteBufferSize int
	SendQueueSize   int
}

// DefaultConfig returns production-safe defaults
func DefaultConfig() *Config {
	return &Config{
		Address:          "127.0.0.1:7681",
		AllowedOrigins:   nil, // same host only
		MaxSessions:      16,
		MaxMessageSize:   64 * 1024,
		MaxCols:          1000,
		MaxRows:          500,
		HandshakeTimeout: 5 * time.Second,
		HelloTimeout:     2 * time.Second,
		WriteTimeout:     5 * time.Second,
		PongTimeout:      30 * time.Second,
		PingInterval:     10 * time.Second,
		ShutdownTimeout:  5 * time.Second,
		ReadBufferSize:   16 * 1024,
		WriteBufferSize:  64 * 1024,
		SendQueueSize:    256,
	}
}

// checkOrigin accepts requests without Origin, from the serving host, or from an allowed origin
func (c *Config) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range c.AllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	u, err := url.Parse(origin)
	return err == nil && strings.EqualFold(u.Host, r.Host)
}
