// Package config loads the xtermjs TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/lixenwraith/xtermjs/backend"
	"github.com/lixenwraith/xtermjs/remote"
)

// FormatVersion is the only configuration format this build reads
const FormatVersion = "1"

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Duration is a time.Duration read from a TOML string such as "5s"
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// ServerConfig holds the WebSocket server section
type ServerConfig struct {
	Address         string   `toml:"address"`
	AllowedOrigins  []string `toml:"allowed_origins"`
	MaxSessions     int      `toml:"max_sessions"`
	MaxCols         int      `toml:"max_cols"`
	MaxRows         int      `toml:"max_rows"`
	SendQueueSize   int      `toml:"send_queue_size"`
	WriteTimeout    Duration `toml:"write_timeout"`
	PongTimeout     Duration `toml:"pong_timeout"`
	PingInterval    Duration `toml:"ping_interval"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// LogConfig holds the logging section
type LogConfig struct {
	Level  string `toml:"level"`  // trace, debug, info, warn, error
	Format string `toml:"format"` // console or json
}

// TerminalConfig holds the backend and tcell section
type TerminalConfig struct {
	TermName      string `toml:"term"`            // terminfo entry for tcell
	Encoding      string `toml:"encoding"`        // WHATWG label of the output encoding
	RetainOnError bool   `toml:"retain_on_error"` // keep malformed batches for retry
	InputQueue    int    `toml:"input_queue"`
}

// Config is the whole configuration file
type Config struct {
	FormatVersion string         `toml:"format_version"`
	Server        ServerConfig   `toml:"server"`
	Log           LogConfig      `toml:"log"`
	Terminal      TerminalConfig `toml:"terminal"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	rd := remote.DefaultConfig()
	return &Config{
		FormatVersion: FormatVersion,
		Server: ServerConfig{
			Address:         rd.Address,
			MaxSessions:     rd.MaxSessions,
			MaxCols:         rd.MaxCols,
			MaxRows:         rd.MaxRows,
			SendQueueSize:   rd.SendQueueSize,
			WriteTimeout:    Duration{rd.WriteTimeout},
			PongTimeout:     Duration{rd.PongTimeout},
			PingInterval:    Duration{rd.PingInterval},
			ShutdownTimeout: Duration{rd.ShutdownTimeout},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Terminal: TerminalConfig{
			TermName:   "xterm-256color",
			Encoding:   "utf-8",
			InputQueue: 256,
		},
	}
}

// Load reads path over the defaults and validates the result. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := Parse(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML into cfg, rejecting unknown keys, then validates
func Parse(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%w: unknown keys %s", ErrInvalidConfig, strings.Join(keys, ", "))
	}
	return cfg.Validate()
}

// Validate checks required values and ranges
func (c *Config) Validate() error {
	if c.FormatVersion != FormatVersion {
		return fmt.Errorf("%w: unsupported format_version %q", ErrInvalidConfig, c.FormatVersion)
	}
	if c.Server.Address == "" {
		return fmt.Errorf("%w: server.address is required", ErrInvalidConfig)
	}
	if c.Server.MaxSessions < 0 {
		return fmt.Errorf("%w: server.max_sessions must not be negative", ErrInvalidConfig)
	}
	if c.Server.MaxCols <= 0 || c.Server.MaxRows <= 0 {
		return fmt.Errorf("%w: server.max_cols and server.max_rows must be positive", ErrInvalidConfig)
	}
	if c.Server.SendQueueSize <= 0 {
		return fmt.Errorf("%w: server.send_queue_size must be positive", ErrInvalidConfig)
	}
	if c.Server.PingInterval.Duration <= 0 || c.Server.PongTimeout.Duration <= c.Server.PingInterval.Duration {
		return fmt.Errorf("%w: server.pong_timeout must exceed server.ping_interval", ErrInvalidConfig)
	}
	if c.Terminal.InputQueue <= 0 {
		return fmt.Errorf("%w: terminal.input_queue must be positive", ErrInvalidConfig)
	}
	if _, err := c.Terminal.OutputEncoding(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// OutputEncoding resolves the configured label. UTF-8 returns nil, which
// selects strict validation in the backend rather than a replacing decoder.
func (t TerminalConfig) OutputEncoding() (encoding.Encoding, error) {
	label := strings.TrimSpace(t.Encoding)
	if label == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("terminal.encoding %q: %w", t.Encoding, err)
	}
	if name, _ := htmlindex.Name(enc); name == "utf-8" {
		return nil, nil
	}
	return enc, nil
}

// BackendOptions converts the terminal section to backend options
func (c *Config) BackendOptions() []backend.Option {
	var opts []backend.Option
	if enc, _ := c.Terminal.OutputEncoding(); enc != nil {
		opts = append(opts, backend.WithEncoding(enc))
	}
	if c.Terminal.RetainOnError {
		opts = append(opts, backend.WithRetainOnError())
	}
	return opts
}

// RemoteConfig converts the server section to a remote.Config
func (c *Config) RemoteConfig() *remote.Config {
	rc := remote.DefaultConfig()
	rc.Address = c.Server.Address
	rc.AllowedOrigins = c.Server.AllowedOrigins
	rc.MaxSessions = c.Server.MaxSessions
	rc.MaxCols = c.Server.MaxCols
	rc.MaxRows = c.Server.MaxRows
	rc.SendQueueSize = c.Server.SendQueueSize
	rc.WriteTimeout = c.Server.WriteTimeout.Duration
	rc.PongTimeout = c.Server.PongTimeout.Duration
	rc.PingInterval = c.Server.PingInterval.Duration
	rc.ShutdownTimeout = c.Server.ShutdownTimeout.Duration
	return rc
}
