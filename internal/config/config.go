// Package config holds the server settings and binds them to flags and INWO_* env vars.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "INWO"

type Config struct {
	Bind           string
	Port           int
	AllowedOrigins []string

	DefaultCapacity int
	MaxCapacity     int

	OutboxSize      int
	PingInterval    time.Duration
	WriteTimeout    time.Duration
	MaxMessageBytes int64

	DatabaseURL       string
	NATSURL           string
	NATSSubjectPrefix string

	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.DefaultCapacity < 1 {
		return fmt.Errorf("default-capacity must be at least 1: %d", c.DefaultCapacity)
	}
	if c.MaxCapacity < c.DefaultCapacity {
		return fmt.Errorf("max-capacity (%d) is below default-capacity (%d)", c.MaxCapacity, c.DefaultCapacity)
	}
	if c.OutboxSize < 1 {
		return fmt.Errorf("outbox-size must be positive: %d", c.OutboxSize)
	}
	if c.MaxMessageBytes < 1024 {
		return fmt.Errorf("max-message-bytes must be at least 1024: %d", c.MaxMessageBytes)
	}
	if c.WriteTimeout <= 0 {
		return errors.New("write-timeout must be positive")
	}
	if c.PingInterval < 0 {
		return errors.New("ping-interval cannot be negative")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log-format %q (json or console)", c.LogFormat)
	}
	return nil
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

// OriginPatterns turns the CORS origins into the host patterns the websocket
// handshake matches against.
func (c *Config) OriginPatterns() []string {
	patterns := make([]string, 0, len(c.AllowedOrigins))
	for _, o := range c.AllowedOrigins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, o)
	}
	return patterns
}

// RegisterFlags declares every setting on fs with its default.
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&c.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: INWO_BIND)")
	fs.IntVarP(&c.Port, "port", "p", 3001, "port to listen on (env: INWO_PORT, PORT)")
	fs.StringSliceVar(&c.AllowedOrigins, "allowed-origins", []string{"http://localhost:5173"}, "browser origins allowed to connect (env: INWO_ALLOWED_ORIGINS, CLIENT_URL)")
	fs.IntVar(&c.DefaultCapacity, "default-capacity", 2, "room capacity when a join does not ask for one (env: INWO_DEFAULT_CAPACITY)")
	fs.IntVar(&c.MaxCapacity, "max-capacity", 8, "largest capacity a join may ask for (env: INWO_MAX_CAPACITY)")
	fs.IntVar(&c.OutboxSize, "outbox-size", 64, "queued events per connection before it is dropped (env: INWO_OUTBOX_SIZE)")
	fs.DurationVar(&c.PingInterval, "ping-interval", 30*time.Second, "websocket heartbeat interval, 0 disables (env: INWO_PING_INTERVAL)")
	fs.DurationVar(&c.WriteTimeout, "write-timeout", 5*time.Second, "per-frame write deadline (env: INWO_WRITE_TIMEOUT)")
	fs.Int64Var(&c.MaxMessageBytes, "max-message-bytes", 64<<10, "largest inbound frame accepted (env: INWO_MAX_MESSAGE_BYTES)")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "postgres DSN for saved decks, empty keeps them in memory (env: INWO_DATABASE_URL)")
	fs.StringVar(&c.NATSURL, "nats-url", "", "NATS server that receives room events, empty disables (env: INWO_NATS_URL)")
	fs.StringVar(&c.NATSSubjectPrefix, "nats-subject-prefix", "inwo.rooms", "subject prefix for published room events (env: INWO_NATS_SUBJECT_PREFIX)")
	fs.StringVar(&c.LogLevel, "log-level", "info", "debug, info, warn or error (env: INWO_LOG_LEVEL)")
	fs.StringVar(&c.LogFormat, "log-format", "json", "json or console (env: INWO_LOG_FORMAT)")
	fs.DurationVar(&c.ShutdownTimeout, "shutdown-timeout", 10*time.Second, "grace period for open requests on shutdown (env: INWO_SHUTDOWN_TIMEOUT)")
}

// legacyEnv lists the unprefixed variables older deployments set.
var legacyEnv = map[string]string{
	"port":            "PORT",
	"allowed-origins": "CLIENT_URL",
}

// ApplyEnv copies env values onto flags the command line did not set. Call it before
// flag parsing so explicit flags still win.
func ApplyEnv(fs *pflag.FlagSet) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		keys := []string{EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))}
		if legacy, ok := legacyEnv[f.Name]; ok {
			keys = append(keys, legacy)
		}
		if err := v.BindPFlag(f.Name, f); err != nil {
			errs = append(errs, fmt.Errorf("bind --%s: %w", f.Name, err))
			return
		}
		if err := v.BindEnv(append([]string{f.Name}, keys...)...); err != nil {
			errs = append(errs, fmt.Errorf("bind env for --%s: %w", f.Name, err))
			return
		}

		if !f.Changed && v.IsSet(f.Name) {
			if err := fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); err != nil {
				errs = append(errs, fmt.Errorf("env for --%s: %w", f.Name, err))
			}
		}
	})
	return errors.Join(errs...)
}
