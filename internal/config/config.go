package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config wraps a viper instance and provides typed accessors for every
// configuration key. Create one via New().
type Config struct {
	v *viper.Viper
}

// New initialises a Config by loading values from environment
// variables, the config file, and compiled defaults (in that priority
// order; CLI flags, bound later via BindFlags, take highest priority).
func New() (*Config, error) {
	v := viper.New()

	for _, o := range ServerOptions {
		v.SetDefault(o.Key, o.Default)
	}
	for _, o := range MetricsOptions {
		v.SetDefault(o.Key, o.Default)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/shenron/")

	if err := v.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !(errors.As(err, &notFoundErr) || errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables are prefixed with SHENRON_ and use
	// underscores in place of dots (e.g. SHENRON_SERVER_ADDRESS).
	v.SetEnvPrefix("SHENRON")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return &Config{v: v}, nil
}

// BindFlags registers CLI flags for the given option slice and binds
// them to the underlying viper keys so that flag values override file
// and environment sources.
func (c *Config) BindFlags(fs *pflag.FlagSet, options []Option) error {
	for _, o := range options {
		switch v := o.Default.(type) {
		case string:
			fs.String(o.Flag, v, o.Description)
		case int:
			fs.Int(o.Flag, v, o.Description)
		case bool:
			fs.Bool(o.Flag, v, o.Description)
		case []string:
			fs.StringSlice(o.Flag, v, o.Description)
		case time.Duration:
			fs.Duration(o.Flag, v, o.Description)
		default:
			return fmt.Errorf("unsupported flag type for key: %s", o.Key)
		}

		if err := c.v.BindPFlag(o.Key, fs.Lookup(o.Flag)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", o.Flag, err)
		}
	}

	return nil
}

// ---------------------------------------------------------------------------
// Server accessors
// ---------------------------------------------------------------------------

// ServerAddress returns the TCP address the SSH server listens on.
func (c *Config) ServerAddress() string {
	return c.v.GetString(keyServerAddress)
}

// ServerHostKeyPath returns the path a host key is loaded from or
// persisted to. Empty means no path was configured.
func (c *Config) ServerHostKeyPath() string {
	return c.v.GetString(keyServerHostKeyPath)
}

// ServerHostKeySeed returns the seed used to deterministically derive
// a host key, if configured instead of a path.
func (c *Config) ServerHostKeySeed() string {
	return c.v.GetString(keyServerHostKeySeed)
}

// ServerBannerPath returns the path to a pre-authentication banner
// file, if configured.
func (c *Config) ServerBannerPath() string {
	return c.v.GetString(keyServerBannerPath)
}

// ServerAuthTimeout returns the time allowed for key exchange and
// authentication.
func (c *Config) ServerAuthTimeout() time.Duration {
	return c.v.GetDuration(keyServerAuthTimeout)
}

// ServerInactivityTimeout returns the idle duration after which a
// connection is closed, or zero if disabled.
func (c *Config) ServerInactivityTimeout() time.Duration {
	return c.v.GetDuration(keyServerInactivityTimeout)
}

// ServerKeepaliveInterval returns the interval between keepalive
// probes, or zero if disabled.
func (c *Config) ServerKeepaliveInterval() time.Duration {
	return c.v.GetDuration(keyServerKeepaliveInterval)
}

// ServerKeepaliveMax returns how many consecutive unanswered
// keepalives are tolerated before the connection is closed.
func (c *Config) ServerKeepaliveMax() int {
	return c.v.GetInt(keyServerKeepaliveMax)
}

// ServerAllowAnonymous reports whether connections are accepted with
// no password or public key verifier configured.
func (c *Config) ServerAllowAnonymous() bool {
	return c.v.GetBool(keyServerAllowAnonymous)
}

// ---------------------------------------------------------------------------
// Metrics accessors
// ---------------------------------------------------------------------------

// MetricsEnabled reports whether the metrics admin listener should be
// started.
func (c *Config) MetricsEnabled() bool {
	return c.v.GetBool(keyMetricsEnabled)
}

// MetricsAddress returns the HTTP listen address for Prometheus
// metrics.
func (c *Config) MetricsAddress() string {
	return c.v.GetString(keyMetricsAddress)
}
