package config

import (
	"strings"
	"time"
)

// Option describes a single configuration entry: its viper key, the
// corresponding CLI flag name, the compiled default, and a
// human-readable description shown in --help output.
type Option struct {
	Key         string
	Flag        string
	Default     any
	Description string
}

// ServerOptions defines the configuration entries for the sshd server.
// Each entry is registered as a viper default and a CLI flag.
var ServerOptions = []Option{
	{Key: keyServerAddress, Flag: toFlag(keyServerAddress), Default: ":2222", Description: "SSH server listen address"},
	{Key: keyServerHostKeyPath, Flag: toFlag(keyServerHostKeyPath), Default: "", Description: "Path to a persisted host key; generated and written there if absent"},
	{Key: keyServerHostKeySeed, Flag: toFlag(keyServerHostKeySeed), Default: "", Description: "Deterministically derive the host key from this seed instead of a path"},
	{Key: keyServerBannerPath, Flag: toFlag(keyServerBannerPath), Default: "", Description: "Path to a pre-auth banner file"},
	{Key: keyServerAuthTimeout, Flag: toFlag(keyServerAuthTimeout), Default: 10 * time.Second, Description: "Time allowed for key exchange and authentication"},
	{Key: keyServerInactivityTimeout, Flag: toFlag(keyServerInactivityTimeout), Default: 0 * time.Second, Description: "Close connections idle for this long (0 disables)"},
	{Key: keyServerKeepaliveInterval, Flag: toFlag(keyServerKeepaliveInterval), Default: 30 * time.Second, Description: "Interval between keepalive@openssh.com probes (0 disables)"},
	{Key: keyServerKeepaliveMax, Flag: toFlag(keyServerKeepaliveMax), Default: 3, Description: "Consecutive unanswered keepalives tolerated before closing"},
	{Key: keyServerAllowAnonymous, Flag: toFlag(keyServerAllowAnonymous), Default: false, Description: "Allow connections with no password or public key configured"},
}

// MetricsOptions defines the configuration entries for the metrics
// admin listener.
var MetricsOptions = []Option{
	{Key: keyMetricsEnabled, Flag: toFlag(keyMetricsEnabled), Default: false, Description: "Serve Prometheus metrics over HTTP"},
	{Key: keyMetricsAddress, Flag: toFlag(keyMetricsAddress), Default: "127.0.0.1:9090", Description: "Metrics HTTP listen address"},
}

// toFlag converts a viper key like "server.host_key_path" into a CLI
// flag like "host-key-path" by lower-casing, replacing dots and
// underscores with hyphens, and stripping the "server-" prefix only:
// ServerOptions and MetricsOptions are bound onto the same FlagSet by
// "shenron serve" (see internal/cmd/serve.go), so metrics keys keep
// their "metrics-" prefix to avoid colliding with server flags of the
// same short name (server.address / metrics.address both ending up as
// "--address" would panic pflag on the second registration).
func toFlag(key string) string {
	flag := strings.ToLower(key)
	flag = strings.ReplaceAll(flag, ".", "-")
	flag = strings.ReplaceAll(flag, "_", "-")
	flag = strings.TrimPrefix(flag, "server-")
	return flag
}
