// Package config provides unified configuration loading from files,
// environment variables, and CLI flags using viper and pflag.
//
// Resolution order (highest wins):
//  1. CLI flags
//  2. Environment variables (prefix SHENRON_)
//  3. Config file (config.yaml in . or /etc/shenron/)
//  4. Compiled defaults
package config

// Viper keys for the sshd server.
const (
	keyServerAddress           = "server.address"
	keyServerHostKeyPath       = "server.host_key_path"
	keyServerHostKeySeed       = "server.host_key_seed"
	keyServerBannerPath        = "server.banner_path"
	keyServerAuthTimeout       = "server.auth_timeout"
	keyServerInactivityTimeout = "server.inactivity_timeout"
	keyServerKeepaliveInterval = "server.keepalive_interval"
	keyServerKeepaliveMax      = "server.keepalive_max"
	keyServerAllowAnonymous    = "server.allow_anonymous"
)

// Viper keys for the metrics admin listener.
const (
	keyMetricsAddress = "metrics.address"
	keyMetricsEnabled = "metrics.enabled"
)
