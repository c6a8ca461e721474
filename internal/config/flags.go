package config

import (
	"github.com/spf13/pflag"
)

// BindFlags registers every configuration flag on fs and returns the config
// the parsed values land in. The returned value is only meaningful after fs
// has been parsed (cobra does that before running a command).
//
// Flags:
//
//	-c/--config       json file path with configs
//	--token           remote access token
//	--backend         remote backend: http | postgres
//	-a/--address      remote HTTP base URL
//	--remote-dsn      remote Postgres DSN
//	--request-timeout remote request timeout (e.g. "10s")
//	-d/--db           local SQLite file
//	--redis           Redis address for the session key cache
//	--key-ttl         session key cache TTL
//	--sync-interval   background sync period
//	--status-addr     status/metrics listen address for watch
//	--retry-attempts  max attempts per remote replay
//	--retry-delay     first retry backoff
func BindFlags(fs *pflag.FlagSet) *StructuredConfig {
	cfg := &StructuredConfig{}

	fs.StringVarP(&cfg.JSONFilePath, "config", "c", "", "JSON config file path")
	fs.StringVar(&cfg.App.Token, "token", "", "Remote access token")
	fs.StringVar(&cfg.Adapter.Backend, "backend", "", "Remote backend (http|postgres)")
	fs.StringVarP(&cfg.Adapter.HTTPAddress, "address", "a", "", "Remote HTTP base URL")
	fs.StringVar(&cfg.Adapter.PostgresDSN, "remote-dsn", "", "Remote Postgres DSN")
	fs.DurationVar(&cfg.Adapter.RequestTimeout, "request-timeout", 0, "Remote request timeout (e.g., 10s)")
	fs.StringVarP(&cfg.Storage.DB.DSN, "db", "d", "", "Local SQLite database file")
	fs.StringVar(&cfg.Session.RedisAddress, "redis", "", "Redis address for the session key cache")
	fs.DurationVar(&cfg.Session.KeyTTL, "key-ttl", 0, "Session key cache TTL (e.g., 15m)")
	fs.DurationVar(&cfg.Workers.SyncInterval, "sync-interval", 0, "Background sync interval (e.g., 30s)")
	fs.StringVar(&cfg.Workers.StatusAddress, "status-addr", "", "Serve status and metrics on this address while watching")
	fs.Uint64Var(&cfg.Retry.MaxAttempts, "retry-attempts", 0, "Max attempts per remote replay")
	fs.DurationVar(&cfg.Retry.BaseDelay, "retry-delay", 0, "First retry backoff (e.g., 200ms)")

	return cfg
}
