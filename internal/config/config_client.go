package config

import (
	"fmt"
	"time"
)

// ClientConfig is the configuration consumed by the note-keeper client,
// assembled from [StructuredConfig].
type ClientConfig struct {
	App     App
	Adapter Adapter
	Storage Storage
	Session Session
	Workers Workers
	Retry   Retry
	Crypto  Crypto
}

// GetClientConfig builds and validates a client config from the merged
// structured configuration. flags are the values bound by [BindFlags]; nil
// means no flags were parsed.
func GetClientConfig(flags *StructuredConfig) (*ClientConfig, error) {
	cfg, err := GetStructuredConfig(flags)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		App:     cfg.App,
		Adapter: cfg.Adapter,
		Storage: cfg.Storage,
		Session: cfg.Session,
		Workers: cfg.Workers,
		Retry:   cfg.Retry,
		Crypto:  cfg.Crypto,
	}

	return clientCfg, clientCfg.validate()
}

// defaultConfig is the lowest-priority source merged by the builder.
func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		Adapter: Adapter{
			Backend:        BackendHTTP,
			RequestTimeout: 10 * time.Second,
		},
		Storage: Storage{DB: DB{DSN: "notes.db"}},
		Session: Session{KeyTTL: 15 * time.Minute},
		Workers: Workers{SyncInterval: 30 * time.Second},
		Retry: Retry{
			MaxAttempts: 3,
			BaseDelay:   200 * time.Millisecond,
		},
	}
}
