package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	App struct {
		Token   string `json:"token"`
		Version string `json:"version"`
	} `json:"app,omitempty"`

	Adapter struct {
		Backend        string   `json:"backend"`
		HTTPAddress    string   `json:"http_address"`
		PostgresDSN    string   `json:"postgres_dsn"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"adapter,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Session struct {
		RedisAddress string   `json:"redis_address"`
		KeyTTL       Duration `json:"key_ttl"`
	} `json:"session,omitempty"`

	Workers struct {
		SyncInterval  Duration `json:"sync_interval"`
		StatusAddress string   `json:"status_address"`
	} `json:"workers,omitempty"`

	Retry struct {
		MaxAttempts uint64   `json:"max_attempts"`
		BaseDelay   Duration `json:"base_delay"`
	} `json:"retry,omitempty"`

	Crypto struct {
		ArgonTime      uint32 `json:"argon_time"`
		ArgonMemoryKiB uint32 `json:"argon_memory_kib"`
		ArgonThreads   uint8  `json:"argon_threads"`
	} `json:"crypto,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			Token:   jsonCfg.App.Token,
			Version: jsonCfg.App.Version,
		},
		Adapter: Adapter{
			Backend:        jsonCfg.Adapter.Backend,
			HTTPAddress:    jsonCfg.Adapter.HTTPAddress,
			PostgresDSN:    jsonCfg.Adapter.PostgresDSN,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
		},
		Storage: Storage{
			DB: DB{DSN: jsonCfg.Storage.DB.DSN},
		},
		Session: Session{
			RedisAddress: jsonCfg.Session.RedisAddress,
			KeyTTL:       time.Duration(jsonCfg.Session.KeyTTL),
		},
		Workers: Workers{
			SyncInterval:  time.Duration(jsonCfg.Workers.SyncInterval),
			StatusAddress: jsonCfg.Workers.StatusAddress,
		},
		Retry: Retry{
			MaxAttempts: jsonCfg.Retry.MaxAttempts,
			BaseDelay:   time.Duration(jsonCfg.Retry.BaseDelay),
		},
		Crypto: Crypto{
			ArgonTime:      jsonCfg.Crypto.ArgonTime,
			ArgonMemoryKiB: jsonCfg.Crypto.ArgonMemoryKiB,
			ArgonThreads:   jsonCfg.Crypto.ArgonThreads,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
