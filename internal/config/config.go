// Package config reads settings from defaults, an optional .env file and
// EMPOWER_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "EMPOWER"

type Config struct {
	Debug                 bool
	Addr                  string
	StorageDriver         string // "bolt" or "memory"
	StoragePath           string
	SessionTTL            time.Duration
	ClearOnPaymentSuccess bool
}

// Load builds a Config. If dir contains a .env file it is loaded into the
// environment first; a missing file is not an error.
func Load(dir string) (*Config, error) {
	v := viper.New()

	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", false)
	v.SetDefault("addr", ":9090")
	v.SetDefault("storage.driver", "bolt")
	v.SetDefault("storage.path", "empower.db")
	v.SetDefault("session.ttl", 30*time.Minute)
	v.SetDefault("payment.clearOnSuccess", false)

	if dir != "" {
		dotEnvPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				return nil, errors.Wrapf(err, "config.godotenv(%s)", dotEnvPath)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "config.os.Stat(%s)", dotEnvPath)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Debug:                 v.GetBool("debug"),
		Addr:                  v.GetString("addr"),
		StorageDriver:         strings.ToLower(v.GetString("storage.driver")),
		StoragePath:           v.GetString("storage.path"),
		SessionTTL:            v.GetDuration("session.ttl"),
		ClearOnPaymentSuccess: v.GetBool("payment.clearOnSuccess"),
	}
	switch cfg.StorageDriver {
	case "bolt", "memory":
	default:
		return nil, errors.Errorf("config: unknown storage.driver %q", cfg.StorageDriver)
	}
	return cfg, nil
}
