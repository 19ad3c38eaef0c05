package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port              string `envconfig:"PORT" default:"8080"`
	AllowedOrigin     string `envconfig:"ALLOWED_ORIGIN" default:"http://127.0.0.1:3000"`
	DatabaseURL       string `envconfig:"DATABASE_URL"`
	RedisAddr         string `envconfig:"REDIS_ADDR"`
	RedisPassword     string `envconfig:"REDIS_PASSWORD"`
	RedisDB           int    `envconfig:"REDIS_DB" default:"0"`
	DataDir           string `envconfig:"DATA_DIR"`
	SummaryTTLSeconds int    `envconfig:"SUMMARY_TTL_SECONDS" default:"300"`
	StationName       string `envconfig:"STATION_NAME" default:"Pump Khata"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.SummaryTTLSeconds < 1 {
		cfg.SummaryTTLSeconds = 300
	}
	return cfg, nil
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}
