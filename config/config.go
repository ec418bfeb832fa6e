package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type (
	Config struct {
		App     `json:"app"`
		DB      `json:"db"`
		Slack   `json:"slack"`
		Monitor `json:"monitor"`
		Ops     `json:"ops"`
		Log     `json:"logger"`
	}

	App struct {
		Name        string `json:"name"        env:"APP_NAME" env-default:"crypto-tx-notifier"`
		Environment string `json:"environment" env:"ENV_NAME" env-default:"dev"`
		Debug       bool   `json:"debug"       env:"DEBUG"    env-default:"false"`
	}

	DB struct {
		Host         string `json:"host"          env:"DB_HOST"          env-required:"true"`
		Port         int    `json:"port"          env:"DB_PORT"          env-default:"5432"`
		User         string `json:"user"          env:"DB_USER"          env-required:"true"`
		Password     string `json:"password"      env:"DB_PASSWORD"      env-required:"true"`
		Name         string `json:"name"          env:"DB_NAME"          env-required:"true"`
		MerchantName string `json:"merchant_name" env:"DB_NAME_MERCHANT" env-required:"true"`
		PoolMax      int32  `json:"pool_max"      env:"PG_POOL_MAX"      env-default:"4"`
	}

	Slack struct {
		BotToken      string `json:"bot_token"       env:"SLACK_BOT_TOKEN"       env-required:"true"`
		ChannelID     string `json:"channel_id"      env:"SLACK_CHANNEL_ID"      env-required:"true"`
		RiskChannelID string `json:"risk_channel_id" env:"SLACK_RISK_CHANNEL_ID" env-required:"true"`
	}

	Monitor struct {
		PollInterval time.Duration `json:"poll_interval" env:"POLL_INTERVAL" env-default:"5s"`
	}

	Ops struct {
		Port string `json:"port" env:"OPS_PORT" env-default:"8080"`
	}

	Log struct {
		Level slog.Level `json:"level" env:"LOG_LEVEL"`
	}
)

func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("env read error: %w", err)
	}

	return cfg, nil
}

// DatabaseURL builds a connection string for the given database name.
// The notifier talks to two databases on the same server: the core
// processing database and the auth database holding merchant_data.
func (d DB) DatabaseURL(dbName string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   dbName,
	}
	return u.String()
}
