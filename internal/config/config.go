package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/shake819/remind-api/internal/notifier/email"
	"github.com/shake819/remind-api/internal/notifier/webhook"
	"github.com/shake819/remind-api/internal/store/github"
	"github.com/shake819/remind-api/internal/store/postgres"
	"github.com/shake819/remind-api/internal/store/redisstore"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Timezone  string          `mapstructure:"timezone"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Store     StoreConfig     `mapstructure:"store"`
	Notifier  NotifierConfig  `mapstructure:"notifier"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
	// AsyncCommands decouples "accepted" from "completed": mutating
	// commands return 202 and apply in the background, for hosts that
	// enforce a short reply deadline.
	AsyncCommands bool `mapstructure:"async_commands"`
	// Rate limits are split by method: mutating commands cost a full store
	// round-trip, reads are mostly absorbed by the list cache.
	ReadRPS    float64 `mapstructure:"read_rps"`
	ReadBurst  int     `mapstructure:"read_burst"`
	WriteRPS   float64 `mapstructure:"write_rps"`
	WriteBurst int     `mapstructure:"write_burst"`
}

type SchedulerConfig struct {
	// PulseSpec is a cron expression for the timer pulse. The day guard
	// makes pulse frequency irrelevant to correctness.
	PulseSpec string `mapstructure:"pulse_spec"`
}

type StoreConfig struct {
	// Backend selects the adapter: file, postgres, redis, github, memory.
	Backend  string            `mapstructure:"backend"`
	FilePath string            `mapstructure:"file_path"`
	Postgres postgres.Config   `mapstructure:"postgres"`
	Redis    redisstore.Config `mapstructure:"redis"`
	GitHub   github.Config     `mapstructure:"github"`
}

type NotifierConfig struct {
	// Sink selects the delivery channel: webhook or email.
	Sink    string         `mapstructure:"sink"`
	Webhook webhook.Config `mapstructure:"webhook"`
	Email   email.Config   `mapstructure:"email"`
}

// envOverrides carries the secrets that should come from the environment
// rather than the config file (REMIND_GITHUB_TOKEN and friends).
type envOverrides struct {
	GithubToken      string `envconfig:"GITHUB_TOKEN"`
	WebhookURL       string `envconfig:"WEBHOOK_URL"`
	RedisURL         string `envconfig:"REDIS_URL"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD"`
	SMTPPassword     string `envconfig:"SMTP_PASSWORD"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var env envOverrides
	if err := envconfig.Process("remind", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment overrides: %w", err)
	}
	config.applyEnv(env)
	config.applyDefaults()

	return &config, nil
}

func (c *Config) applyEnv(env envOverrides) {
	if env.GithubToken != "" {
		c.Store.GitHub.Token = env.GithubToken
	}
	if env.WebhookURL != "" {
		c.Notifier.Webhook.URL = env.WebhookURL
	}
	if env.RedisURL != "" {
		c.Store.Redis.URL = env.RedisURL
	}
	if env.DatabasePassword != "" {
		c.Store.Postgres.Password = env.DatabasePassword
	}
	if env.SMTPPassword != "" {
		c.Notifier.Email.Password = env.SMTPPassword
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadRPS == 0 {
		c.Server.ReadRPS = 50
	}
	if c.Server.ReadBurst == 0 {
		c.Server.ReadBurst = 100
	}
	if c.Server.WriteRPS == 0 {
		c.Server.WriteRPS = 10
	}
	if c.Server.WriteBurst == 0 {
		c.Server.WriteBurst = 20
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Tokyo"
	}
	if c.Scheduler.PulseSpec == "" {
		c.Scheduler.PulseSpec = "* * * * *"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "file"
	}
	if c.Store.FilePath == "" {
		c.Store.FilePath = "data/events.json"
	}
	if c.Notifier.Sink == "" {
		c.Notifier.Sink = "webhook"
	}
}
