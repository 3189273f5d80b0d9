package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults(t *testing.T) {
	var c Config
	c.applyDefaults()

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 50.0, c.Server.ReadRPS)
	assert.Equal(t, 100, c.Server.ReadBurst)
	assert.Equal(t, 10.0, c.Server.WriteRPS)
	assert.Equal(t, 20, c.Server.WriteBurst)
	assert.Equal(t, "Asia/Tokyo", c.Timezone)
	assert.Equal(t, "* * * * *", c.Scheduler.PulseSpec)
	assert.Equal(t, "file", c.Store.Backend)
	assert.Equal(t, "data/events.json", c.Store.FilePath)
	assert.Equal(t, "webhook", c.Notifier.Sink)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	c := Config{Timezone: "UTC"}
	c.Store.Backend = "github"
	c.applyDefaults()

	assert.Equal(t, "UTC", c.Timezone)
	assert.Equal(t, "github", c.Store.Backend)
}

func TestApplyEnvOverridesSecrets(t *testing.T) {
	c := Config{}
	c.Store.GitHub.Token = "from-file"
	c.Notifier.Webhook.URL = "https://file.example/hook"

	c.applyEnv(envOverrides{
		GithubToken: "from-env",
		RedisURL:    "redis://env:6379/0",
	})

	assert.Equal(t, "from-env", c.Store.GitHub.Token)
	assert.Equal(t, "redis://env:6379/0", c.Store.Redis.URL)
	// Values without an environment override keep the file value.
	assert.Equal(t, "https://file.example/hook", c.Notifier.Webhook.URL)
}
