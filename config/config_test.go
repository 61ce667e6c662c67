package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "", config.RedisAddr)
	assert.Equal(t, 0, config.RedisDB)
	assert.Equal(t, "offers", config.RedisStream)
	assert.Equal(t, 45*time.Second, config.FetchTimeout)
	assert.Equal(t, 3*time.Second, config.LinkDelay)
	assert.Equal(t, 3, config.ReconcileAttempts)
	assert.Equal(t, 2*time.Second, config.ReconcileBackoff)
	assert.Equal(t, "@every 6h", config.BatchCron)

	// Test with environment variables
	os.Setenv("DATABASE_URL", "postgres://db.example.com/tracker")
	os.Setenv("REDIS_ADDR", "redis.example.com:6379")
	os.Setenv("LINK_DELAY_MS", "1500")
	os.Setenv("RECONCILE_ATTEMPTS", "5")
	os.Setenv("BATCH_CRON", "0 */2 * * *")

	config = LoadConfig()
	assert.Equal(t, "postgres://db.example.com/tracker", config.DatabaseURL)
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)
	assert.Equal(t, 1500*time.Millisecond, config.LinkDelay)
	assert.Equal(t, 5, config.ReconcileAttempts)
	assert.Equal(t, "0 */2 * * *", config.BatchCron)

	// Clean up
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("REDIS_ADDR")
	os.Unsetenv("LINK_DELAY_MS")
	os.Unsetenv("RECONCILE_ATTEMPTS")
	os.Unsetenv("BATCH_CRON")
}

func TestValidate(t *testing.T) {
	config := LoadConfig()
	assert.NoError(t, config.Validate())

	config.DatabaseURL = ""
	assert.Error(t, config.Validate())

	config = LoadConfig()
	config.FetchTimeout = 0
	assert.Error(t, config.Validate())

	config = LoadConfig()
	config.ReconcileAttempts = 0
	assert.Error(t, config.Validate())
}
