package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "MONGODB_URI", "MONGO_DATABASE", "REDIS_ADDR", "BCRYPT_COST", "SHUTDOWN_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.ServerPort)
	assert.Equal(t, "mongodb://127.0.0.1:27017", cfg.Mongo.URI)
	assert.Equal(t, "fake_so", cfg.Mongo.Database)
	assert.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9001")
	t.Setenv("MONGO_DATABASE", "fake_so_test")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("MONGO_CONNECT_TIMEOUT", "not-a-duration")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9001", cfg.ServerPort)
	assert.Equal(t, "fake_so_test", cfg.Mongo.Database)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, 5*time.Second, cfg.Mongo.ConnectTimeout)
}

func TestParseBcryptCostRejectsOutOfRange(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, parseBcryptCost("1"))
	assert.Equal(t, bcrypt.DefaultCost, parseBcryptCost("99"))
	assert.Equal(t, bcrypt.DefaultCost, parseBcryptCost("abc"))
	assert.Equal(t, 12, parseBcryptCost("12"))
}
