package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := FromEnv("test")
	cfg.Port = DefaultPort
	cfg.StorageBackend = BackendMongo
	cfg.LockBackend = BackendMongo
	cfg.LockWait = DefaultLockWait
	cfg.LockTTL = DefaultLockTTL
	cfg.ReadTimeout = DefaultReadTimeout
	cfg.WriteTimeout = DefaultWriteTimeout
	cfg.SalonTimezone = DefaultSalonTimezone
	cfg.EventsEnabled = false
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig(t)
	assert.Greater(t, DefaultLockTTL, cfg.LockHoldBound())
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestValidate_LockTTLMustOutliveWrites(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "mongo lock shorter than write timeout",
			mutate:  func(c *Config) { c.LockTTL = 10 * time.Second },
			wantErr: true,
		},
		{
			name:    "mongo lock equal to hold bound",
			mutate:  func(c *Config) { c.LockTTL = 2*c.ReadTimeout + c.WriteTimeout },
			wantErr: true,
		},
		{
			name: "redis lock shorter than write timeout",
			mutate: func(c *Config) {
				c.LockBackend = BackendRedis
				c.RedisAddr = "localhost:6379"
				c.LockTTL = 20 * time.Second
			},
			wantErr: true,
		},
		{
			name: "short timeouts allow a short ttl",
			mutate: func(c *Config) {
				c.ReadTimeout = 2 * time.Second
				c.WriteTimeout = 3 * time.Second
				c.LockTTL = 10 * time.Second
			},
		},
		{
			name: "memory lock has no ttl to outlive",
			mutate: func(c *Config) {
				c.StorageBackend = BackendMemory
				c.LockBackend = BackendMemory
				c.LockTTL = 10 * time.Second
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "longest lock hold")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
