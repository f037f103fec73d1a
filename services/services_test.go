package services

import (
	"context"
	"testing"
	"time"

	"estatepro/config"
	"estatepro/database/kv"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func baseConfig() config.Config {
	return config.Config{
		GatewayBaseURL: "http://gateway.test",
		GatewayTimeout: time.Second,
		StoreBackend:   "memory",
		SnapshotTTL:    time.Hour,
		SessionTTL:     time.Minute,
		InFlightTTL:    time.Minute,
	}
}

func TestNewStack_Memory(t *testing.T) {
	stack, err := NewStack(baseConfig(), zap.NewNop())
	require.NoError(t, err)
	defer stack.Close()

	assert.IsType(t, &kv.MemoryStore{}, stack.Store)
	assert.NotNil(t, stack.Orchestrator)
	assert.NoError(t, stack.Store.Ping(context.Background()))
}

func TestNewStack_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.StoreBackend = "redis"
	cfg.RedisAddr = mr.Addr()

	stack, err := NewStack(cfg, zap.NewNop())
	require.NoError(t, err)
	defer stack.Close()
	assert.IsType(t, &kv.RedisStore{}, stack.Store)

	cfg.RedisAddr = "127.0.0.1:1"
	_, err = NewStack(cfg, zap.NewNop())
	assert.Error(t, err)
}
