package redisdb

import (
	"context"
	"testing"

	"bookshop/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_BasicConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.Password = ""
	cfg.Redis.DB = 15

	client := NewClient(cfg)
	require.NotNil(t, client)
	opts := client.Options()
	assert.Equal(t, cfg.Redis.Addr, opts.Addr)
	assert.Equal(t, cfg.Redis.Password, opts.Password)
	assert.Equal(t, cfg.Redis.DB, opts.DB)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()

	rdb, err := Connect(context.Background(), cfg)
	require.NoError(t, err)
	defer rdb.Close()
	assert.NoError(t, rdb.Ping(context.Background()).Err())
}

func TestConnect_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()
	mr.Close()

	_, err := Connect(context.Background(), cfg)
	assert.Error(t, err)
}
