package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yacchi/kasane/format"
	"github.com/yacchi/kasane/layer"
	"github.com/yacchi/kasane/remote"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Fetcher) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := DefaultConfig()
	cfg.Addr = mr.Addr()
	cfg.Key = "app:config"

	f, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	return mr, f
}

func TestOpen(t *testing.T) {
	_, f := setupTestRedis(t)
	assert.NotNil(t, f.client)
	assert.Equal(t, "app:config", f.Key())
}

func TestOpen_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = Open(ctx, Config{Addr: addr, Key: "k"}, nil)
	assert.Error(t, err)
}

func TestFetcher_Fetch(t *testing.T) {
	mr, f := setupTestRedis(t)
	ctx := context.Background()

	bag, err := f.Fetch(ctx)
	require.NoError(t, err)
	assert.Empty(t, bag, "missing hash yields an empty bag")

	mr.HSet("app:config", "server.port", "9090")
	mr.HSet("app:config", "feature.x", "on")

	bag, err = f.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, format.Bag{"server.port": "9090", "feature.x": "on"}, bag)
}

func TestFetcher_FetchWrongType(t *testing.T) {
	mr, f := setupTestRedis(t)
	require.NoError(t, mr.Set("app:config", "not a hash"))

	_, err := f.Fetch(context.Background())
	assert.Error(t, err)
}

func TestFetcher_WithPoller(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	f := New(client, "props")
	assert.NoError(t, f.Close(), "Close is a no-op for caller-owned clients")

	target := layer.NewSettable()
	p := remote.NewPoller("redis", f, target)

	mr.HSet("props", "a", "1")
	changed, err := p.PollOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)

	mr.HDel("props", "a")
	mr.HSet("props", "b", "2")
	_, err = p.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"b": "2"}, target.Snapshot())
}
