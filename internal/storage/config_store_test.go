package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/resinfarm/internal/config"
	"github.com/annel0/resinfarm/internal/logging"
)

type barkSettings struct {
	Duration float64  `json:"duration"`
	Chance   float64  `json:"chance"`
	Tools    []string `json:"tools"`
}

// runConfigStoreContract проверяет поведение, общее для всех реализаций ConfigStore
func runConfigStoreContract(t *testing.T, store ConfigStore) {
	ctx := context.Background()

	t.Run("Load missing key", func(t *testing.T) {
		var got barkSettings
		found, err := store.Load(ctx, "log-barked-birch-config.json", &got)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, barkSettings{}, got)
	})

	t.Run("Store and Load", func(t *testing.T) {
		want := barkSettings{Duration: 2.5, Chance: 0.25, Tools: []string{"knife-*"}}
		require.NoError(t, store.Store(ctx, "log-barked-oak-config.json", want))

		var got barkSettings
		found, err := store.Load(ctx, "log-barked-oak-config.json", &got)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, want, got)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Store(ctx, "log-barked-pine-config.json", barkSettings{Duration: 1}))
		require.NoError(t, store.Store(ctx, "log-barked-pine-config.json", barkSettings{Duration: 4}))

		var got barkSettings
		found, err := store.Load(ctx, "log-barked-pine-config.json", &got)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 4.0, got.Duration)
	})

	t.Run("Keys sorted", func(t *testing.T) {
		keys, err := store.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"log-barked-oak-config.json", "log-barked-pine-config.json"}, keys)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "log-barked-pine-config.json"))
		require.NoError(t, store.Delete(ctx, "log-barked-pine-config.json"))

		found, err := store.Load(ctx, "log-barked-pine-config.json", &barkSettings{})
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Invalid key", func(t *testing.T) {
		for _, key := range []string{"", "  ", "../escape", "a/b", ".."} {
			err := store.Store(ctx, key, barkSettings{})
			assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
		}
	})

	t.Run("Closed store", func(t *testing.T) {
		require.NoError(t, store.Close())
		require.NoError(t, store.Close())

		_, err := store.Load(ctx, "log-barked-oak-config.json", &barkSettings{})
		assert.Error(t, err)
		assert.Error(t, store.Store(ctx, "log-barked-oak-config.json", barkSettings{}))
	})
}

func TestMemoryConfigStore(t *testing.T) {
	runConfigStoreContract(t, NewMemoryConfigStore())
}

func TestMemoryConfigStoreCancelledContext(t *testing.T) {
	store := NewMemoryConfigStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Load(ctx, "k.json", &barkSettings{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileConfigStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileConfigStore(dir)
	require.NoError(t, err)
	runConfigStoreContract(t, store)
}

func TestFileConfigStoreWritesReadableJSON(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileConfigStore(dir)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Store(context.Background(), "log-barked-oak-config.json", barkSettings{Duration: 2, Chance: 0.5}))

	data, err := os.ReadFile(filepath.Join(dir, "log-barked-oak-config.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"duration": 2`)

	// Временные файлы не должны попадать в список ключей
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json.tmp"), []byte("{"), 0644))
	keys, err := store.Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"log-barked-oak-config.json"}, keys)
}

func TestFileConfigStoreCorruptedFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileConfigStore(dir)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-config.json"), []byte("{not json"), 0644))

	found, err := store.Load(context.Background(), "bad-config.json", &barkSettings{})
	assert.True(t, found)
	assert.Error(t, err)
}

func TestBadgerConfigStore(t *testing.T) {
	store, err := NewBadgerConfigStore(t.TempDir())
	require.NoError(t, err)
	runConfigStoreContract(t, store)
}

func TestBadgerConfigStoreReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewBadgerConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Store(ctx, "log-barked-oak-config.json", barkSettings{Chance: 0.75}))
	require.NoError(t, store.Close())

	reopened, err := NewBadgerConfigStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	var got barkSettings
	found, err := reopened.Load(ctx, "log-barked-oak-config.json", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 0.75, got.Chance)
}

func TestRedisConfigStore(t *testing.T) {
	addr := os.Getenv("RESINFARM_REDIS_ADDR")
	if addr == "" {
		t.Skip("RESINFARM_REDIS_ADDR не задан, пропускаем тест Redis")
	}

	store, err := NewRedisConfigStore(&RedisConfig{Addr: addr, KeyPrefix: "resinfarm:test:" + t.Name() + ":"})
	require.NoError(t, err)

	ctx := context.Background()
	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	for _, k := range keys {
		require.NoError(t, store.Delete(ctx, k))
	}
	runConfigStoreContract(t, store)
}

func TestMariaConfigStore(t *testing.T) {
	dsn := os.Getenv("RESINFARM_MARIA_DSN")
	if dsn == "" {
		t.Skip("RESINFARM_MARIA_DSN не задан, пропускаем тест MariaDB")
	}

	store, err := NewMariaConfigStore(dsn)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	for _, k := range keys {
		require.NoError(t, store.Delete(ctx, k))
	}

	want := barkSettings{Duration: 3, Chance: 0.1, Tools: []string{"knife-flint"}}
	require.NoError(t, store.Store(ctx, "log-barked-oak-config.json", want))

	var got barkSettings
	found, err := store.Load(ctx, "log-barked-oak-config.json", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
}

func TestOpen(t *testing.T) {
	t.Run("memory by default", func(t *testing.T) {
		store, err := Open(config.StorageConfig{})
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &MemoryConfigStore{}, store)
	})

	t.Run("file", func(t *testing.T) {
		store, err := Open(config.StorageConfig{Backend: config.StorageFile, Path: t.TempDir()})
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &FileConfigStore{}, store)
	})

	t.Run("badger", func(t *testing.T) {
		store, err := Open(config.StorageConfig{Backend: config.StorageBadger, Path: t.TempDir()})
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &BadgerConfigStore{}, store)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := Open(config.StorageConfig{Backend: "mongo"})
		assert.Error(t, err)
	})

	assert.Contains(t, logging.GetLoggerManager().ListComponents(), "storage")
}
