package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zantech/instantorder/internal/domain/catalog"
	"github.com/zantech/instantorder/internal/infrastructure/config"
)

func testProducts() []catalog.Product {
	ts := time.Date(2024, 3, 9, 8, 30, 0, 0, time.UTC)
	return []catalog.Product{
		{
			ID:           uuid.New(),
			Name:         "Desk Lamp",
			Category:     "Home & Garden",
			UnitPrice:    decimal.RequireFromString("24.50"),
			CustomerName: "Alice",
			Image:        &catalog.Image{MIME: "image/jpeg", Data: "/9j/4AAQ"},
			CreatedAt:    ts,
			UpdatedAt:    ts,
		},
		{
			ID:           uuid.New(),
			Name:         "Tennis Ball",
			Category:     "Sports & Outdoors",
			UnitPrice:    decimal.RequireFromString("2.25"),
			CustomerName: "Bob",
			CreatedAt:    ts,
			UpdatedAt:    ts.Add(time.Hour),
		},
	}
}

func assertSameProducts(t *testing.T, want, got []catalog.Product) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.Equal(t, want[i].Category, got[i].Category)
		assert.True(t, want[i].UnitPrice.Equal(got[i].UnitPrice))
		assert.Equal(t, want[i].CustomerName, got[i].CustomerName)
		assert.Equal(t, want[i].Image, got[i].Image)
		assert.True(t, want[i].UpdatedAt.Equal(got[i].UpdatedAt))
	}
}

func TestCodec(t *testing.T) {
	t.Run("nil encodes as an empty array", func(t *testing.T) {
		data, err := encode(nil)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(data))
	})

	t.Run("uses camelCase record fields", func(t *testing.T) {
		data, err := encode(testProducts()[:1])
		require.NoError(t, err)
		assert.Contains(t, string(data), `"unitPrice":"24.5"`)
		assert.Contains(t, string(data), `"customerName":"Alice"`)
	})

	t.Run("blank payload decodes to empty", func(t *testing.T) {
		products, err := decode([]byte("  \n"))
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("garbage is an error", func(t *testing.T) {
		_, err := decode([]byte("{not json"))
		assert.Error(t, err)
	})
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file loads empty", func(t *testing.T) {
		s := NewFileStore(filepath.Join(t.TempDir(), "catalog.json"))
		products, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("save then load round trips", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data", "catalog.json")
		s := NewFileStore(path)
		want := testProducts()

		require.NoError(t, s.Save(ctx, want))
		got, err := s.Load(ctx)
		require.NoError(t, err)
		assertSameProducts(t, want, got)
	})

	t.Run("save leaves no temp files behind", func(t *testing.T) {
		dir := t.TempDir()
		s := NewFileStore(filepath.Join(dir, "catalog.json"))
		require.NoError(t, s.Save(ctx, testProducts()))
		require.NoError(t, s.Save(ctx, testProducts()[:1]))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "catalog.json", entries[0].Name())
	})

	t.Run("corrupt file is reported", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.json")
		require.NoError(t, os.WriteFile(path, []byte("[{"), 0o600))

		_, err := NewFileStore(path).Load(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode")
	})

	t.Run("cancelled context does not write", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.json")
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		assert.ErrorIs(t, NewFileStore(path).Save(cctx, testProducts()), context.Canceled)
		assert.NoFileExists(t, path)
	})
}

func TestBoltStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	s, err := OpenBoltStore(path)
	require.NoError(t, err)

	products, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	want := testProducts()
	require.NoError(t, s.Save(ctx, want))
	require.NoError(t, s.Close())

	reopened, err := OpenBoltStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	assertSameProducts(t, want, got)
}

func TestRedisStore_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	s := NewRedisStoreWithClient(client, "")
	defer s.Close()

	assert.Equal(t, defaultRedisKey, s.key)

	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load redis snapshot")

	err = s.Save(context.Background(), testProducts())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save redis snapshot")
}

func TestFactory_Create(t *testing.T) {
	dir := t.TempDir()

	t.Run("file store", func(t *testing.T) {
		cfg := &config.Config{Catalog: config.CatalogConfig{Store: StoreFile, Path: filepath.Join(dir, "c.json")}}
		store, closer, err := NewFactory(cfg).Create()
		require.NoError(t, err)
		defer closer.Close()
		assert.IsType(t, &FileStore{}, store)
	})

	t.Run("bolt store", func(t *testing.T) {
		cfg := &config.Config{Catalog: config.CatalogConfig{Store: StoreBolt, Path: filepath.Join(dir, "c.db")}}
		store, closer, err := NewFactory(cfg).Create()
		require.NoError(t, err)
		defer closer.Close()
		assert.IsType(t, &BoltStore{}, store)
	})

	t.Run("sqlite store", func(t *testing.T) {
		cfg := &config.Config{Catalog: config.CatalogConfig{Store: StoreSQLite, Path: filepath.Join(dir, "c.sqlite")}}
		store, closer, err := NewFactory(cfg).Create()
		require.NoError(t, err)
		defer closer.Close()

		require.NoError(t, store.Save(context.Background(), testProducts()))
		got, err := store.Load(context.Background())
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("unknown store", func(t *testing.T) {
		cfg := &config.Config{Catalog: config.CatalogConfig{Store: "etcd"}}
		_, _, err := NewFactory(cfg).Create()
		assert.Error(t, err)
	})
}
