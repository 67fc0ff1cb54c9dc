package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/xenking/swift-grocers/internal/checkout"
	"github.com/xenking/swift-grocers/internal/domain/order"
	"github.com/xenking/swift-grocers/internal/domain/product"
	"github.com/xenking/swift-grocers/internal/storage"
)

// --- Helpers ---

func checkoutRequest() checkout.PlaceOrderRequest {
	return checkout.PlaceOrderRequest{
		Shipping: order.ShippingInfo{DeliveryAddress: "123 Main Street, Lagos", PaymentMethodLabel: "Cash on Delivery"},
	}
}

func missingFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "absent.yaml")
}

// --- Tests ---

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := LoadConfig(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, BackendFile, cfg.Store)
	assert.Equal(t, ".swiftcart", cfg.DataDir)
	assert.Equal(t, 48*time.Hour, cfg.DeliveryWindow)
	assert.Equal(t, int64(500), cfg.Checkout.DeliveryFee)
	assert.Equal(t, int64(5000), cfg.Checkout.FreeDeliveryThreshold)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoadConfig_EnvAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swiftcart.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store: redis
user_id: alice
redis:
  addr: cache:6379
  prefix: "sg:"
checkout:
  delivery_fee: 700
`), 0o600))
	t.Setenv("SWIFT_USER_ID", "bob")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.Store)
	assert.Equal(t, "bob", cfg.UserID, "env overrides file")
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, "sg:", cfg.Redis.Prefix)
	assert.Equal(t, int64(700), cfg.Checkout.DeliveryFee)
}

func TestLoadConfig_DatabaseURLFallback(t *testing.T) {
	t.Setenv("SWIFT_STORE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/swift")

	cfg, err := LoadConfig(missingFile(t))
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/swift", cfg.DatabaseURL)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Store:          BackendFile,
			DataDir:        "data",
			DeliveryWindow: time.Hour,
			Redis:          RedisConfig{Addr: "localhost:6379"},
			Checkout:       CheckoutConfig{DeliveryFee: 500, FreeDeliveryThreshold: 5000},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown backend", mutate: func(c *Config) { c.Store = "sqlite" }, wantErr: "unknown store backend"},
		{name: "file without dir", mutate: func(c *Config) { c.DataDir = "" }, wantErr: "data dir is required"},
		{name: "postgres without url", mutate: func(c *Config) { c.Store = BackendPostgres }, wantErr: "database URL is required"},
		{name: "redis without addr", mutate: func(c *Config) { c.Store = BackendRedis; c.Redis.Addr = "" }, wantErr: "redis address is required"},
		{name: "negative fee", mutate: func(c *Config) { c.Checkout.DeliveryFee = -1 }, wantErr: "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuild_Memory(t *testing.T) {
	ctx := context.Background()
	cfg := &Config{
		Store:          BackendMemory,
		UserID:         "alice",
		DeliveryWindow: 24 * time.Hour,
		Checkout:       CheckoutConfig{DeliveryFee: 500, FreeDeliveryThreshold: 5000},
	}

	s, closeFn, err := Build(ctx, cfg, tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider())
	require.NoError(t, err)
	defer closeFn()

	assert.Equal(t, "swift_grocers_cart:alice", s.Cart.Key())
	assert.Equal(t, "swift_grocers_saved:alice", s.Saved.Key())

	notified := 0
	s.Bus.Subscribe(func(context.Context) { notified++ })

	p, err := s.Catalog.GetByID(ctx, "prod-3")
	require.NoError(t, err)
	s.Cart.AddItem(ctx, *p, 2)
	assert.Equal(t, 1, notified)

	q, err := s.Checkout.Quote(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2900), q.Total)

	o, err := s.Checkout.PlaceOrder(ctx, checkoutRequest())
	require.NoError(t, err)
	require.NotNil(t, o.EstimatedDelivery)
	assert.Equal(t, 24*time.Hour, o.EstimatedDelivery.Sub(o.CreatedAt))
	assert.Len(t, s.Orders.List(ctx), 1)
	assert.True(t, s.Cart.Items(ctx).Empty())
}

func TestBuild_File(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := &Config{Store: BackendFile, DataDir: dir, DeliveryWindow: time.Hour}

	s, closeFn, err := Build(ctx, cfg, nil, nil)
	require.NoError(t, err)
	s.Cart.AddItem(ctx, product.DemoProducts()[0], 1)
	closeFn()

	again, closeFn, err := Build(ctx, cfg, nil, nil)
	require.NoError(t, err)
	defer closeFn()
	assert.Equal(t, 1, again.Cart.ItemCount(ctx), "cart survives a restart")

	_, err = os.Stat(filepath.Join(dir, storage.CartKey+".json"))
	require.NoError(t, err)
}

func TestBuild_Redis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cfg := &Config{
		Store:          BackendRedis,
		DeliveryWindow: time.Hour,
		Redis:          RedisConfig{Addr: mr.Addr(), Prefix: "sg:"},
	}

	s, closeFn, err := Build(ctx, cfg, nil, nil)
	require.NoError(t, err)
	defer closeFn()

	s.Cart.AddItem(ctx, product.DemoProducts()[1], 2)
	assert.True(t, mr.Exists("sg:"+storage.CartKey))
}

func TestOpenStore_RedisDown(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	addr := mr.Addr()
	mr.Close()

	_, _, err := OpenStore(context.Background(), &Config{Store: BackendRedis, Redis: RedisConfig{Addr: addr}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect redis")
}

func TestOpenStore_Unknown(t *testing.T) {
	_, _, err := OpenStore(context.Background(), &Config{Store: "sqlite"})
	require.Error(t, err)
}
