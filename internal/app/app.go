// Package app wires configuration, the persisted store and the domain
// services together.
package app

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/swift-grocers/internal/checkout"
	"github.com/xenking/swift-grocers/internal/domain/cart"
	"github.com/xenking/swift-grocers/internal/domain/coupon"
	"github.com/xenking/swift-grocers/internal/domain/order"
	"github.com/xenking/swift-grocers/internal/domain/product"
	"github.com/xenking/swift-grocers/internal/notify"
	"github.com/xenking/swift-grocers/internal/storage"
	"github.com/xenking/swift-grocers/internal/storage/file"
	"github.com/xenking/swift-grocers/internal/storage/postgres"
	redisstore "github.com/xenking/swift-grocers/internal/storage/redis"
)

// Services is the wired application.
type Services struct {
	Bus      *notify.Bus
	Cart     *cart.Engine
	Saved    *cart.Engine
	Orders   *order.Manager
	Checkout *checkout.Service
	Catalog  *product.Catalog
	Coupons  *coupon.StaticRepository
}

// Build opens the configured store and creates all services on top of it.
// Nil providers fall back to the global ones. The returned close function
// releases the store.
func Build(ctx context.Context, cfg *Config, tp trace.TracerProvider, mp metric.MeterProvider) (*Services, func(), error) {
	raw, closeStore, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	store, err := storage.Instrument(raw, cfg.Store, tp, mp)
	if err != nil {
		closeStore()
		return nil, nil, errors.Wrap(err, "instrument store")
	}

	bus := notify.New()
	coupons := coupon.NewStaticRepository(coupon.DefaultRules())
	s := &Services{
		Bus:     bus,
		Cart:    cart.NewEngine(store, bus, cart.WithUser(cfg.UserID)),
		Saved:   cart.NewEngine(store, bus, cart.WithKey(storage.SavedKey), cart.WithUser(cfg.UserID)),
		Catalog: product.NewCatalog(product.DemoProducts()),
		Coupons: coupons,
		Orders: order.NewManager(store,
			order.WithUser(cfg.UserID),
			order.WithDeliveryWindow(cfg.DeliveryWindow),
		),
	}
	s.Checkout = checkout.NewService(s.Cart, s.Orders, coupon.NewRepoValidator(coupons), cfg.Checkout.Fees())

	zctx.From(ctx).Debug("Services ready",
		zap.String("store", cfg.Store),
		zap.String("cart_key", s.Cart.Key()),
	)
	return s, closeStore, nil
}

// OpenStore connects the configured backend.
func OpenStore(ctx context.Context, cfg *Config) (storage.Store, func(), error) {
	lg := zctx.From(ctx)
	noop := func() {}

	switch cfg.Store {
	case BackendMemory:
		return storage.NewMemory(), noop, nil

	case BackendFile:
		s, err := file.New(cfg.DataDir)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open file store")
		}
		lg.Debug("Using file store", zap.String("dir", cfg.DataDir))
		return s, noop, nil

	case BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, errors.Wrap(err, "run migrations")
		}
		return postgres.NewStore(pool), pool.Close, nil

	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s := redisstore.New(client, cfg.Redis.Prefix)
		if err := s.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, nil, errors.Wrap(err, "connect redis")
		}
		return s, func() {
			if err := client.Close(); err != nil {
				lg.Warn("Redis close failed", zap.Error(err))
			}
		}, nil

	default:
		return nil, nil, errors.Errorf("unknown store backend %q", cfg.Store)
	}
}
