package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/swift-grocers/internal/app"
	"github.com/xenking/swift-grocers/internal/domain/cart"
	"github.com/xenking/swift-grocers/internal/domain/order"
	"github.com/xenking/swift-grocers/internal/domain/product"
	"github.com/xenking/swift-grocers/internal/storage"
)

func main() {
	var (
		users      string
		ordersFile string
		demoCart   bool
		parallel   int
	)

	flag.StringVar(&users, "users", "", "comma-separated user IDs to seed (default: the device-scoped slot)")
	flag.StringVar(&ordersFile, "orders-file", "", "order export to import instead of the sample orders (.json or .json.gz)")
	flag.BoolVar(&demoCart, "demo-cart", true, "also put a few demo products in each cart")
	flag.IntVar(&parallel, "parallel", 4, "users seeded concurrently")
	flag.Parse()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Error("load config failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, cfg, splitUsers(users), ordersFile, demoCart, parallel); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, cfg *app.Config, users []string, ordersFile string, demoCart bool, parallel int) error {
	slog.Info("opening store", slog.String("backend", cfg.Store))

	store, closeStore, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer closeStore()

	orders := order.SampleOrders()
	if ordersFile != "" {
		if orders, err = readOrders(ordersFile); err != nil {
			return errors.Wrap(err, "read orders file")
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(parallel, 1))
	for _, user := range users {
		g.Go(func() error {
			return seedUser(ctx, store, user, orders, demoCart)
		})
	}
	return g.Wait()
}

func seedUser(ctx context.Context, store storage.Store, user string, orders []order.Order, demoCart bool) error {
	lg := slog.With(slog.String("user", user))

	n, err := order.NewManager(store, order.WithUser(user)).Import(ctx, orders)
	if err != nil {
		return errors.Wrapf(err, "import orders for %q", user)
	}
	lg.Info("imported orders", slog.Int("added", n), slog.Int("total", len(orders)))

	if !demoCart {
		return nil
	}

	engine := cart.NewEngine(store, nil, cart.WithUser(user))
	if !engine.Items(ctx).Empty() {
		lg.Info("cart already has items, leaving it alone")
		return nil
	}
	demo := product.DemoProducts()
	for i, qty := range []int{3, 2, 1} {
		engine.AddItem(ctx, demo[i], qty)
	}
	lg.Info("seeded demo cart", slog.Int("items", engine.ItemCount(ctx)))
	return nil
}

// readOrders loads an order export written by the storefront or by
// order.Encode. Files ending in .gz are decompressed.
func readOrders(path string) ([]order.Order, error) {
	slog.Info("reading orders file", slog.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if filepath.Ext(path) == ".gz" {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip")
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read")
	}
	decoded, err := order.Decode(data)
	if err != nil {
		return nil, err
	}

	out := make([]order.Order, len(decoded))
	for i, o := range decoded {
		out[i] = *o
	}
	return out, nil
}

func splitUsers(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{""}
	}
	var users []string
	for _, u := range strings.Split(s, ",") {
		if u = strings.TrimSpace(u); u != "" {
			users = append(users, u)
		}
	}
	return users
}
