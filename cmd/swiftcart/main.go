// Command swiftcart manages the device-local cart, checkout and order history
// of the swift grocers storefront.
package main

import (
	"context"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	appkg "github.com/xenking/swift-grocers/internal/app"
	"github.com/xenking/swift-grocers/internal/cli"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := appkg.LoadConfig()
		if err != nil {
			return err
		}

		ctx = zctx.Base(ctx, lg)
		svc, closeStore, err := appkg.Build(ctx, cfg, m.TracerProvider(), m.MeterProvider())
		if err != nil {
			return errors.Wrap(err, "build")
		}
		defer closeStore()

		return cli.New(svc, os.Stdout).Run(ctx, os.Args[1:])
	})
}
