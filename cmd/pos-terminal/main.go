// Command pos-terminal runs the ordering core of a merchpoint POS terminal:
// catalog, cart, and order submission over a durable local store, served to
// the UI shell through a localhost HTTP facade.
package main

import (
	"context"

	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	appkg "github.com/merchpoint/poscart/internal/app"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := appkg.LoadConfig()
		if err != nil {
			return err
		}
		return appkg.Run(ctx, lg, m, cfg)
	})
}
