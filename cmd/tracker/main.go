package main

import (
	"context"
	"time"

	"github.com/niksmo/price-tracker/config"
	"github.com/niksmo/price-tracker/internal/app"
	"github.com/niksmo/price-tracker/pkg/sigctx"
)

const closeTimeout = 5 * time.Second

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()
	cfg.Print()

	tracker := app.New(sigCtx, cfg)

	tracker.Run(closeApp)

	<-sigCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	tracker.Close(ctx)
}
