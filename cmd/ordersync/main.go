package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	"github.com/Zaqui712/B-FO/internal/di"
	"github.com/Zaqui712/B-FO/internal/logger"
)

// stopTimeout bounds the whole fx stop sequence, which includes the
// configured HTTP shutdown timeout and the dispatch drain.
const stopTimeout = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	app := fx.New(
		fx.Provide(func() context.Context { return ctx }),
		fx.WithLogger(logger.EventLogger),
		di.Module(),
	)

	err := run(ctx, app, stopTimeout)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ordersync: %v\n", err)
		os.Exit(1)
	}
}
