// Command server runs the matching engine's TCP front end.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"matchcore/internal/engine"
	"matchcore/internal/net"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	eng := engine.New()
	srv := net.New("0.0.0.0", 9001, eng)

	go srv.Run(ctx)
	<-ctx.Done()
}
