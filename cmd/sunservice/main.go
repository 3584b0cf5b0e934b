package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ry111/foundation/internal/sunservice"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("sunservice failed: %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	cfg := sunservice.ConfigFromEnv()
	server, err := sunservice.NewServer(cfg)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.GracefulShutdownTimeout,
	)
	defer cancel()
	return server.Stop(shutdownCtx)
}
