package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/indigo-web/fileserver"
	"github.com/indigo-web/fileserver/internal/logger"
	"github.com/spf13/pflag"
)

func main() {
	cfg, err := parseArgs(os.Args[1:], os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, pflag.ErrHelp):
		return
	default:
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	logger.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := fileserver.New(cfg)
	go func() {
		<-ctx.Done()
		logger.Info("received shutdown signal, stopping")
		app.GracefulStop()
	}()

	if err = app.Serve(); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
