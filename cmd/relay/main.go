package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aethershare/aether/internal/logging"
	"github.com/aethershare/aether/internal/relay"
	"github.com/aethershare/aether/internal/relay/config"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	srv := relay.NewServer(cfg.EndpointAddr, logger)
	if err := srv.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}
