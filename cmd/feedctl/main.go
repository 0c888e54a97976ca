// Command feedctl drives the feed engine against the configured record store.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"socialfeed/internal/config"
	"socialfeed/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(&app{
		loadConfig: config.LoadConfig,
		newServer:  server.NewServer,
	})
	if err := root.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}
