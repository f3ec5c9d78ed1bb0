package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	// A local .env is optional; real environment variables win.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApp(os.Stdin, os.Stdout)
	if err := app.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "buildxhire:", err)
		os.Exit(1)
	}
}
