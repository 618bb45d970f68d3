// Package main provides the lumava viewer process entrypoint.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrowan/lumava/internal/app"
)

// main wires process signal handling to the application runner. Socket
// cleanup on SIGINT/SIGTERM happens inside app.Execute before it returns.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exitCode := app.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(exitCode)
}
