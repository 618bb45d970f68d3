// Package app wires the process lifecycle: argument handling, the
// deliver-or-become-server decision, and the render tick loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mrowan/lumava/internal/cli"
	"github.com/mrowan/lumava/internal/config"
	"github.com/mrowan/lumava/internal/dispatch"
	"github.com/mrowan/lumava/internal/ipc"
	"github.com/mrowan/lumava/internal/logging"
	"github.com/mrowan/lumava/internal/version"
	"github.com/mrowan/lumava/internal/viewer"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	// Presenter is the GUI-toolkit binding. Nil keeps the viewer headless.
	Presenter viewer.Presenter
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("lumava"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("lumava"))
		return 0
	}

	if parsed.ShowVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfg := config.Load(parsed.SocketPath)

	target, err := canonicalTarget(parsed.TargetPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: image path does not exist: %s\n", parsed.TargetPath)
		logger.Warn("target rejected", "path", parsed.TargetPath, "error", err.Error())
		return 1
	}

	logger.Info("command start",
		"target", target,
		"socket", cfg.SocketPath,
		"log", logRuntime.Path,
	)

	delivery, err := ipc.Deliver(ctx, cfg.SocketPath, target, cfg.DeliverTimeout)
	switch delivery.Outcome {
	case ipc.OutcomeDelivered:
		r.reportDelivery(logger, delivery)
		return 0
	case ipc.OutcomeNoServer:
		return r.runServer(ctx, cfg, target, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("delivery failed", "error", err.Error())
		return 1
	}
}

// runServer binds the rendezvous socket and runs the render loop until the
// context is cancelled. Losing the bind race after observing "no server"
// falls back to one more client delivery so the payload is never orphaned.
func (r Runner) runServer(ctx context.Context, cfg config.Config, target string, logger *slog.Logger) int {
	listener, err := ipc.Acquire(ctx, cfg.SocketPath, cfg.ProbeTimeout)
	if errors.Is(err, ipc.ErrAlreadyRunning) {
		delivery, deliverErr := ipc.Deliver(ctx, cfg.SocketPath, target, cfg.DeliverTimeout)
		if deliverErr == nil && delivery.Outcome == ipc.OutcomeDelivered {
			logger.Info("delivered after lost bind race", "target", target)
			r.reportDelivery(logger, delivery)
			return 0
		}
		fmt.Fprintf(r.Stderr, "error: another instance owns the socket but refused delivery\n")
		logger.Error("redelivery after lost bind race failed", "error", fmt.Sprint(deliverErr))
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("bind failed", "socket", cfg.SocketPath, "error", err.Error())
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = ipc.Cleanup(cfg.SocketPath)
	}()

	queue := dispatch.New()
	defer queue.Close()

	serveCtx, serveCancel := context.WithCancel(ctx)
	defer serveCancel()

	serveErrCh := make(chan error, 1)
	go func() {
		serveErrCh <- ipc.Serve(serveCtx, listener, queue, logger)
	}()

	v := viewer.New(logger, queue, nil, r.Presenter, cfg.Window)
	v.ShowPath(target, time.Now())

	ticker := time.NewTicker(cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			serveCancel()
			if serveErr := <-serveErrCh; serveErr != nil {
				fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", serveErr)
				logger.Error("ipc server failed", "error", serveErr.Error())
				return 1
			}
			logger.Info("shutdown complete", "socket", cfg.SocketPath)
			return 0
		case serveErr := <-serveErrCh:
			if serveErr != nil {
				fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", serveErr)
				logger.Error("ipc server failed", "error", serveErr.Error())
				return 1
			}
			return 0
		case now := <-ticker.C:
			v.Tick(now)
		}
	}
}

func (r Runner) reportDelivery(logger *slog.Logger, delivery ipc.Delivery) {
	switch delivery.Ack {
	case ipc.AckOK:
		fmt.Fprintln(r.Stdout, "image sent to running instance")
		logger.Info("delivered to running instance", "ack", string(delivery.Ack))
	case "":
		fmt.Fprintln(r.Stdout, "image sent to running instance (no acknowledgment)")
		logger.Warn("no acknowledgment from running instance")
	default:
		fmt.Fprintln(r.Stdout, "running instance rejected the image path")
		logger.Warn("running instance rejected delivery", "ack", string(delivery.Ack))
	}
}

// canonicalTarget resolves the argument to an absolute, symlink-free path
// and requires it to exist. Failures here exit before any transport work.
func canonicalTarget(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	if _, err := os.Stat(abs); err != nil {
		return "", err
	}
	return abs, nil
}
