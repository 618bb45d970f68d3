package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"unicode/utf8"
)

// Sink receives validated path messages from the accept loop. A rejection
// means the consumer is gone and is answered with ERR.
type Sink interface {
	Send(path string) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(path string) error

func (f SinkFunc) Send(path string) error {
	return f(path)
}

// Serve accepts delivery connections until context cancellation or listener
// close. Connections are handled one at a time, fully, so messages reach the
// sink in accept order. Protocol violations are answered with ERR and never
// stop the loop.
func Serve(ctx context.Context, listener net.Listener, sink Sink, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept delivery connection: %w", err)
		}

		handleDelivery(conn, sink, logger)
	}
}

func handleDelivery(conn net.Conn, sink Sink, logger *slog.Logger) {
	defer conn.Close()

	path, err := readPayload(conn)
	if err != nil {
		logger.Warn("rejected delivery", "error", err.Error())
		_, _ = conn.Write([]byte(AckErr))
		return
	}

	if err := sink.Send(path); err != nil {
		logger.Error("dispatch send failed", "path", path, "error", err.Error())
		_, _ = conn.Write([]byte(AckErr))
		return
	}

	logger.Info("accepted delivery", "path", path)
	_, _ = conn.Write([]byte(AckOK))
}

// readPayload reads one path message up to EOF and validates it. The extra
// sentinel byte past MaxPayload makes oversize detectable without reading an
// unbounded stream.
func readPayload(conn net.Conn) (string, error) {
	data, err := io.ReadAll(io.LimitReader(conn, MaxPayload+1))
	if err != nil {
		return "", fmt.Errorf("read payload: %w", err)
	}
	if len(data) == 0 {
		return "", errors.New("empty payload")
	}
	if len(data) > MaxPayload {
		return "", fmt.Errorf("payload exceeds %d byte cap", MaxPayload)
	}
	if !utf8.Valid(data) {
		return "", errors.New("payload is not valid UTF-8")
	}

	path := string(data)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("target path: %w", err)
	}
	return path, nil
}
