package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrAlreadyRunning signals that a live viewer instance owns the socket.
var ErrAlreadyRunning = errors.New("another lumava instance owns the socket")

// SocketPath resolves the rendezvous address: LUMAVA_SOCKET override, then
// XDG_RUNTIME_DIR, then a per-user entry under the system temp dir.
func SocketPath() string {
	if explicit := strings.TrimSpace(os.Getenv("LUMAVA_SOCKET")); explicit != "" {
		return explicit
	}
	if runtimeDir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR")); runtimeDir != "" {
		return filepath.Join(runtimeDir, "lumava.sock")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("lumava-%d.sock", os.Getuid()))
}

// Cleanup removes the socket entry. Absence is not an error.
func Cleanup(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove socket %s: %w", path, err)
	}
	return nil
}

// Acquire binds the rendezvous socket, acting as the cross-process mutex.
// When the address is in use it distinguishes a live server (probe answers:
// ErrAlreadyRunning) from a stale entry left by a crashed process (probe
// refused: remove and retry the bind, exactly once).
func Acquire(ctx context.Context, path string, probeTimeout time.Duration) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("ensure runtime socket dir: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		listener, err := net.Listen("unix", path)
		if err == nil {
			_ = os.Chmod(path, 0o600)
			return listener, nil
		}

		if !isAddrInUse(err) {
			return nil, fmt.Errorf("listen unix %s: %w", path, err)
		}

		if probe(path, probeTimeout) {
			return nil, ErrAlreadyRunning
		}

		if removeErr := os.Remove(path); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale socket %s: %w", path, removeErr)
		}
	}

	return nil, fmt.Errorf("failed to acquire socket %s after stale cleanup", path)
}

// probe reports whether anything accepts connections on path.
func probe(path string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("unix", path, timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
