package app

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mrowan/lumava/internal/dispatch"
	"github.com/mrowan/lumava/internal/ipc"
)

type runnerPaths struct {
	runtimeDir string
	socketPath string
}

func setupRunnerEnv(t *testing.T) runnerPaths {
	t.Helper()

	t.Setenv("XDG_STATE_HOME", t.TempDir())
	runtimeDir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", runtimeDir)
	t.Setenv("LUMAVA_SOCKET", "")

	return runnerPaths{
		runtimeDir: runtimeDir,
		socketPath: filepath.Join(runtimeDir, "lumava.sock"),
	}
}

func writePNG(t *testing.T, path string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 12, 9))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func startPathServer(t *testing.T, socketPath string, sink ipc.Sink) func() {
	t.Helper()

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ipc.Serve(ctx, listener, sink, nil)
	}()

	return func() {
		cancel()
		require.NoError(t, <-done)
	}
}

func TestExecuteHelp(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"--help"}, &stdout, &stderr)
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "Usage:")
	require.Empty(t, stderr.String())
}

func TestExecuteVersion(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"--version"}, &stdout, &stderr)
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "lumava")
	require.Empty(t, stderr.String())
}

func TestExecuteMissingArgumentIsUsageError(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), nil, &stdout, &stderr)
	require.Equal(t, 2, exitCode)
	require.Contains(t, stderr.String(), "missing image path")
	require.Contains(t, stderr.String(), "Usage:")
}

func TestExecuteMissingTargetExitsBeforeTransport(t *testing.T) {
	paths := setupRunnerEnv(t)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	missing := filepath.Join(paths.runtimeDir, "missing.png")
	exitCode := runner.Execute(context.Background(), []string{missing})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "does not exist")

	// No transport work happened: the socket was never created.
	_, statErr := os.Stat(paths.socketPath)
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestRunnerDeliversToRunningInstance(t *testing.T) {
	paths := setupRunnerEnv(t)

	target := filepath.Join(t.TempDir(), "a.png")
	writePNG(t, target)

	queue := dispatch.New()
	stop := startPathServer(t, paths.socketPath, queue)
	defer stop()

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{target})
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "image sent to running instance")
	require.Empty(t, stderr.String())

	got, ok := queue.TryReceive()
	require.True(t, ok)
	require.Equal(t, target, got)
}

func TestRunnerReportsRejectedDelivery(t *testing.T) {
	paths := setupRunnerEnv(t)

	target := filepath.Join(t.TempDir(), "a.png")
	writePNG(t, target)

	// A closed queue makes the server answer ERR for every delivery.
	queue := dispatch.New()
	queue.Close()
	stop := startPathServer(t, paths.socketPath, queue)
	defer stop()

	var stdout bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &bytes.Buffer{}}

	exitCode := runner.Execute(context.Background(), []string{target})
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "rejected")
}

func TestRunnerBecomesServerAndAcceptsDeliveries(t *testing.T) {
	paths := setupRunnerEnv(t)

	first := filepath.Join(t.TempDir(), "first.png")
	writePNG(t, first)
	second := filepath.Join(t.TempDir(), "second.png")
	writePNG(t, second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := Runner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	exitCh := make(chan int, 1)
	go func() {
		exitCh <- runner.Execute(ctx, []string{first})
	}()

	require.Eventually(t, func() bool {
		delivery, err := ipc.Deliver(context.Background(), paths.socketPath, second, 200*time.Millisecond)
		return err == nil && delivery.Outcome == ipc.OutcomeDelivered && delivery.Ack == ipc.AckOK
	}, 3*time.Second, 25*time.Millisecond)

	cancel()
	require.Equal(t, 0, <-exitCh)

	// Socket cleanup completed before exit.
	_, statErr := os.Stat(paths.socketPath)
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestCanonicalTargetResolvesSymlinksAndRequiresExistence(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real.png")
	writePNG(t, target)

	link := filepath.Join(dir, "link.png")
	require.NoError(t, os.Symlink(target, link))

	resolved, err := canonicalTarget(link)
	require.NoError(t, err)

	wantTarget, evalErr := filepath.EvalSymlinks(target)
	require.NoError(t, evalErr)
	require.Equal(t, wantTarget, resolved)

	_, err = canonicalTarget(filepath.Join(dir, "missing.png"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
