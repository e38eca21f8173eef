package smoketest

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pydeploy/internal/config"
)

func fastOptions() Options {
	return Options{
		Timeout:    500 * time.Millisecond,
		Interval:   20 * time.Millisecond,
		GraceDelay: 10 * time.Millisecond,
	}
}

func testConfig(t *testing.T) *config.DeploymentConfig {
	t.Helper()
	dir := t.TempDir()
	return &config.DeploymentConfig{
		ProjectDir: dir,
		SocketPath: filepath.Join(dir, "app.sock"),
		VenvDir:    filepath.Join(dir, "venv"),
		WSGIApp:    "app:app",
	}
}

// fakeLauncher simulates a server process. Depending on mode it binds a real
// unix socket after a short delay, writes a plain file, or does nothing.
type fakeLauncher struct {
	mode       string // "bind", "file", "dead"
	delay      time.Duration
	terminated bool
	mu         sync.Mutex
	listener   net.Listener
}

func (f *fakeLauncher) Start(ctx context.Context, dir string, stream io.Writer, name string, args ...string) (Process, error) {
	var socket string
	for i, a := range args {
		if a == "--bind" && i+1 < len(args) {
			socket = strings.TrimPrefix(args[i+1], "unix:")
		}
	}

	switch f.mode {
	case "bind":
		go func() {
			time.Sleep(f.delay)
			l, err := net.Listen("unix", socket)
			if err != nil {
				return
			}
			f.mu.Lock()
			f.listener = l
			f.mu.Unlock()
		}()
	case "file":
		go func() {
			time.Sleep(f.delay)
			os.WriteFile(socket, []byte("not a socket"), 0o644)
		}()
	}
	return f, nil
}

func (f *fakeLauncher) Terminate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terminated = true
	if f.listener != nil {
		f.listener.Close()
	}
	return nil
}

func TestProbe_SocketAppears(t *testing.T) {
	cfg := testConfig(t)
	launcher := &fakeLauncher{mode: "bind", delay: 50 * time.Millisecond}

	err := NewTester(launcher, fastOptions()).Probe(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.True(t, launcher.terminated, "test server is terminated after success")
	_, statErr := os.Stat(cfg.SocketPath)
	assert.True(t, os.IsNotExist(statErr), "socket artifact is removed after success")
}

func TestProbe_SocketNeverAppears(t *testing.T) {
	cfg := testConfig(t)
	launcher := &fakeLauncher{mode: "dead"}

	err := NewTester(launcher, fastOptions()).Probe(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSmokeTestFailed)

	assert.True(t, launcher.terminated, "test server is still torn down on failure")
	_, statErr := os.Stat(cfg.SocketPath)
	assert.True(t, os.IsNotExist(statErr), "no artifact leaks on failure")
}

func TestProbe_WrongKindOfArtifact(t *testing.T) {
	cfg := testConfig(t)
	launcher := &fakeLauncher{mode: "file", delay: 30 * time.Millisecond}

	err := NewTester(launcher, fastOptions()).Probe(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSmokeTestFailed)
	assert.Contains(t, err.Error(), "not a socket")

	_, statErr := os.Stat(cfg.SocketPath)
	assert.True(t, os.IsNotExist(statErr), "non-socket artifact is cleaned up")
}

func TestProbe_InterruptNamesCancellation(t *testing.T) {
	cfg := testConfig(t)
	launcher := &fakeLauncher{mode: "dead"}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := NewTester(launcher, fastOptions()).Probe(ctx, cfg, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled, "an interrupt reports the cancellation, not a timeout")
	assert.NotErrorIs(t, err, ErrSmokeTestFailed)

	assert.True(t, launcher.terminated, "test server is torn down on interrupt")
	_, statErr := os.Stat(cfg.SocketPath)
	assert.True(t, os.IsNotExist(statErr), "no artifact leaks on interrupt")
}

func TestProbe_RemovesStaleSocket(t *testing.T) {
	cfg := testConfig(t)
	// Leave a stale plain-file artifact from a hypothetical earlier run.
	require.NoError(t, os.WriteFile(cfg.SocketPath, []byte("stale"), 0o644))

	launcher := &fakeLauncher{mode: "bind", delay: 30 * time.Millisecond}
	err := NewTester(launcher, fastOptions()).Probe(context.Background(), cfg, nil)
	require.NoError(t, err)
}
