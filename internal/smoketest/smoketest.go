package smoketest

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	"pydeploy/internal/config"
	"pydeploy/internal/logger"
	"pydeploy/internal/runner"
)

var smokeLogs = logger.PackageLogger("🔥 SMOKETEST")

// Options bound the probe. The timeout is a heuristic wait: a slow-starting
// service may produce a false negative, and re-running is the remedy.
type Options struct {
	Timeout    time.Duration
	Interval   time.Duration
	GraceDelay time.Duration
}

func DefaultOptions() Options {
	return Options{
		Timeout:    2 * time.Second,
		Interval:   250 * time.Millisecond,
		GraceDelay: 1 * time.Second,
	}
}

// Tester launches the application server briefly to confirm it can bind the
// transport endpoint, then tears everything down. It never leaves the socket
// path behind, pass or fail, so the supervised service later finds it free.
type Tester struct {
	launcher Launcher
	opts     Options
}

func NewTester(launcher Launcher, opts Options) *Tester {
	return &Tester{launcher: launcher, opts: opts}
}

// Probe returns nil when the socket appeared as a live unix socket within
// the timeout, and ErrSmokeTestFailed otherwise. The pipeline must not
// install any supervision or proxy artifact before Probe succeeds.
func (st *Tester) Probe(ctx context.Context, cfg *config.DeploymentConfig, stream io.Writer) error {
	// A previous failed run may have left a stale artifact.
	if err := os.Remove(cfg.SocketPath); err == nil {
		smokeLogs.Warn("removed stale socket artifact %s", cfg.SocketPath)
	}

	runner.LogToStream(stream, "Smoke-testing application server...", color.FgYellow)
	proc, err := st.launcher.Start(ctx, cfg.ProjectDir, stream, cfg.GunicornPath(),
		"--workers", "1", "--bind", "unix:"+cfg.SocketPath, cfg.WSGIApp)
	if err != nil {
		return fmt.Errorf("%w: starting test server: %v", ErrSmokeTestFailed, err)
	}

	bound, kindErr := st.waitForSocket(ctx, cfg.SocketPath)

	// The test server must be down before the endpoint can belong to the
	// supervised service.
	if err := proc.Terminate(); err != nil {
		smokeLogs.Debug("test server already gone: %v", err)
	}
	time.Sleep(st.opts.GraceDelay)
	os.Remove(cfg.SocketPath)

	if kindErr != nil {
		return kindErr
	}
	if !bound {
		runner.LogToStream(stream, "✗ Socket never appeared", color.FgRed)
		return fmt.Errorf("%w: socket %s did not appear within %s",
			ErrSmokeTestFailed, cfg.SocketPath, st.opts.Timeout)
	}

	runner.LogToStream(stream, "✓ Application server binds its socket", color.FgGreen)
	smokeLogs.Success("smoke test passed for %s", cfg.SocketPath)
	return nil
}

func (st *Tester) waitForSocket(ctx context.Context, path string) (bool, error) {
	deadline := time.Now().Add(st.opts.Timeout)
	ticker := time.NewTicker(st.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// An interrupt is not a failed smoke test; name the real cause.
			return false, ctx.Err()
		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				if time.Now().After(deadline) {
					return false, nil
				}
				continue
			}
			if info.Mode()&os.ModeSocket == 0 {
				return false, fmt.Errorf("%w: %s exists but is not a socket",
					ErrSmokeTestFailed, path)
			}
			return true, nil
		}
	}
}
