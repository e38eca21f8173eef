package perms

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/user"
	"time"

	"github.com/fatih/color"

	"pydeploy/internal/config"
	"pydeploy/internal/logger"
	"pydeploy/internal/runner"
)

var permLogs = logger.PackageLogger("🔐 PERMS")

// Reconciler hands the transport socket over to the proxy's runtime user
// once the supervised service has recreated it.
type Reconciler struct {
	runner runner.Runner
	wait   time.Duration
}

func NewReconciler(r runner.Runner) *Reconciler {
	return &Reconciler{runner: r, wait: 5 * time.Second}
}

// Reconcile is best-effort by design: a host without the proxy user gets a
// warning and a nil return, so the deployment still succeeds and the
// operator fixes group access manually.
func (rc *Reconciler) Reconcile(ctx context.Context, cfg *config.DeploymentConfig, stream io.Writer) error {
	if _, err := user.Lookup(cfg.Proxy.User); err != nil {
		permLogs.Warn("proxy user %q not found on host, skipping socket permissions (manual follow-up needed)", cfg.Proxy.User)
		runner.LogToStream(stream, "! Proxy user missing, socket permissions left as-is", color.FgYellow)
		return nil
	}

	if err := rc.waitForSocket(ctx, cfg.SocketPath); err != nil {
		return err
	}

	if _, err := rc.runner.Run(ctx, stream, "sudo", "chgrp", cfg.Proxy.User, cfg.SocketPath); err != nil {
		return fmt.Errorf("changing socket group: %w", err)
	}
	if _, err := rc.runner.Run(ctx, stream, "sudo", "chmod", "g+rw", cfg.SocketPath); err != nil {
		return fmt.Errorf("changing socket mode: %w", err)
	}

	runner.LogToStream(stream, "✓ Socket reachable by proxy", color.FgGreen)
	permLogs.Success("socket %s handed to group %s", cfg.SocketPath, cfg.Proxy.User)
	return nil
}

// waitForSocket gives the restarted service a moment to recreate its socket
// before ownership is adjusted.
func (rc *Reconciler) waitForSocket(ctx context.Context, path string) error {
	deadline := time.Now().Add(rc.wait)
	for {
		if info, err := os.Stat(path); err == nil && info.Mode()&os.ModeSocket != 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("socket %s not recreated by service within %s", path, rc.wait)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}
