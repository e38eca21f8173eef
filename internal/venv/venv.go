package venv

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"pydeploy/internal/config"
	"pydeploy/internal/logger"
	"pydeploy/internal/runner"
)

var venvLogs = logger.PackageLogger("🐍 VENV")

// pinnedRequirements is the fixed dependency manifest for the application,
// matching what app.py imports at startup.
var pinnedRequirements = []string{
	"flask==3.0.3",
	"requests==2.32.3",
	"python-dotenv==1.0.1",
	"google-genai==1.16.1",
}

// serverPackage is the one extra package installed on top of the manifest.
const serverPackage = "gunicorn==22.0.0"

// Provisioner creates or reuses the project virtualenv and installs the
// pinned dependency set into it.
type Provisioner struct {
	runner runner.Runner
}

func NewProvisioner(r runner.Runner) *Provisioner {
	return &Provisioner{runner: r}
}

// Ensure is idempotent: an existing virtualenv is reused, never recreated.
func (p *Provisioner) Ensure(ctx context.Context, cfg *config.DeploymentConfig, stream io.Writer) error {
	python := filepath.Join(cfg.VenvDir, "bin", "python")
	if _, err := os.Stat(python); err == nil {
		venvLogs.Info("virtualenv already exists at %s, reusing", cfg.VenvDir)
		runner.LogToStream(stream, "✓ Virtualenv already present", color.FgGreen)
	} else {
		runner.LogToStream(stream, "Creating virtualenv...", color.FgYellow)
		if _, err := p.runner.Run(ctx, stream, "python3", "-m", "venv", cfg.VenvDir); err != nil {
			return fmt.Errorf("%w: creating virtualenv: %v", ErrDependencyInstall, err)
		}
		venvLogs.Success("virtualenv created at %s", cfg.VenvDir)
	}

	pip := filepath.Join(cfg.VenvDir, "bin", "pip")
	runner.LogToStream(stream, "Installing dependencies...", color.FgYellow)

	if _, err := p.runner.Run(ctx, stream, pip, "install", "--upgrade", "pip"); err != nil {
		return fmt.Errorf("%w: upgrading pip: %v", ErrDependencyInstall, err)
	}

	args := append([]string{"install"}, pinnedRequirements...)
	args = append(args, serverPackage)
	if _, err := p.runner.Run(ctx, stream, pip, args...); err != nil {
		return fmt.Errorf("%w: %v", ErrDependencyInstall, err)
	}

	runner.LogToStream(stream, "✓ Dependencies installed", color.FgGreen)
	venvLogs.Success("dependency manifest installed")
	return nil
}
