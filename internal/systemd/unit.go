package systemd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/fatih/color"

	"pydeploy/internal/config"
	"pydeploy/internal/logger"
	"pydeploy/internal/runner"
)

var unitLogs = logger.PackageLogger("⚙️ SYSTEMD")

const unitTemplate = `[Unit]
Description=Gunicorn instance serving {{.ServiceName}}
After=network.target

[Service]
User={{.Supervision.User}}
Group={{.Supervision.Group}}
WorkingDirectory={{.ProjectDir}}
EnvironmentFile={{.EnvFile}}
RuntimeDirectory={{.ServiceName}}
ExecStart={{.GunicornPath}} --workers {{.Supervision.Workers}} --timeout {{.Supervision.TimeoutSec}} --bind unix:{{.SocketPath}} {{.WSGIApp}}
Restart=on-failure
RestartSec={{.Supervision.RestartDelaySec}}
LimitNOFILE={{.Supervision.LimitNOFILE}}

[Install]
WantedBy=multi-user.target
`

var unitTmpl = template.Must(template.New("unit").Parse(unitTemplate))

// Render produces the supervision unit text for the deployment. It is a pure
// function of the config so tests can assert on directives without a host.
func Render(cfg *config.DeploymentConfig) (string, error) {
	var buf bytes.Buffer
	if err := unitTmpl.Execute(&buf, templateData(cfg)); err != nil {
		return "", fmt.Errorf("rendering unit: %w", err)
	}
	return buf.String(), nil
}

type unitData struct {
	*config.DeploymentConfig
	GunicornPath string
}

func templateData(cfg *config.DeploymentConfig) unitData {
	return unitData{DeploymentConfig: cfg, GunicornPath: cfg.GunicornPath()}
}

// Installer writes the unit to the system location and brings the service up.
type Installer struct {
	runner runner.Runner
}

func NewInstaller(r runner.Runner) *Installer {
	return &Installer{runner: r}
}

// Install renders the unit, installs it at /etc/systemd/system, reloads the
// supervisor config, restarts the unit, and confirms it reached the active
// state. Diagnostics on failure point at the journal rather than guessing.
func (in *Installer) Install(ctx context.Context, cfg *config.DeploymentConfig, stream io.Writer) error {
	rendered, err := Render(cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSupervisionInstall, err)
	}

	tmp, err := writeStaging(cfg.ServiceName+".service", rendered)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSupervisionInstall, err)
	}
	defer os.Remove(tmp)

	runner.LogToStream(stream, "Installing supervision unit...", color.FgYellow)
	if _, err := in.runner.Run(ctx, stream, "sudo", "install", "-m", "0644", tmp, cfg.UnitPath()); err != nil {
		return fmt.Errorf("%w: installing %s: %v", ErrSupervisionInstall, cfg.UnitPath(), err)
	}
	if _, err := in.runner.Run(ctx, stream, "sudo", "systemctl", "daemon-reload"); err != nil {
		return fmt.Errorf("%w: daemon-reload: %v", ErrSupervisionInstall, err)
	}
	if _, err := in.runner.Run(ctx, stream, "sudo", "systemctl", "restart", cfg.ServiceName); err != nil {
		return fmt.Errorf("%w: restarting %s, see 'journalctl -u %s': %v",
			ErrServiceStart, cfg.ServiceName, cfg.ServiceName, err)
	}

	state, _ := in.runner.Run(ctx, nil, "systemctl", "is-active", cfg.ServiceName)
	if strings.TrimSpace(state) != "active" {
		return fmt.Errorf("%w: %s is %q, see 'journalctl -u %s'",
			ErrServiceStart, cfg.ServiceName, strings.TrimSpace(state), cfg.ServiceName)
	}

	runner.LogToStream(stream, "✓ Service is active", color.FgGreen)
	unitLogs.Success("unit %s installed and running", cfg.ServiceName)
	return nil
}

// writeStaging puts the rendered artifact in a temp file so a privileged
// install command can move it into place.
func writeStaging(name, content string) (string, error) {
	tmp, err := os.CreateTemp("", name+"-*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
