package nginx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/fatih/color"

	"pydeploy/internal/config"
	"pydeploy/internal/logger"
	"pydeploy/internal/runner"
)

var nginxLogs = logger.PackageLogger("🌐 NGINX")

const siteTemplate = `server {
    listen {{.Proxy.ListenPort}};
    server_name {{.Proxy.ServerName}};

    location / {
        proxy_set_header Host $host;
        proxy_set_header X-Real-IP $remote_addr;
        proxy_set_header X-Forwarded-For $proxy_add_x_forwarded_for;
        proxy_set_header X-Forwarded-Proto $scheme;
        proxy_pass http://unix:{{.SocketPath}};
    }

    location /static/ {
        alias {{.StaticRoot}}/;
        expires 30d;
        add_header Cache-Control "public";
    }

    location = {{.Proxy.HealthPath}} {
        add_header Content-Type text/plain;
        return 200 'OK';
    }
}
`

var siteTmpl = template.Must(template.New("site").Parse(siteTemplate))

// Render produces the reverse-proxy site text for the deployment.
func Render(cfg *config.DeploymentConfig) (string, error) {
	var buf bytes.Buffer
	if err := siteTmpl.Execute(&buf, siteData(cfg)); err != nil {
		return "", fmt.Errorf("rendering site: %w", err)
	}
	return buf.String(), nil
}

type siteView struct {
	*config.DeploymentConfig
	StaticRoot string
}

func siteData(cfg *config.DeploymentConfig) siteView {
	return siteView{DeploymentConfig: cfg, StaticRoot: cfg.StaticRoot()}
}

// Installer writes the site, links it into the enabled set, and reloads the
// proxy only after its own syntax check passes.
type Installer struct {
	runner runner.Runner
}

func NewInstaller(r runner.Runner) *Installer {
	return &Installer{runner: r}
}

// Install never reloads the live proxy on an unvalidated config: nginx -t
// must succeed before the reload command runs.
func (in *Installer) Install(ctx context.Context, cfg *config.DeploymentConfig, stream io.Writer) error {
	rendered, err := Render(cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProxySiteInstall, err)
	}

	tmp, err := os.CreateTemp("", cfg.ServiceName+"-site-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProxySiteInstall, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(rendered); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrProxySiteInstall, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrProxySiteInstall, err)
	}

	runner.LogToStream(stream, "Installing proxy site...", color.FgYellow)
	if _, err := in.runner.Run(ctx, stream, "sudo", "install", "-m", "0644", tmp.Name(), cfg.SiteAvailablePath()); err != nil {
		return fmt.Errorf("%w: installing %s: %v", ErrProxySiteInstall, cfg.SiteAvailablePath(), err)
	}
	if _, err := in.runner.Run(ctx, stream, "sudo", "ln", "-sf", cfg.SiteAvailablePath(), cfg.SiteEnabledPath()); err != nil {
		return fmt.Errorf("%w: enabling site: %v", ErrProxySiteInstall, err)
	}

	if out, err := in.runner.Run(ctx, stream, "sudo", "nginx", "-t"); err != nil {
		nginxLogs.Error("config validation failed, proxy NOT reloaded:\n%s", out)
		return fmt.Errorf("%w: see /var/log/nginx/error.log: %v", ErrProxyConfigInvalid, err)
	}

	if _, err := in.runner.Run(ctx, stream, "sudo", "systemctl", "reload", "nginx"); err != nil {
		return fmt.Errorf("reloading nginx: %w", err)
	}

	runner.LogToStream(stream, "✓ Proxy site enabled", color.FgGreen)
	nginxLogs.Success("site %s installed and proxy reloaded", cfg.ServiceName)
	return nil
}
