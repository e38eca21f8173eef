package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"pydeploy/internal/config"
	"pydeploy/internal/health"
	"pydeploy/internal/logger"
	"pydeploy/internal/nginx"
	"pydeploy/internal/perms"
	"pydeploy/internal/preflight"
	"pydeploy/internal/runner"
	"pydeploy/internal/secrets"
	"pydeploy/internal/smoketest"
	"pydeploy/internal/systemd"
	"pydeploy/internal/venv"
)

var pipeLogs = logger.PackageLogger("🚀 PIPELINE")

// Phase is one sequential pipeline step. Hint points the operator at the
// step's own diagnostics instead of re-deriving failure reasons here.
type Phase struct {
	Name string
	Hint string
	Run  func(ctx context.Context) error
}

// Pipeline runs phases strictly in order and stops at the first failure.
// There is no rollback: deployment is forward-only and re-running is the
// documented recovery path.
type Pipeline struct {
	phases []Phase
	stream io.Writer
}

func New(phases []Phase, stream io.Writer) *Pipeline {
	return &Pipeline{phases: phases, stream: stream}
}

func (p *Pipeline) Run(ctx context.Context) error {
	for i, phase := range p.phases {
		runner.LogToStream(p.stream,
			fmt.Sprintf("[%d/%d] %s", i+1, len(p.phases), phase.Name), color.FgCyan)
		if err := phase.Run(ctx); err != nil {
			pipeLogs.Error("step %q failed: %v", phase.Name, err)
			if phase.Hint != "" {
				pipeLogs.Info("diagnostics: %s", phase.Hint)
			}
			return fmt.Errorf("step %q: %w", phase.Name, err)
		}
	}
	pipeLogs.Success("deployment complete")
	return nil
}

// Deployment wires the full standard phase list for one DeploymentConfig.
type Deployment struct {
	cfg      *config.DeploymentConfig
	runner   runner.Runner
	launcher smoketest.Launcher
	stream   io.Writer
}

func NewDeployment(cfg *config.DeploymentConfig, r runner.Runner, launcher smoketest.Launcher, stream io.Writer) *Deployment {
	return &Deployment{cfg: cfg, runner: r, launcher: launcher, stream: stream}
}

// Phases is the fixed deployment sequence. Ordering is a correctness
// invariant: nothing is installed before the smoke test verdict is known,
// and enable-at-boot runs only after the socket handoff.
func (d *Deployment) Phases() []Phase {
	cfg := d.cfg
	return []Phase{
		{
			Name: "preflight host checks",
			Run: func(ctx context.Context) error {
				return preflight.NewChecker().Check(cfg)
			},
		},
		{
			Name: "provision virtualenv",
			Hint: "re-run after fixing pip output above; transient network failures are retried by re-running",
			Run: func(ctx context.Context) error {
				return venv.NewProvisioner(d.runner).Ensure(ctx, cfg, d.stream)
			},
		},
		{
			Name: "write secrets file",
			Hint: "check ownership of " + cfg.EnvFile,
			Run: func(ctx context.Context) error {
				return secrets.Write(secrets.BundleFromConfig(cfg))
			},
		},
		{
			Name: "smoke test application server",
			Hint: "run '" + cfg.GunicornPath() + " --bind unix:" + cfg.SocketPath + " " + cfg.WSGIApp + "' by hand to see startup errors",
			Run: func(ctx context.Context) error {
				return smoketest.NewTester(d.launcher, smoketest.DefaultOptions()).Probe(ctx, cfg, d.stream)
			},
		},
		{
			Name: "install supervision unit",
			Hint: "journalctl -u " + cfg.ServiceName,
			Run: func(ctx context.Context) error {
				return systemd.NewInstaller(d.runner).Install(ctx, cfg, d.stream)
			},
		},
		{
			Name: "install proxy site",
			Hint: "/var/log/nginx/error.log",
			Run: func(ctx context.Context) error {
				return nginx.NewInstaller(d.runner).Install(ctx, cfg, d.stream)
			},
		},
		{
			Name: "reconcile socket permissions",
			Run: func(ctx context.Context) error {
				return perms.NewReconciler(d.runner).Reconcile(ctx, cfg, d.stream)
			},
		},
		{
			Name: "enable service at boot",
			Run: func(ctx context.Context) error {
				_, err := d.runner.Run(ctx, d.stream, "sudo", "systemctl", "enable", cfg.ServiceName)
				return err
			},
		},
		{
			Name: "verify health endpoint",
			Hint: "journalctl -u " + cfg.ServiceName + " and /var/log/nginx/error.log",
			Run: func(ctx context.Context) error {
				url := fmt.Sprintf("http://127.0.0.1:%d%s", cfg.Proxy.ListenPort, cfg.Proxy.HealthPath)
				return health.WaitForOK(ctx, url, 15*time.Second)
			},
		},
	}
}

// Run executes the standard deployment sequence.
func (d *Deployment) Run(ctx context.Context) error {
	return New(d.Phases(), d.stream).Run(ctx)
}
