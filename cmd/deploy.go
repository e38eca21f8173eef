package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pydeploy/internal/config"
	"pydeploy/internal/logger"
	"pydeploy/internal/pipeline"
	"pydeploy/internal/runner"
	"pydeploy/internal/smoketest"
)

var deployLogs = logger.PackageLogger("🚀 DEPLOY")

var deployCmd = &cobra.Command{
	Use:   "deploy [GEMINI_API_KEY]",
	Short: "Run the full deployment pipeline against this host",
	Long: `Deploy runs every provisioning step in order and stops at the first
failure. There is no rollback; fix the reported step and re-run.

The primary secret may be passed as the positional argument or through the
GEMINI_API_KEY environment variable.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDeploy,
}

func init() {
	rootCmd.AddCommand(deployCmd)
}

func runDeploy(cmd *cobra.Command, args []string) error {
	var primary string
	if len(args) == 1 {
		primary = args[0]
	}

	cfg, err := config.Resolve(projectDir, primary)
	if err != nil {
		return fmt.Errorf("resolving deployment parameters: %w", err)
	}
	deployLogs.Info("deploying %s from %s", cfg.ServiceName, cfg.ProjectDir)

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Minute)
	defer cancel()

	d := pipeline.NewDeployment(cfg, runner.NewExecRunner(), smoketest.NewExecLauncher(), os.Stdout)
	if err := d.Run(ctx); err != nil {
		return err
	}

	deployLogs.Success("%s is live behind the proxy", cfg.ServiceName)
	return nil
}
