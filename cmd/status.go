package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pydeploy/internal/config"
	"pydeploy/internal/runner"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the state of the deployed service, proxy, and socket",
	Long: `Status inspects the artifacts a deploy run installs. Useful after an
interrupted run: it shows which pieces are in place so you know whether a
re-run is needed.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	// Status only needs paths and names, not secrets; missing secrets must
	// not block inspection of a half-deployed host.
	cfg, err := config.ResolveForInspection(projectDir)
	if err != nil {
		return fmt.Errorf("resolving deployment parameters: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	r := runner.NewExecRunner()

	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()

	state, _ := r.Run(ctx, nil, "systemctl", "is-active", cfg.ServiceName)
	state = strings.TrimSpace(state)
	if state == "active" {
		fmt.Printf("service %s: %s\n", cfg.ServiceName, ok(state))
	} else {
		fmt.Printf("service %s: %s (journalctl -u %s)\n", cfg.ServiceName, bad(state), cfg.ServiceName)
	}

	enabled, _ := r.Run(ctx, nil, "systemctl", "is-enabled", cfg.ServiceName)
	fmt.Printf("boot persistence: %s\n", strings.TrimSpace(enabled))

	if info, err := os.Stat(cfg.SocketPath); err == nil && info.Mode()&os.ModeSocket != 0 {
		fmt.Printf("socket %s: %s (%s)\n", cfg.SocketPath, ok("present"), info.Mode().Perm())
	} else {
		fmt.Printf("socket %s: %s\n", cfg.SocketPath, bad("absent"))
	}

	if _, err := os.Lstat(cfg.SiteEnabledPath()); err == nil {
		fmt.Printf("proxy site: %s\n", ok("enabled"))
	} else {
		fmt.Printf("proxy site: %s\n", bad("not enabled"))
	}

	if _, err := os.Stat(cfg.EnvFile); err == nil {
		fmt.Printf("secrets file: %s\n", ok("present"))
	} else {
		fmt.Printf("secrets file: %s\n", bad("absent"))
	}

	return nil
}
