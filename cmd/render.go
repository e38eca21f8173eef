package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pydeploy/internal/config"
	"pydeploy/internal/nginx"
	"pydeploy/internal/systemd"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Preview the generated unit, site, and resolved parameters without touching the host",
	RunE:  runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := config.ResolveForInspection(projectDir)
	if err != nil {
		return fmt.Errorf("resolving deployment parameters: %w", err)
	}

	unit, err := systemd.Render(cfg)
	if err != nil {
		return err
	}
	site, err := nginx.Render(cfg)
	if err != nil {
		return err
	}

	heading := color.New(color.FgCyan, color.Bold)
	heading.Printf("# %s\n", cfg.UnitPath())
	fmt.Println(unit)
	heading.Printf("# %s\n", cfg.SiteAvailablePath())
	fmt.Println(site)

	heading.Println("# resolved parameters")
	summary, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(summary))
	return nil
}
