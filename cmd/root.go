/*
Copyright © 2026 pydeploy authors
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var projectDir string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pydeploy",
	Short: "CLI for deploying a Flask app behind gunicorn and nginx on one host",
	Long: `pydeploy provisions a single Python web application onto an Ubuntu host.

It creates the virtualenv, installs pinned dependencies, writes the secrets
file, smoke-tests the application server, installs the systemd unit and the
nginx site, and enables the service at boot.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("🚀 pydeploy is running... Use --help to see available commands.")
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "p", ".", "project directory to deploy")
}
