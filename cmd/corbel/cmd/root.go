// Package cmd provides the CLI commands for corbel.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "corbel",
	Short: "Corbel - HTTP request abstraction layer",
	Long: `Corbel wraps raw HTTP request/response exchanges behind a uniform input
API: query string, parsed body, route parameters, uploaded files, headers,
cookies, content negotiation, proxy-aware address resolution, and flash data
exchanged with a session across a redirect.

Quick start:
  1. Put YAML config files in ./config (app.yaml, http.yaml, session.yaml)
  2. Run: corbel serve

Configuration:
  Each file under the config directory contributes a top-level namespace,
  so config/http.yaml's trustProxy key is read as http.trustProxy.

Commands:
  serve       Start the demo server
  version     Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "./config", "config directory")
}
