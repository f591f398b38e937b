package main

import (
	"fmt"
	"os"

	"github.com/aretw0/switchyard/internal/cli"
	"github.com/aretw0/switchyard/internal/config"
	"github.com/aretw0/switchyard/pkg/registry"
	"github.com/spf13/cobra"
)

// code is the resolver and hook registry of the CLI. It stays empty:
// documents loaded here are data-only, and machines with Go resolvers
// need a program of their own (see examples/traffic-light).
var code = registry.NewRegistry()

var rootCmd = &cobra.Command{
	Use:   "switchyard",
	Short: "Switchyard runs and inspects declarative state machines",
	Long: `Switchyard loads state machines from YAML or Markdown documents,
runs them interactively, renders their transition graphs and serves them over HTTP or MCP.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing the machine documents")
	rootCmd.PersistentFlags().StringP("file", "f", "", "Single machine document (overrides --dir)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().String("env-file", "", "Dotenv file to load (default .env)")
}

// settings merges the environment configuration with the flags of cmd.
// Flags given explicitly win.
func settings(cmd *cobra.Command) (config.Config, cli.Source) {
	var files []string
	if f, _ := cmd.Flags().GetString("env-file"); f != "" {
		files = append(files, f)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if cmd.Flags().Changed("dir") {
		cfg.Dir, _ = cmd.Flags().GetString("dir")
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.LogLevel = "debug"
	}
	file, _ := cmd.Flags().GetString("file")
	return cfg, cli.Source{Dir: cfg.Dir, File: file}
}

func machineArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
