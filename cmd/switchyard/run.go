package main

import (
	"fmt"
	"os"

	"github.com/aretw0/switchyard/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [machine]",
	Short: "Run a machine interactively",
	Long: `Starts a machine and advances it once per input line. Fields of the form
key=value become named arguments, other fields positional ones. Type exit or quit to stop.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, src := settings(cmd)
		headless, _ := cmd.Flags().GetBool("headless")
		watchMode, _ := cmd.Flags().GetBool("watch")
		quiet, _ := cmd.Flags().GetBool("quiet")
		jsonMode, _ := cmd.Flags().GetBool("json")
		headless = headless || jsonMode

		if watchMode && headless {
			fmt.Println("Error: --watch and --headless cannot be used together.")
			os.Exit(1)
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		err := cli.Execute(sigCtx, cli.RunOptions{
			Source:        src,
			Machine:       machineArg(args),
			Headless:      headless,
			JSON:          jsonMode,
			Watch:         watchMode,
			Debug:         cfg.LogLevel == "debug",
			Quiet:         quiet,
			MaxChainDepth: cfg.MaxChainDepth,
			Code:          code,
		}, cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if sig := sigCtx.Signal(); sig != nil && !quiet {
			fmt.Printf("\n>>> Interrupted (%v).\n", sig)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("headless", false, "Run in headless mode (no prompts, strict IO)")
	runCmd.Flags().Bool("json", false, "Exchange JSON lines on stdin/stdout (implies --headless)")
	runCmd.Flags().BoolP("watch", "w", false, "Run in development mode with hot-reload")
	runCmd.Flags().BoolP("quiet", "q", false, "Suppress the banner and system messages")
}
