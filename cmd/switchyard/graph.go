package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/switchyard/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [machine]",
	Short: "Export the transition graph visualization",
	Long: `Extracts the transition graph of a machine without running any resolver and
prints it as Mermaid (default), Graphviz DOT, JSON or YAML.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		_, src := settings(cmd)
		catalog, err := cli.OpenCatalog(src)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		name, err := cli.ResolveName(ctx, catalog, machineArg(args))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		opts := cli.GraphOptions{}
		opts.Format, _ = cmd.Flags().GetString("format")
		opts.Values, _ = cmd.Flags().GetBool("values")
		opts.NoStart, _ = cmd.Flags().GetBool("no-start")
		opts.MergeEnds, _ = cmd.Flags().GetBool("merge-ends")
		opts.DisconnectVirtual, _ = cmd.Flags().GetBool("disconnect-virtual")
		opts.SourceDirs, _ = cmd.Flags().GetStringSlice("source")

		output, err := cli.RenderGraph(ctx, catalog, code, name, opts)
		if err != nil {
			fmt.Printf("Error rendering graph: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprint(cmd.OutOrStdout(), output)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().StringP("format", "o", "mermaid", "Output format: mermaid, dot, json or yaml")
	graphCmd.Flags().Bool("values", false, "Label states with their values instead of their names")
	graphCmd.Flags().Bool("no-start", false, "Omit the Start node")
	graphCmd.Flags().Bool("merge-ends", false, "Draw a single End node")
	graphCmd.Flags().Bool("disconnect-virtual", false, "Draw a separate node for every edge into a virtual state")
	graphCmd.Flags().StringSlice("source", nil, "Go source files or directories to extract undeclared resolver branches from")
}
