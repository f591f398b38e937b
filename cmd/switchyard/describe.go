package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/switchyard/internal/cli"
	"github.com/aretw0/switchyard/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe [machine]",
	Short: "Summarize a machine",
	Long:  `Prints the states, transitions, resolvers and reachability of a machine as Markdown.`,
	Args:  cobra.MaximumNArgs(1),
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

		md, err := cli.Describe(ctx, catalog, code, name)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		raw, _ := cmd.Flags().GetBool("raw")
		out := cmd.OutOrStdout()
		if raw || !tui.IsTerminal(out) {
			fmt.Fprint(out, md)
			return
		}
		render, err := tui.NewRenderer()
		if err != nil {
			fmt.Fprint(out, md)
			return
		}
		styled, err := render(md)
		if err != nil {
			fmt.Fprint(out, md)
			return
		}
		fmt.Fprint(out, styled)
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("raw", false, "Print plain Markdown even on a terminal")
}
