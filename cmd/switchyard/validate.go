package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/switchyard/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [machine...]",
	Short: "Check machines for consistency",
	Long: `Compiles every machine (or the named ones) and crawls its graph from the initial
state, reporting configuration errors, unreachable states and dead ends.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		_, src := settings(cmd)
		catalog, err := cli.OpenCatalog(src)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		results, err := cli.Validate(ctx, catalog, code, args...)
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}

		failed := 0
		for _, res := range results {
			switch {
			case res.Err != nil:
				failed++
				fmt.Printf("✗ %s: %v\n", res.Machine, res.Err)
			case !res.Report.OK():
				failed++
				var problems []string
				if len(res.Report.Unreachable) > 0 {
					problems = append(problems, "unreachable: "+strings.Join(res.Report.Unreachable, ", "))
				}
				if len(res.Report.DeadEnds) > 0 {
					problems = append(problems, "dead ends: "+strings.Join(res.Report.DeadEnds, ", "))
				}
				fmt.Printf("✗ %s: %s\n", res.Machine, strings.Join(problems, "; "))
			default:
				fmt.Printf("✓ %s\n", res.Machine)
			}
		}
		if failed > 0 {
			fmt.Printf("Validation failed: %d of %d machines\n", failed, len(results))
			os.Exit(1)
		}
		fmt.Println("All machines are valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
