package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solatis/formkeeper/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:       "seed [contact|feedback|signup|all]...",
	Short:     "Load the bundled example forms",
	ValidArgs: append(seed.Names(), "all"),
	Args:      cobra.OnlyValidArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		names := args
		for _, n := range args {
			if n == "all" {
				names = nil
				break
			}
		}
		out := cmd.OutOrStdout()

		if clearForms, _ := cmd.Flags().GetBool("clear"); clearForms {
			removed, err := seed.Clear(ctx, a.svc, names...)
			if err != nil {
				return err
			}
			for _, slug := range removed {
				fmt.Fprintf(out, "removed %s\n", slug)
			}
			return nil
		}

		results, err := seed.Seed(ctx, a.svc, names...)
		for _, r := range results {
			if r.Created {
				fmt.Fprintf(out, "created %s\n", r.Slug)
			} else {
				fmt.Fprintf(out, "skipped %s (already exists)\n", r.Slug)
			}
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().Bool("clear", false, "remove the example forms instead of creating them")
}
