package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/solatis/formkeeper/internal/types"
)

var submissionsCmd = &cobra.Command{
	Use:   "submissions",
	Short: "Inspect stored submissions",
}

var submissionsListCmd = &cobra.Command{
	Use:   "list <slug|id>",
	Short: "List the most recent submissions of a form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		form, err := a.resolveForm(ctx, args[0])
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		list, err := a.svc.ListSubmissions(ctx, form.ID, limit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tVALUES")
		for _, s := range list.Submissions {
			fmt.Fprintf(w, "%s\t%s\t%d\n", s.ID, s.CreatedAt.Format("2006-01-02 15:04:05"), len(s.Data))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d submissions\n", len(list.Submissions), list.Total)
		return nil
	},
}

var submissionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a submission as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		sub, err := a.svc.GetSubmission(ctx, types.SubmissionID(args[0]))
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), sub)
	},
}

var submissionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a submission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.svc.DeleteSubmission(ctx, types.SubmissionID(args[0])); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted submission %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(submissionsCmd)
	submissionsCmd.AddCommand(submissionsListCmd, submissionsShowCmd, submissionsDeleteCmd)
	submissionsListCmd.Flags().Int("limit", 50, "maximum number of submissions")
}
