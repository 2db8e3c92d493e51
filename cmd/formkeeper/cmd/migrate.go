package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/solatis/formkeeper/internal/core/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		_, log, database, err := openDB(ctx, cmd)
		if err != nil {
			return err
		}
		defer log.Sync()
		defer database.Close()

		if err := db.MigrateUp(ctx, database); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		_, log, database, err := openDB(ctx, cmd)
		if err != nil {
			return err
		}
		defer log.Sync()
		defer database.Close()

		statuses, err := db.MigrateStatus(ctx, database)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MIGRATION\tSTATUS\tAPPLIED AT\tDURATION")
		for _, s := range statuses {
			if !s.Applied {
				fmt.Fprintf(w, "%s\tpending\t-\t-\n", s.ID)
				continue
			}
			fmt.Fprintf(w, "%s\tapplied\t%s\t%dms\n", s.ID, s.AppliedAt.Format("2006-01-02 15:04:05"), s.ExecutionMs)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateStatusCmd)
}
