package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/solatis/formkeeper/internal/schema"
)

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Manage form definitions",
}

var formListCmd = &cobra.Command{
	Use:   "list",
	Short: "List forms",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		all, _ := cmd.Flags().GetBool("all")
		forms, err := a.svc.ListForms(ctx, all)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSLUG\tNAME\tUPDATED\tSTATUS")
		for _, f := range forms {
			state := "active"
			if f.IsDeleted() {
				state = "deleted"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", f.ID, f.Slug, f.Name, f.UpdatedAt.Format("2006-01-02 15:04"), state)
		}
		return w.Flush()
	},
}

var formShowCmd = &cobra.Command{
	Use:   "show <slug|id>",
	Short: "Print a form as JSON",
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
		return writeJSON(cmd.OutOrStdout(), form)
	},
}

var formImportCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Create or update a form from a YAML or JSON definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := readDefinitionFile(cmd, args[0])
		if err != nil {
			return err
		}

		ctx := context.Background()
		a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		form, created, err := a.svc.ImportForm(ctx, def)
		if err != nil {
			return err
		}
		verb := "updated"
		if created {
			verb = "created"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s form %s (%s)\n", verb, form.Slug, form.ID)
		return nil
	},
}

var formExportCmd = &cobra.Command{
	Use:   "export <slug|id>",
	Short: "Write a form definition as YAML",
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
		out, err := yaml.Marshal(schema.DefinitionOf(form))
		if err != nil {
			return fmt.Errorf("encode definition: %w", err)
		}

		path, _ := cmd.Flags().GetString("output")
		if path == "" {
			_, err = cmd.OutOrStdout().Write(out)
			return err
		}
		return os.WriteFile(path, out, 0o644)
	},
}

var formDeleteCmd = &cobra.Command{
	Use:   "delete <slug|id>",
	Short: "Soft-delete a form, or remove it with --hard",
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
		hard, _ := cmd.Flags().GetBool("hard")
		if err := a.svc.DeleteForm(ctx, form.ID, hard); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted form %s\n", form.Slug)
		return nil
	},
}

var formRestoreCmd = &cobra.Command{
	Use:   "restore <slug|id>",
	Short: "Restore a soft-deleted form",
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
		if _, err := a.svc.RestoreForm(ctx, form.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "restored form %s\n", form.Slug)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(formCmd)
	formCmd.AddCommand(formListCmd, formShowCmd, formImportCmd, formExportCmd, formDeleteCmd, formRestoreCmd)
	formListCmd.Flags().Bool("all", false, "include soft-deleted forms")
	formExportCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	formDeleteCmd.Flags().Bool("hard", false, "permanently remove the form and its submissions")
}

// readDefinitionFile parses a definition from path, or stdin for "-".
func readDefinitionFile(cmd *cobra.Command, path string) (*schema.FormDefinition, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	return schema.ParseDefinition(data)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
