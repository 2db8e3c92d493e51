package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/solatis/formkeeper/internal/core/extract"
	"github.com/solatis/formkeeper/internal/validation"
)

var errValidationFailed = errors.New("validation failed")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a definition file, and optionally a submission, without a database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		defPath, _ := cmd.Flags().GetString("file")
		dataPath, _ := cmd.Flags().GetString("data")
		out := cmd.OutOrStdout()

		def, err := readDefinitionFile(cmd, defPath)
		if err != nil {
			return err
		}
		if dataPath == "" {
			fmt.Fprintf(out, "definition %s is valid\n", def.Slug)
			return nil
		}

		body, err := os.ReadFile(dataPath)
		if err != nil {
			return fmt.Errorf("read data: %w", err)
		}
		data, err := extract.FromJSON(body)
		if err != nil {
			return err
		}

		form := def.Build(time.Now().UTC())
		errs := validation.ValidateMultiStepSubmission(form.Steps, data)
		report := map[string]any{
			"valid":      errs.IsEmpty(),
			"errors":     errs.Flatten(),
			"visibility": validation.Visibility(form.Steps, data),
		}
		if err := writeJSON(out, report); err != nil {
			return err
		}
		if !errs.IsEmpty() {
			return errValidationFailed
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("file", "f", "", "definition file (YAML or JSON, - for stdin)")
	validateCmd.Flags().StringP("data", "d", "", "submission data file (JSON object)")
	validateCmd.MarkFlagRequired("file")
}
