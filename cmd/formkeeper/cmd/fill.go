package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/solatis/formkeeper/internal/schema"
	"github.com/solatis/formkeeper/internal/types"
	"github.com/solatis/formkeeper/internal/validation"
)

const skipOption = "(skip)"

var fillCmd = &cobra.Command{
	Use:   "fill <slug>",
	Short: "Fill in a form interactively and submit it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		form, err := a.svc.GetForm(ctx, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		values, err := promptForm(out, form)
		if errors.Is(err, terminal.InterruptErr) {
			fmt.Fprintln(out, "cancelled")
			return nil
		}
		if err != nil {
			return err
		}

		res, err := a.svc.Submit(ctx, form.Slug, values, types.Metadata{"source": "cli"})
		if err != nil {
			return err
		}
		if !res.Success {
			flat := res.Errors.Flatten()
			for _, name := range flat.Fields() {
				for _, msg := range flat.Get(name) {
					fmt.Fprintf(out, "  %s: %s\n", name, msg)
				}
			}
			return errValidationFailed
		}
		fmt.Fprintf(out, "%s\nsubmission %s\n", res.Message, res.SubmissionID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fillCmd)
}

// promptForm walks the steps in order. Conditions are evaluated against
// the answers collected so far, so hidden steps and fields are skipped.
func promptForm(out io.Writer, form *schema.Form) (types.Values, error) {
	values := types.Values{}
	for i := range form.Steps {
		step := &form.Steps[i]
		if !validation.IsStepVisible(step, values) {
			continue
		}
		if form.IsMultiStep() {
			fmt.Fprintf(out, "\n== %s (%d/%d) ==\n", step.Name, i+1, len(form.Steps))
		}
		if step.Description != "" {
			fmt.Fprintln(out, step.Description)
		}

		for j := range step.Fields {
			field := &step.Fields[j]
			if !validation.IsFieldVisible(field, values) {
				continue
			}
			switch {
			case field.ValueType == types.ValueTypeHeading:
				fmt.Fprintf(out, "\n%s\n", field.Label)
				continue
			case field.ValueType == types.ValueTypeParagraph:
				text := field.HelpText
				if text == "" {
					text = field.Label
				}
				fmt.Fprintln(out, text)
				continue
			case field.ValueType == types.ValueTypeHidden:
				if field.DefaultValue != "" {
					values[field.Name] = types.Text(field.DefaultValue)
				}
				continue
			case field.ValueType.IsFileType():
				fmt.Fprintf(out, "%s: file uploads are not supported here, skipping\n", field.Label)
				continue
			}

			v, err := promptField(out, field)
			if err != nil {
				return nil, err
			}
			if !v.IsNull() {
				values[field.Name] = v
			}
		}
	}
	return values, nil
}

// promptField asks until the answer passes the field's validators.
func promptField(out io.Writer, field *schema.Field) (types.Value, error) {
	for {
		v, err := askField(field)
		if err != nil {
			return types.Null(), err
		}
		msgs := validation.ValidateField(field, v)
		if len(msgs) == 0 {
			return v, nil
		}
		fmt.Fprintf(out, "  %s\n", strings.Join(msgs, "; "))
	}
}

func askField(field *schema.Field) (types.Value, error) {
	message := field.Label
	if field.Required {
		message += " *"
	}

	switch {
	case field.ValueType.IsMultiValue() && len(field.Options) > 0:
		labels, byLabel := optionLabels(field)
		var picked []string
		prompt := &survey.MultiSelect{Message: message, Options: labels, Help: field.HelpText}
		if err := survey.AskOne(prompt, &picked); err != nil {
			return types.Null(), err
		}
		selected := make([]string, 0, len(picked))
		for _, l := range picked {
			selected = append(selected, byLabel[l])
		}
		return types.Array(selected), nil

	case field.ValueType == types.ValueTypeCheckbox:
		var yes bool
		prompt := &survey.Confirm{Message: message, Help: field.HelpText}
		if err := survey.AskOne(prompt, &yes); err != nil {
			return types.Null(), err
		}
		if !yes {
			return types.Null(), nil
		}
		return types.Bool(true), nil

	case len(field.Options) > 0:
		labels, byLabel := optionLabels(field)
		if !field.Required {
			labels = append([]string{skipOption}, labels...)
		}
		prompt := &survey.Select{Message: message, Options: labels, Help: field.HelpText}
		for _, opt := range field.Options {
			if opt.Value == field.DefaultValue {
				prompt.Default = opt.Label
			}
		}
		var picked string
		if err := survey.AskOne(prompt, &picked); err != nil {
			return types.Null(), err
		}
		if picked == skipOption {
			return types.Null(), nil
		}
		return types.Text(byLabel[picked]), nil

	case field.ValueType == types.ValueTypeTextarea:
		var text string
		prompt := &survey.Multiline{Message: message, Default: field.DefaultValue, Help: field.HelpText}
		if err := survey.AskOne(prompt, &text); err != nil {
			return types.Null(), err
		}
		return types.Text(strings.TrimSpace(text)), nil

	default:
		var text string
		prompt := &survey.Input{Message: message, Default: field.DefaultValue, Help: helpFor(field)}
		if err := survey.AskOne(prompt, &text); err != nil {
			return types.Null(), err
		}
		return types.Text(strings.TrimSpace(text)), nil
	}
}

func optionLabels(field *schema.Field) ([]string, map[string]string) {
	labels := make([]string, 0, len(field.Options))
	byLabel := make(map[string]string, len(field.Options))
	for _, opt := range field.Options {
		labels = append(labels, opt.Label)
		byLabel[opt.Label] = opt.Value
	}
	return labels, byLabel
}

func helpFor(field *schema.Field) string {
	if field.HelpText != "" {
		return field.HelpText
	}
	if field.Placeholder != "" {
		return "e.g. " + field.Placeholder
	}
	return ""
}
