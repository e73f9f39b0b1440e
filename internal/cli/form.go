package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"idea-forge-api/internal/application/request"
)

// draftFlags 表单字段对应的命令行参数
type draftFlags struct {
	values  map[string]*string
	noInput bool
}

func bindDraftFlags(cmd *cobra.Command) *draftFlags {
	f := &draftFlags{values: make(map[string]*string, len(request.FieldNames))}
	for _, spec := range request.FormFields() {
		f.values[spec.Name] = cmd.Flags().String(flagName(spec.Name), spec.Default, spec.Label)
	}
	cmd.Flags().BoolVar(&f.noInput, "no-input", false, "Do not prompt; use flag values only")
	return f
}

// flagName 字段名转为命令行参数名，如 time_available_days -> time-available-days
func flagName(field string) string {
	return strings.ReplaceAll(field, "_", "-")
}

// draft 按参数构造草稿，交互模式下再由表单补全
func (f *draftFlags) draft(interactive bool) (*request.RequestDraft, error) {
	d := request.NewRequestDraft()
	for name, v := range f.values {
		if err := d.Set(name, *v); err != nil {
			return nil, err
		}
	}
	if interactive && !f.noInput {
		if err := runForm(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// runForm 显示交互式表单，字段顺序与默认值来自 FormFields
func runForm(d *request.RequestDraft) error {
	specs := request.FormFields()
	values := make(map[string]*string, len(specs))
	fields := make([]huh.Field, 0, len(specs))

	for _, spec := range specs {
		current, _ := d.Get(spec.Name)
		v := current
		values[spec.Name] = &v
		fields = append(fields, formField(spec, &v))
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}

	for name, v := range values {
		if err := d.Set(name, *v); err != nil {
			return err
		}
	}
	return nil
}

func formField(spec request.FieldSpec, value *string) huh.Field {
	switch spec.Kind {
	case request.FieldKindSelect:
		opts := make([]huh.Option[string], 0, len(spec.Options))
		for _, o := range spec.Options {
			opts = append(opts, huh.NewOption(o.Label, o.Value))
		}
		return huh.NewSelect[string]().
			Title(spec.Label).
			Options(opts...).
			Value(value)
	case request.FieldKindTextarea:
		return huh.NewText().
			Title(spec.Label).
			Placeholder(spec.Placeholder).
			Value(value)
	case request.FieldKindNumber:
		return huh.NewInput().
			Title(spec.Label).
			Value(value).
			Validate(func(s string) error {
				_, err := request.ParseTimeAvailableDays(s)
				return err
			})
	default:
		input := huh.NewInput().
			Title(spec.Label).
			Placeholder(spec.Placeholder).
			Value(value)
		if spec.Required {
			input = input.Validate(huh.ValidateNotEmpty())
		}
		return input
	}
}

// describeValidation 把校验错误转为面向用户的提示
func describeValidation(err error) error {
	var verr *request.ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("%s: %s", verr.Field, verr.Reason)
	}
	return err
}

func newFormCommand() *cobra.Command {
	var flags *draftFlags

	cmd := &cobra.Command{
		Use:   "form",
		Short: "Fill in the request form and print the validated request",
		Long: `Fill in the idea request form and print the validated request as JSON.

Flags pre-fill the form. With --no-input, or when stdin is not a terminal,
the flag values are validated directly.

Examples:
  ideactl form
  ideactl form --no-input --domain education --audience teachers --mode Startup`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := flags.draft(isInteractive())
			if err != nil {
				return describeValidation(err)
			}
			req, err := d.Build()
			if err != nil {
				return describeValidation(err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(req)
		},
	}
	flags = bindDraftFlags(cmd)
	return cmd
}
