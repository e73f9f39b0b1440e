package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"idea-forge-api/internal/application/export"
	"idea-forge-api/internal/domain/entity"
)

func newExportCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export <idea.json>",
		Short: "Export a saved idea as text, JSON, HTML or a filename",
		Long: `Export a single idea stored as canonical JSON.

Use "-" to read the idea from stdin. With --output the result is written to a
file; "--output auto" uses the suggested filename of the idea.

Examples:
  ideactl export idea.json
  ideactl export --format json --output auto idea.json
  cat idea.json | ideactl export --format html -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			idea, err := export.DecodeCanonicalJSON(string(raw))
			if err != nil {
				return fmt.Errorf("invalid idea in %s: %w", args[0], err)
			}

			doc, err := export.Render(idea, f)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), doc.Body)
				return err
			}
			if output == "auto" {
				output = autoFilename(idea, f)
			}
			if err := os.WriteFile(output, []byte(doc.Body), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			_, err = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Export format: text, json, html, filename")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout (\"auto\" uses the suggested filename)")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// autoFilename 按导出格式调整建议文件名的扩展名
func autoFilename(idea entity.Idea, f export.Format) string {
	name := export.SuggestedFilename(idea)
	switch f {
	case export.FormatJSON:
		return name
	case export.FormatHTML:
		return strings.TrimSuffix(name, ".json") + ".html"
	default:
		return strings.TrimSuffix(name, ".json") + ".txt"
	}
}
