package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"idea-forge-api/internal/application/export"
)

func newGenerateCommand() *cobra.Command {
	var (
		server    string
		sessionID string
		format    string
		timeout   time.Duration
		flags     *draftFlags
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Ask the server for three project ideas",
		Long: `Fill in the request form, send it to the idea generation API and print
the three returned ideas.

The request is validated locally first, so field errors are reported
without calling the server.

Examples:
  ideactl generate --server http://localhost:8080
  ideactl generate --no-input --domain education --audience teachers --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			d, err := flags.draft(isInteractive())
			if err != nil {
				return describeValidation(err)
			}
			if _, err := d.Build(); err != nil {
				return describeValidation(err)
			}

			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			client := newAPIClient(server, timeout)
			batch, err := client.Generate(cmd.Context(), sessionID, d)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, view := range batch.Ideas {
				doc, err := export.Render(view.Idea, f)
				if err != nil {
					return fmt.Errorf("%s: %w", view.Label, err)
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "===== %s =====\n%s\n", view.Label, doc.Body)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "session %s, generation %s\n", batch.SessionID, batch.GenerationID)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "API server base URL")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID (random when empty)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format per idea: text, json, html, filename")
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Minute, "HTTP timeout")
	flags = bindDraftFlags(cmd)
	return cmd
}
