package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"minitimer/internal/export"
)

func newExportCommand(opts *rootOptions) *cobra.Command {
	var (
		format string
		output string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tracked time entries to CSV/Excel",
		Long: `Export tracked time entries, newest first.

Output format can be selected explicitly via --format or inferred from --output extension.`,
		Example: `
  # Export everything to CSV
  minitimer export --output ./time.csv

  # Force Excel format independent of extension
  minitimer export --format excel --output ./time.out
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(format) == "" {
				format = export.DetectFormat(output)
			}
			writer, err := export.WriterForFormat(format)
			if err != nil {
				return err
			}

			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.tracker.Entries(limit)
			if err != nil {
				return err
			}
			if err := writer.Write(output, entries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Export completed. Rows: %d, Format: %s, File: %s\n", len(entries), format, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path")
	cmd.Flags().IntVar(&limit, "limit", 0, "Export at most this many entries (0: all)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
