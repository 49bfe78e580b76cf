package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yeager/tp-stats/internal/gateway"
	"github.com/yeager/tp-stats/internal/matrix"
	"github.com/yeager/tp-stats/internal/report"
	"github.com/yeager/tp-stats/internal/usecase"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a Markdown or HTML coverage report",
	Long: `Generates a styled coverage report from the status matrix, either for
the whole hub or for one language. The report goes to stdout unless
--output names a file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)

		lang, _ := cmd.Flags().GetString("lang")
		formatStr, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		topN, _ := cmd.Flags().GetInt("top")
		baseURL, _ := cmd.Flags().GetString("base-url")

		format, err := report.ParseFormat(formatStr)
		if err != nil {
			return err
		}
		switch format {
		case report.FormatMarkdown, report.FormatHTML:
		default:
			return fmt.Errorf("format %q is not supported by report, use markdown or html", format)
		}

		hub := gateway.NewHubGateway(baseURL, logger)
		aggregator := usecase.NewAggregator(hub, matrix.DefaultVocabulary(), logger)

		result, err := aggregator.Report(cmd.Context(), usecase.Options{
			Language: lang,
			TopN:     topN,
		})
		if err != nil {
			if hint, ok := filterHint(err); ok {
				fmt.Fprintln(cmd.ErrOrStderr(), hint)
			}
			return err
		}

		if output == "" {
			return report.Render(cmd.OutOrStdout(), result, format)
		}

		// A sink failure here loses nothing: the statistics are already
		// computed and the command can be rerun against a writable path.
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		if err := report.Render(f, result, format); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write report file: %w", err)
		}
		logger.Info("Report saved", "path", output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringP("lang", "l", "", "Report on one language code (e.g. sv)")
	reportCmd.Flags().StringP("format", "f", "markdown", "Report format: markdown or html")
	reportCmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	reportCmd.Flags().IntP("top", "n", 15, "Number of entries in ranked lists")
}
