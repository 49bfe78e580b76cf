package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeager/tp-stats/internal/gateway"
	"github.com/yeager/tp-stats/internal/matrix"
	"github.com/yeager/tp-stats/internal/report"
	"github.com/yeager/tp-stats/internal/usecase"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show translation coverage statistics from the status matrix",
	Long: `Fetches the Translation Project status matrix and derives coverage
statistics. Without a filter the output covers the whole hub with ranked
top and bottom language lists. With --lang or --package the output is the
per-language or per-package breakdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)

		lang, _ := cmd.Flags().GetString("lang")
		pkg, _ := cmd.Flags().GetString("package")
		topN, _ := cmd.Flags().GetInt("top")
		formatStr, _ := cmd.Flags().GetString("format")
		baseURL, _ := cmd.Flags().GetString("base-url")

		if lang != "" && pkg != "" {
			return errors.New("--lang and --package are mutually exclusive")
		}
		format, err := report.ParseFormat(formatStr)
		if err != nil {
			return err
		}
		switch format {
		case report.FormatText, report.FormatJSON, report.FormatGitHub:
		default:
			return fmt.Errorf("format %q is not supported by stats, use the report command", format)
		}

		// Inject dependencies and run the main business logic.
		hub := gateway.NewHubGateway(baseURL, logger)
		aggregator := usecase.NewAggregator(hub, matrix.DefaultVocabulary(), logger)

		result, err := aggregator.Report(cmd.Context(), usecase.Options{
			Language: lang,
			Package:  pkg,
			TopN:     topN,
		})
		if err != nil {
			if hint, ok := filterHint(err); ok {
				fmt.Fprintln(cmd.ErrOrStderr(), hint)
			}
			return err
		}

		return report.Render(cmd.OutOrStdout(), result, format)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringP("lang", "l", "", "Show statistics for one language code (e.g. sv)")
	statsCmd.Flags().StringP("package", "p", "", "Show statistics for one package (e.g. coreutils)")
	statsCmd.Flags().IntP("top", "n", 15, "Number of entries in ranked lists")
	statsCmd.Flags().StringP("format", "f", "text", "Output format: text, json or github")
}
