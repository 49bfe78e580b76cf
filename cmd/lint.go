package cmd

import (
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/yeager/tp-stats/internal/gateway"
	"github.com/yeager/tp-stats/internal/lint"
)

var lintCmd = &cobra.Command{
	Use:   "lint LANG",
	Short: "Download a team's PO files and run l10n-lint over them",
	Long: `Fetches the team page for LANG, downloads its PO files concurrently and
runs l10n-lint over them. With --by-translator the findings are grouped by
the translator assignments published on the team page.

Exit code is 2 when lint errors were found, 1 for warnings (or fuzzy
translations under --strict), 0 otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		lang := args[0]

		packages, _ := cmd.Flags().GetStringArray("package")
		keep, _ := cmd.Flags().GetBool("keep")
		output, _ := cmd.Flags().GetString("output")
		noLint, _ := cmd.Flags().GetBool("no-lint")
		strict, _ := cmd.Flags().GetBool("strict")
		byTranslator, _ := cmd.Flags().GetBool("by-translator")
		baseURL, _ := cmd.Flags().GetString("base-url")

		hub := gateway.NewHubGateway(baseURL, logger)
		page, err := hub.FetchTeamPage(cmd.Context(), lang)
		if err != nil {
			if errors.Is(err, gateway.ErrTeamNotFound) {
				return fmt.Errorf("language %q not found on the hub", lang)
			}
			return err
		}

		urls := filterPOFiles(page.POFiles, packages)
		if len(urls) == 0 {
			return fmt.Errorf("no PO files to download for %q", lang)
		}

		destDir := output
		cleanup := func() {}
		if destDir == "" {
			tmpDir, err := os.MkdirTemp("", "tp-stats-"+lang+"-")
			if err != nil {
				return fmt.Errorf("failed to create download directory: %w", err)
			}
			destDir = tmpDir
			if !keep {
				cleanup = func() { os.RemoveAll(tmpDir) }
			}
		} else if err := os.MkdirAll(destDir, 0o755); err != nil {
			return fmt.Errorf("failed to create download directory: %w", err)
		}
		defer cleanup()

		downloads, err := hub.DownloadPOFiles(cmd.Context(), urls, destDir)
		if err != nil {
			return err
		}
		if noLint {
			logger.Info("Downloaded PO files, linting skipped", "count", len(downloads), "dir", destDir)
			return nil
		}

		runner := lint.NewRunner(lang, logger)
		if !runner.Available() {
			return errors.New("l10n-lint not found on PATH, install it first")
		}

		var exitCode int
		if byTranslator {
			files := make([]string, 0, len(downloads))
			for _, dl := range downloads {
				files = append(files, dl.Path)
			}
			results, err := runner.LintFiles(cmd.Context(), files)
			if err != nil {
				return err
			}
			exitCode = printByTranslator(cmd, results, page.Translators, strict)
		} else {
			stdout, stderr, code, err := runner.LintDir(cmd.Context(), destDir, strict)
			if err != nil {
				return err
			}
			if stdout != "" {
				fmt.Fprint(cmd.OutOrStdout(), stdout)
			}
			if stderr != "" {
				fmt.Fprint(cmd.ErrOrStderr(), stderr)
			}
			exitCode = code
		}

		if keep || output != "" {
			logger.Info("PO files saved", "dir", destDir)
		}
		if exitCode != 0 {
			cleanup()
			os.Exit(exitCode)
		}
		return nil
	},
}

// filterPOFiles keeps only the URLs whose PO filename belongs to one of the
// requested packages. An empty filter keeps everything.
func filterPOFiles(urls, packages []string) []string {
	if len(packages) == 0 {
		return urls
	}
	wanted := make(map[string]bool, len(packages))
	for _, pkg := range packages {
		wanted[pkg] = true
	}
	filtered := make([]string, 0, len(urls))
	for _, url := range urls {
		if wanted[lint.PackageFromFilename(path.Base(url))] {
			filtered = append(filtered, url)
		}
	}
	return filtered
}

// printByTranslator prints per-translator summaries and returns the exit
// code derived from the grand totals.
func printByTranslator(cmd *cobra.Command, results []lint.FileResult, translators map[string]string, strict bool) int {
	out := cmd.OutOrStdout()
	summaries := lint.GroupByTranslator(results, translators)

	fmt.Fprintln(out, "Results by translator:")
	fmt.Fprintln(out)
	var totalErrors, totalWarnings, totalFuzzy, totalFiles int
	for _, summary := range summaries {
		fmt.Fprintln(out, summary.Translator)
		fmt.Fprintf(out, "  Files:    %d\n", len(summary.Files))
		fmt.Fprintf(out, "  Errors:   %d\n", summary.Errors)
		fmt.Fprintf(out, "  Fuzzy:    %d\n", summary.Fuzzy)
		fmt.Fprintf(out, "  Warnings: %d\n", summary.Warnings)
		fmt.Fprintln(out)
		totalErrors += summary.Errors
		totalWarnings += summary.Warnings
		totalFuzzy += summary.Fuzzy
		totalFiles += len(summary.Files)
	}
	fmt.Fprintf(out, "Total: %d files, %d errors, %d fuzzy, %d warnings\n",
		totalFiles, totalErrors, totalFuzzy, totalWarnings)

	return lint.ExitCode(totalErrors, totalWarnings, totalFuzzy, strict)
}

func init() {
	rootCmd.AddCommand(lintCmd)
	lintCmd.Flags().StringArrayP("package", "p", nil, "Lint only these packages (repeatable)")
	lintCmd.Flags().BoolP("keep", "k", false, "Keep downloaded PO files after linting")
	lintCmd.Flags().StringP("output", "o", "", "Download PO files into this directory")
	lintCmd.Flags().Bool("no-lint", false, "Download only, do not run l10n-lint")
	lintCmd.Flags().Bool("strict", false, "Treat fuzzy translations as failures")
	lintCmd.Flags().BoolP("by-translator", "t", false, "Group lint results by translator assignment")
}
