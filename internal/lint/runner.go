// Package lint drives the external l10n-lint checker over downloaded PO
// files. It does not implement any lint rules itself; it invokes the tool,
// parses its JSON results, and aggregates them per file or per translator.
package lint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/charmbracelet/log"
)

const lintBinary = "l10n-lint"

// Issue is a single finding reported by l10n-lint for one message.
type Issue struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Line     int    `json:"line,omitempty"`
}

// Fuzzy reports whether the issue flags a fuzzy translation. Fuzzy entries
// are counted separately because they only fail the run under strict mode.
func (i Issue) Fuzzy() bool {
	return i.Rule == "fuzzy"
}

// FileResult holds the findings for one PO file.
type FileResult struct {
	File   string  `json:"file"`
	Issues []Issue `json:"issues"`
}

// Counts returns the error, warning and fuzzy totals for the file.
func (fr FileResult) Counts() (errors, warnings, fuzzy int) {
	for _, issue := range fr.Issues {
		switch {
		case issue.Fuzzy():
			fuzzy++
		case issue.Severity == "error":
			errors++
		default:
			warnings++
		}
	}
	return errors, warnings, fuzzy
}

// TranslatorSummary aggregates lint findings over all files assigned to one
// translator on the team page.
type TranslatorSummary struct {
	Translator string   `json:"translator"`
	Files      []string `json:"files"`
	Errors     int      `json:"errors"`
	Warnings   int      `json:"warnings"`
	Fuzzy      int      `json:"fuzzy"`
}

// Runner invokes l10n-lint. The language code is exported to the child
// process environment so locale-aware rules see the right language.
type Runner struct {
	binary string
	lang   string
	logger *log.Logger
}

func NewRunner(lang string, logger *log.Logger) *Runner {
	return &Runner{binary: lintBinary, lang: lang, logger: logger}
}

// Available reports whether the l10n-lint binary can be found on PATH.
func (r *Runner) Available() bool {
	_, err := exec.LookPath(r.binary)
	return err == nil
}

// LintDir runs l10n-lint once over a whole directory and returns its
// combined output and exit code. This is the plain, non-grouped mode.
func (r *Runner) LintDir(ctx context.Context, dir string, strict bool) (stdout, stderr string, exitCode int, err error) {
	args := []string{}
	if strict {
		args = append(args, "--strict")
	}
	args = append(args, dir)

	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Env = r.env()
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	runErr := cmd.Run()
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return outBuf.String(), errBuf.String(), exitErr.ExitCode(), nil
		}
		return "", "", 0, fmt.Errorf("failed to run %s: %w", r.binary, runErr)
	}
	return outBuf.String(), errBuf.String(), 0, nil
}

// LintFiles runs l10n-lint on each file individually with JSON output and
// returns one result per file, in input order. Files the tool reports
// nothing for come back with an empty issue list.
func (r *Runner) LintFiles(ctx context.Context, files []string) ([]FileResult, error) {
	results := make([]FileResult, 0, len(files))
	for _, file := range files {
		cmd := exec.CommandContext(ctx, r.binary, "--format", "json", file)
		cmd.Env = r.env()
		var outBuf bytes.Buffer
		cmd.Stdout = &outBuf
		cmd.Stderr = &bytes.Buffer{}

		if runErr := cmd.Run(); runErr != nil {
			var exitErr *exec.ExitError
			if !errors.As(runErr, &exitErr) {
				return nil, fmt.Errorf("failed to run %s on %s: %w", r.binary, file, runErr)
			}
			// Nonzero exit just means findings; the JSON still carries them.
		}

		result := FileResult{File: filepath.Base(file), Issues: []Issue{}}
		if out := bytes.TrimSpace(outBuf.Bytes()); len(out) > 0 {
			if err := json.Unmarshal(out, &result); err != nil {
				r.logger.Warn("skipping unparseable lint output",
					"file", filepath.Base(file), "error", err)
			}
			result.File = filepath.Base(file)
		}
		results = append(results, result)
	}
	return results, nil
}

func (r *Runner) env() []string {
	env := os.Environ()
	if r.lang != "" {
		locale := r.lang + ".UTF-8"
		env = append(env, "LANG="+locale, "LC_ALL="+locale)
	}
	return env
}

// PO filenames on the hub carry the package name first, either before a
// version dash (coreutils-9.4.sv.po) or before the first dot (wget.sv.po);
// the language segment may be absent entirely (tar.po).
var (
	packageDashPattern = regexp.MustCompile(`^([^-]+)-.*\.po$`)
	packageDotPattern  = regexp.MustCompile(`^([^.]+)\.(?:[^.]+\.)?po$`)
)

// PackageFromFilename extracts the package name from a PO filename. Names
// that match neither pattern are returned unchanged.
func PackageFromFilename(name string) string {
	if m := packageDashPattern.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	if m := packageDotPattern.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return name
}

// GroupByTranslator folds per-file results into per-translator summaries
// using the package to translator assignments from the team page. Files
// whose package has no assignment fall under "Unknown". Summaries come back
// sorted by translator name.
func GroupByTranslator(results []FileResult, assignments map[string]string) []TranslatorSummary {
	byName := make(map[string]*TranslatorSummary)
	for _, result := range results {
		translator := assignments[PackageFromFilename(result.File)]
		if translator == "" {
			translator = "Unknown"
		}
		summary, ok := byName[translator]
		if !ok {
			summary = &TranslatorSummary{Translator: translator, Files: []string{}}
			byName[translator] = summary
		}
		summary.Files = append(summary.Files, result.File)
		errors, warnings, fuzzy := result.Counts()
		summary.Errors += errors
		summary.Warnings += warnings
		summary.Fuzzy += fuzzy
	}

	summaries := make([]TranslatorSummary, 0, len(byName))
	for _, summary := range byName {
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Translator < summaries[j].Translator
	})
	return summaries
}

// ExitCode maps aggregated findings to the process exit code: 2 for errors,
// 1 for warnings (or fuzzy translations under strict mode), 0 otherwise.
func ExitCode(errors, warnings, fuzzy int, strict bool) int {
	switch {
	case errors > 0:
		return 2
	case warnings > 0 || (strict && fuzzy > 0):
		return 1
	default:
		return 0
	}
}
