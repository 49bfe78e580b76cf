// Package report projects aggregated coverage statistics into the supported
// output shapes. Renderers never compute statistics; they format what the
// aggregator already derived, and the only error they can produce is a
// failure to write to the output sink.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yeager/tp-stats/internal/domain"
)

// Format is the closed set of output shapes.
type Format string

const (
	// FormatText is the plain terminal shape.
	FormatText Format = "text"
	// FormatJSON is the machine-readable shape.
	FormatJSON Format = "json"
	// FormatMarkdown is the styled document shape for plain-text sinks.
	FormatMarkdown Format = "markdown"
	// FormatHTML is the styled document shape with visual coverage bars.
	FormatHTML Format = "html"
	// FormatGitHub emits GitHub Actions workflow annotations.
	FormatGitHub Format = "github"
)

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatMarkdown, FormatHTML, FormatGitHub:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Render writes the report to w in the requested shape. Format dispatch
// happens here and nowhere else.
func Render(w io.Writer, r *domain.Report, f Format) error {
	switch f {
	case FormatText:
		return renderText(w, r)
	case FormatJSON:
		return renderJSON(w, r)
	case FormatMarkdown:
		return renderMarkdown(w, r)
	case FormatHTML:
		return renderHTML(w, r)
	case FormatGitHub:
		return renderGitHub(w, r)
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

// The hub's page URLs, used to build navigable links in rendered reports.
const (
	teamURLTemplate    = "https://translationproject.org/team/%s.html"
	packageURLTemplate = "https://translationproject.org/domain/%s.html"
)

// TeamURL returns the hub page for a language team.
func TeamURL(code string) string {
	return fmt.Sprintf(teamURLTemplate, code)
}

// PackageURL returns the hub page for a package.
func PackageURL(name string) string {
	return fmt.Sprintf(packageURLTemplate, name)
}

// Percent formats an already-computed percentage to one decimal place.
// Every shape goes through this so the same value renders identically
// everywhere.
func Percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

// Bar renders a proportional coverage bar of the given width. The proportion
// comes solely from the percentage the aggregator computed.
func Bar(pct float64, width int) string {
	filled := int(pct) * width / 100
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// limit caps list rendering at the report's top-N, or shows everything when
// no limit was requested.
func limit(r *domain.Report, n int) int {
	if r.TopN <= 0 || r.TopN > n {
		return n
	}
	return r.TopN
}

func renderJSON(w io.Writer, r *domain.Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// errWriter folds repeated Fprintf error handling into one sticky error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	ew.printf("%s\n", s)
}

func (ew *errWriter) sinkErr() error {
	if ew.err != nil {
		return fmt.Errorf("failed to write report: %w", ew.err)
	}
	return nil
}
