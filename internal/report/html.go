package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/yeager/tp-stats/internal/domain"
)

//go:embed report.html.tmpl
var htmlTemplateText string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"pct":        Percent,
	"teamURL":    TeamURL,
	"packageURL": PackageURL,
	"upper":      strings.ToUpper,
	"inc":        func(i int) int { return i + 1 },
	// barWidth turns the computed percentage into a CSS width. No rounding
	// beyond display precision; the proportion is the aggregated value.
	"barWidth": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 1, 64)
	},
}).Parse(htmlTemplateText))

func renderHTML(w io.Writer, r *domain.Report) error {
	if err := htmlTemplate.Execute(w, r); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
