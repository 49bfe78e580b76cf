package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/yeager/tp-stats/internal/domain"
)

const barWidth = 20

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	styleSection = lipgloss.NewStyle().Bold(true)
	styleGood    = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleBad     = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func renderText(w io.Writer, r *domain.Report) error {
	ew := &errWriter{w: w}
	ew.println(styleTitle.Render("Translation Project statistics"))
	ew.println("")

	g := r.Global
	ew.println(styleSection.Render("Overview"))
	ew.printf("  Languages:         %d\n", g.Languages)
	ew.printf("  Packages:          %d\n", g.Packages)
	ew.printf("  Tracked cells:     %d\n", g.Tracked)
	ew.printf("  Overall coverage:  %s\n", Percent(g.Percent))
	ew.printf("  Per-language mean: %s  median: %s\n", Percent(g.MeanPercent), Percent(g.MedianPercent))
	ew.println("")

	switch {
	case r.Language != nil:
		textLanguage(ew, r)
	case r.Package != nil:
		textPackage(ew, r)
	default:
		textGlobal(ew, r)
	}

	if len(r.Warnings) > 0 {
		ew.println("")
		ew.println(styleWarn.Render(fmt.Sprintf("%d warnings while reading the matrix:", len(r.Warnings))))
		for _, warning := range r.Warnings {
			ew.printf("  %s\n", styleDim.Render(warning.String()))
		}
	}
	return ew.sinkErr()
}

func textGlobal(ew *errWriter, r *domain.Report) {
	g := r.Global
	ew.println(styleSection.Render(fmt.Sprintf("Top %d languages by coverage", len(g.Top))))
	ew.println(languageTable(g.Top))
	ew.println("")
	ew.println(styleSection.Render(fmt.Sprintf("Bottom %d languages", len(g.Bottom))))
	ew.println(languageTable(g.Bottom))
	ew.println("")
	ew.println(styleSection.Render("Most widely translated packages"))
	ew.println(packageTable(g.TopPackages))
	ew.println("")
	ew.println(styleSection.Render("Least translated packages"))
	ew.println(packageTable(g.BottomPackages))
}

func textLanguage(ew *errWriter, r *domain.Report) {
	d := r.Language
	ew.println(styleSection.Render("Language: " + strings.ToUpper(d.Code)))
	if d.NoData {
		ew.printf("  %s\n", styleDim.Render("no tracked packages"))
		return
	}
	ew.printf("  Coverage: %s  %s\n", Bar(d.Percent, barWidth), Percent(d.Percent))
	ew.printf("  Tracked:  %d packages\n", d.Total)
	ew.println("")

	textList(ew, styleGood.Render(fmt.Sprintf("Complete (%d)", len(d.CompletePackages))), d.CompletePackages, r)
	textList(ew, styleWarn.Render(fmt.Sprintf("Partial (%d)", len(d.PartialPackages))), d.PartialPackages, r)
	textList(ew, styleBad.Render(fmt.Sprintf("Missing (%d)", len(d.MissingPackages))), d.MissingPackages, r)
}

func textPackage(ew *errWriter, r *domain.Report) {
	p := r.Package
	ew.println(styleSection.Render("Package: " + p.Name))
	if p.NoData {
		ew.printf("  %s\n", styleDim.Render("no tracked languages"))
		return
	}
	ew.printf("  Coverage: %s  %s\n", Bar(p.Percent, barWidth), Percent(p.Percent))
	ew.printf("  Tracked:  %d languages\n", p.Total)
	ew.println("")

	textList(ew, styleGood.Render(fmt.Sprintf("Complete (%d)", len(p.Complete))), p.Complete, r)
	textList(ew, styleWarn.Render(fmt.Sprintf("Partial (%d)", len(p.Partial))), p.Partial, r)
	textList(ew, styleBad.Render(fmt.Sprintf("Missing (%d)", len(p.Missing))), p.Missing, r)
}

// textList prints a labeled list truncated at the report's top-N.
func textList(ew *errWriter, label string, items []string, r *domain.Report) {
	ew.println(label)
	if len(items) == 0 {
		ew.printf("    %s\n", styleDim.Render("(none)"))
		return
	}
	shown := limit(r, len(items))
	for _, item := range items[:shown] {
		ew.printf("    %s\n", item)
	}
	if rest := len(items) - shown; rest > 0 {
		ew.printf("    %s\n", styleDim.Render(fmt.Sprintf("... and %d more", rest)))
	}
}

func languageTable(langs []domain.LanguageStats) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"#", "Language", "Coverage", "", "Tracked"})
	for i, ls := range langs {
		coverage := Percent(ls.Percent)
		if ls.NoData {
			coverage = "no data"
		}
		tw.AppendRow(table.Row{i + 1, ls.Code, coverage, Bar(ls.Percent, barWidth), ls.Total})
	}
	return tw.Render()
}

func packageTable(pkgs []domain.PackageStats) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"#", "Package", "Languages", "Coverage"})
	for i, ps := range pkgs {
		coverage := Percent(ps.Percent)
		if ps.NoData {
			coverage = "no data"
		}
		tw.AppendRow(table.Row{i + 1, ps.Name, ps.Total, coverage})
	}
	return tw.Render()
}
