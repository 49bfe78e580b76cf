package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/yeager/tp-stats/internal/domain"
)

func renderMarkdown(w io.Writer, r *domain.Report) error {
	ew := &errWriter{w: w}
	ew.println("# Translation Project Report")
	ew.println("")
	if !r.GeneratedAt.IsZero() {
		ew.printf("Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04"))
		ew.println("")
	}

	g := r.Global
	ew.println("## Overview")
	ew.println("")
	ew.println("| Metric | Value |")
	ew.println("|--------|-------|")
	ew.printf("| Languages | %d |\n", g.Languages)
	ew.printf("| Packages | %d |\n", g.Packages)
	ew.printf("| Tracked cells | %d |\n", g.Tracked)
	ew.printf("| Overall coverage | %s |\n", Percent(g.Percent))
	ew.println("")

	switch {
	case r.Language != nil:
		markdownLanguage(ew, r)
	case r.Package != nil:
		markdownPackage(ew, r)
	default:
		markdownGlobal(ew, r)
	}

	if len(r.Warnings) > 0 {
		ew.printf("## Warnings – %d\n", len(r.Warnings))
		ew.println("")
		for _, warning := range r.Warnings {
			ew.printf("- %s\n", warning.String())
		}
		ew.println("")
	}
	return ew.sinkErr()
}

func markdownGlobal(ew *errWriter, r *domain.Report) {
	g := r.Global
	ew.println("## Top Languages")
	ew.println("")
	ew.println("| Rank | Language | Coverage | Tracked |")
	ew.println("|------|----------|----------|---------|")
	for i, ls := range g.Top {
		ew.printf("| %d | [%s](%s) | %s | %d |\n", i+1, ls.Code, TeamURL(ls.Code), Percent(ls.Percent), ls.Total)
	}
	ew.println("")

	ew.println("## Bottom Languages")
	ew.println("")
	ew.println("| Rank | Language | Coverage | Tracked |")
	ew.println("|------|----------|----------|---------|")
	for i, ls := range g.Bottom {
		ew.printf("| %d | [%s](%s) | %s | %d |\n", i+1, ls.Code, TeamURL(ls.Code), Percent(ls.Percent), ls.Total)
	}
	ew.println("")

	ew.println("## Most Widely Translated Packages")
	ew.println("")
	ew.println("| Package | Languages | Coverage |")
	ew.println("|---------|-----------|----------|")
	for _, ps := range g.TopPackages {
		ew.printf("| [%s](%s) | %d | %s |\n", ps.Name, PackageURL(ps.Name), ps.Total, Percent(ps.Percent))
	}
	ew.println("")
}

func markdownLanguage(ew *errWriter, r *domain.Report) {
	d := r.Language
	ew.printf("## Language: %s\n", strings.ToUpper(d.Code))
	ew.println("")
	ew.printf("**Coverage:** %s\n", Percent(d.Percent))
	ew.println("")

	markdownList(ew, fmt.Sprintf("### Complete – %d packages", len(d.CompletePackages)), d.CompletePackages)
	markdownList(ew, fmt.Sprintf("### Partial – %d packages", len(d.PartialPackages)), d.PartialPackages)
	markdownList(ew, fmt.Sprintf("### Missing – %d packages", len(d.MissingPackages)), d.MissingPackages)
}

func markdownPackage(ew *errWriter, r *domain.Report) {
	p := r.Package
	ew.printf("## Package: [%s](%s)\n", p.Name, PackageURL(p.Name))
	ew.println("")
	ew.printf("**Coverage:** %s across %d tracked languages\n", Percent(p.Percent), p.Total)
	ew.println("")

	markdownList(ew, fmt.Sprintf("### Complete – %d languages", len(p.Complete)), p.Complete)
	markdownList(ew, fmt.Sprintf("### Partial – %d languages", len(p.Partial)), p.Partial)
	markdownList(ew, fmt.Sprintf("### Missing – %d languages", len(p.Missing)), p.Missing)
}

func markdownList(ew *errWriter, heading string, items []string) {
	ew.println(heading)
	ew.println("")
	if len(items) == 0 {
		ew.println("*None*")
	} else {
		for _, item := range items {
			ew.printf("- %s\n", item)
		}
	}
	ew.println("")
}
