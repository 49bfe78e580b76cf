package report

import (
	"io"
	"strings"

	"github.com/yeager/tp-stats/internal/domain"
)

// renderGitHub emits GitHub Actions workflow annotations, one line per
// finding, so coverage regressions and matrix warnings surface directly in
// CI job output.
func renderGitHub(w io.Writer, r *domain.Report) error {
	ew := &errWriter{w: w}

	g := r.Global
	ew.printf("::notice title=Translation coverage::overall %s complete (%d/%d tracked cells, %d languages, %d packages)\n",
		Percent(g.Percent), g.Complete, g.Tracked, g.Languages, g.Packages)

	switch {
	case r.Language != nil:
		d := r.Language
		ew.printf("::notice title=Language %s::%s complete (%d complete, %d partial, %d missing)\n",
			strings.ToUpper(d.Code), Percent(d.Percent), d.Complete, d.Partial, d.Missing)
	case r.Package != nil:
		p := r.Package
		ew.printf("::notice title=Package %s::%s complete (%d complete, %d partial, %d missing languages)\n",
			p.Name, Percent(p.Percent), len(p.Complete), len(p.Partial), len(p.Missing))
	}

	for _, warning := range r.Warnings {
		ew.printf("::warning title=%s::%s\n", warning.Kind, warning.String())
	}
	return ew.sinkErr()
}
