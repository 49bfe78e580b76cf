// Package matrix parses the Translation Project's published status matrix
// into a normalized, classified snapshot of (language, package) coverage.
package matrix

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/yeager/tp-stats/internal/domain"
)

// ErrNoStructure is returned when the matrix content carries none of the
// hub's structural markers, i.e. the published format changed incompatibly.
// Everything short of that degrades to warnings.
var ErrNoStructure = errors.New("no recognizable matrix structure")

var (
	teamLink    = regexp.MustCompile(`/team/([^./]+)\.html$`)
	packageLink = regexp.MustCompile(`/domain/([^./]+)\.html$`)
)

// rowCell is one <td>/<th> of a matrix row: its collapsed text content and
// the first link target found inside it.
type rowCell struct {
	text string
	href string
}

// Parse reads the raw matrix HTML and produces a snapshot of raw status
// tokens. States are not derived here; run Vocabulary.ClassifySnapshot on
// the result, or use Build for the whole pipeline.
//
// Languages come from the header's team links, in column order. One row per
// package follows, with the package link in the first column and one status
// cell per language starting at the third column; a trailing count column is
// tolerated. The "Pct" summary row and rows without a package are structural
// and skipped. Malformed rows and duplicate cells are recorded as warnings.
func Parse(r io.Reader) (*domain.Snapshot, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read matrix content: %w", err)
	}

	var headerRows, bodyRows [][]rowCell
	var walk func(n *html.Node, inHeader bool)
	walk = func(n *html.Node, inHeader bool) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "thead":
				inHeader = true
			case "tr":
				cells := extractCells(n)
				if inHeader {
					headerRows = append(headerRows, cells)
				} else {
					bodyRows = append(bodyRows, cells)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inHeader)
		}
	}
	walk(doc, false)

	snap := &domain.Snapshot{Cells: make(map[domain.CellKey]domain.Cell)}

	// Language codes from the header's team links, case-normalized. columns
	// keeps every column in position, duplicates included, so body-row cells
	// stay aligned with their header column; snap.Languages is the
	// deduplicated view.
	var columns []string
	seen := make(map[string]bool)
	for _, row := range headerRows {
		for _, cell := range row {
			m := teamLink.FindStringSubmatch(cell.href)
			if m == nil {
				continue
			}
			code := domain.NormalizeLanguage(m[1])
			columns = append(columns, code)
			if seen[code] {
				snap.Warnings = append(snap.Warnings, domain.Warning{
					Kind:     domain.WarnDuplicateCell,
					Language: code,
					Detail:   "duplicate language column in matrix header",
				})
				continue
			}
			seen[code] = true
			snap.Languages = append(snap.Languages, code)
		}
	}
	if len(snap.Languages) == 0 {
		return nil, fmt.Errorf("matrix header has no team columns: %w", ErrNoStructure)
	}

	for _, row := range bodyRows {
		parseRow(snap, columns, row)
	}
	return snap, nil
}

// Build parses raw matrix content and classifies every cell in one step.
func Build(r io.Reader, vocab *Vocabulary) (*domain.Snapshot, error) {
	snap, err := Parse(r)
	if err != nil {
		return nil, err
	}
	vocab.ClassifySnapshot(snap)
	return snap, nil
}

// parseRow folds one body row into the snapshot. columns carries the
// language code of every status column in position, duplicates included.
func parseRow(snap *domain.Snapshot, columns []string, row []rowCell) {
	if len(row) == 0 {
		return
	}
	// The percentage summary row carries "Pct" in its second column.
	if len(row) > 1 && row[1].text == "Pct" {
		return
	}
	name := packageName(row[0])
	if name == "" {
		// Separator or footer row, not data.
		return
	}
	// Package column, its own summary column, then one cell per language.
	want := len(columns) + 2
	if len(row) < want {
		snap.Warnings = append(snap.Warnings, domain.Warning{
			Kind:    domain.WarnMalformedRow,
			Package: name,
			Detail:  fmt.Sprintf("expected at least %d cells, got %d", want, len(row)),
		})
		return
	}
	if !snap.HasPackage(name) {
		snap.Packages = append(snap.Packages, name)
	}
	for i, lang := range columns {
		token := row[i+2].text
		if token == "" {
			// Not tracked for this language; distinct from an explicit
			// missing token.
			continue
		}
		key := domain.CellKey{Language: lang, Package: name}
		if prev, dup := snap.Cells[key]; dup {
			snap.Warnings = append(snap.Warnings, domain.Warning{
				Kind:     domain.WarnDuplicateCell,
				Language: lang,
				Package:  name,
				Detail:   fmt.Sprintf("cell published twice, %q overwritten by %q", prev.RawToken, token),
			})
		}
		snap.Cells[key] = domain.Cell{Language: lang, Package: name, RawToken: token}
	}
}

// packageName extracts the package identifier from a row's first cell,
// preferring the hub's domain link over bare text.
func packageName(cell rowCell) string {
	if m := packageLink.FindStringSubmatch(cell.href); m != nil {
		return m[1]
	}
	return cell.text
}

// extractCells collects the td/th cells of a row node in document order.
func extractCells(tr *html.Node) []rowCell {
	var cells []rowCell
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "td" || n.Data == "th") {
			cells = append(cells, rowCell{
				text: cleanText(textContent(n)),
				href: firstHref(n),
			})
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return cells
}

// textContent concatenates all text nodes below n.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// firstHref returns the target of the first anchor below n, or "".
func firstHref(n *html.Node) string {
	var href string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if href != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, a := range n.Attr {
				if a.Key == "href" {
					href = a.Val
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return href
}

// cleanText collapses whitespace and encoding artifacts (non-breaking
// spaces) in cell content.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}
