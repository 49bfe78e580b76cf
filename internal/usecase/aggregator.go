// Package usecase contains the business logic of the application.
package usecase

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/montanaflynn/stats"

	"github.com/yeager/tp-stats/internal/domain"
	"github.com/yeager/tp-stats/internal/gateway"
	"github.com/yeager/tp-stats/internal/matrix"
)

// Options select what a report covers. Language and Package are mutually
// exclusive filters; TopN bounds the ranked lists and is clamped to the
// number of available entries.
type Options struct {
	Language string
	Package  string
	TopN     int
}

// UnknownLanguageError is returned when a language filter matches nothing in
// the snapshot.
type UnknownLanguageError struct {
	Code      string
	Available []string
}

func (e *UnknownLanguageError) Error() string {
	return fmt.Sprintf("language %q not found in matrix", e.Code)
}

// UnknownPackageError is returned when a package filter matches nothing in
// the snapshot. Suggestions holds close names for a "did you mean" hint.
type UnknownPackageError struct {
	Name        string
	Suggestions []string
}

func (e *UnknownPackageError) Error() string {
	return fmt.Sprintf("package %q not found in matrix", e.Name)
}

// Aggregator is the use case for aggregating translation coverage.
// It orchestrates fetching the matrix, classifying it, and deriving
// statistics.
type Aggregator struct {
	fetcher gateway.Fetcher
	vocab   *matrix.Vocabulary
	logger  *log.Logger
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, vocab *matrix.Vocabulary, logger *log.Logger) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		vocab:   vocab,
		logger:  logger,
	}
}

// Snapshot fetches the hub's status matrix and builds one classified
// snapshot from it. Every call constructs a fresh snapshot; nothing is
// cached between runs.
func (a *Aggregator) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	a.logger.Debug("Fetching status matrix")
	body, err := a.fetcher.FetchMatrix(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch matrix: %w", err)
	}
	snap, err := matrix.Build(bytes.NewReader(body), a.vocab)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Matrix loaded",
		"languages", len(snap.Languages),
		"packages", len(snap.Packages),
		"cells", len(snap.Cells),
		"warnings", len(snap.Warnings))
	return snap, nil
}

// Report fetches a snapshot and derives the requested statistics from it.
func (a *Aggregator) Report(ctx context.Context, opts Options) (*domain.Report, error) {
	snap, err := a.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	report, err := BuildReport(snap, opts, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Aggregation complete")
	return report, nil
}

// BuildReport derives a statistics report from one classified snapshot.
// It is pure: calling it twice on the same snapshot yields identical output.
func BuildReport(snap *domain.Snapshot, opts Options, now time.Time) (*domain.Report, error) {
	report := &domain.Report{
		GeneratedAt: now,
		Global:      GlobalStatistics(snap, opts.TopN),
		TopN:        opts.TopN,
		Warnings:    snap.Warnings,
	}

	switch {
	case opts.Language != "":
		detail, ok := LanguageBreakdown(snap, opts.Language)
		if !ok {
			available := append([]string(nil), snap.Languages...)
			sort.Strings(available)
			return nil, &UnknownLanguageError{Code: opts.Language, Available: available}
		}
		report.Language = detail
	case opts.Package != "":
		pkg, ok := PackageBreakdown(snap, opts.Package)
		if !ok {
			return nil, &UnknownPackageError{Name: opts.Package, Suggestions: SuggestPackages(snap, opts.Package)}
		}
		report.Package = pkg
	default:
		report.Languages = LanguageStatistics(snap)
		report.Packages = PackageStatistics(snap)
	}
	return report, nil
}

// LanguageStatistics computes coverage counts for every language in the
// snapshot, sorted by language code.
func LanguageStatistics(snap *domain.Snapshot) []domain.LanguageStats {
	result := make([]domain.LanguageStats, 0, len(snap.Languages))
	for _, lang := range snap.Languages {
		ls := domain.LanguageStats{Code: lang}
		for _, pkg := range snap.Packages {
			cell, ok := snap.Cell(lang, pkg)
			if !ok {
				continue
			}
			switch cell.State {
			case domain.Complete:
				ls.Complete++
			case domain.Partial:
				ls.Partial++
			case domain.Missing:
				ls.Missing++
			case domain.NotApplicable:
				ls.NotApplicable++
			}
		}
		ls.Total = ls.Complete + ls.Partial + ls.Missing
		ls.Percent = percent(ls.Complete, ls.Total)
		ls.NoData = ls.Total == 0
		result = append(result, ls)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Code < result[j].Code
	})
	return result
}

// PackageStatistics computes coverage for every package in the snapshot,
// sorted by package name.
func PackageStatistics(snap *domain.Snapshot) []domain.PackageStats {
	result := make([]domain.PackageStats, 0, len(snap.Packages))
	for _, pkg := range snap.Packages {
		ps, _ := PackageBreakdown(snap, pkg)
		result = append(result, *ps)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// GlobalStatistics computes the snapshot-wide totals and the ranked top-N
// and bottom-N lists.
func GlobalStatistics(snap *domain.Snapshot, topN int) domain.GlobalStats {
	g := domain.GlobalStats{
		Languages: len(snap.Languages),
		Packages:  len(snap.Packages),
	}
	for _, cell := range snap.Cells {
		switch cell.State {
		case domain.Complete:
			g.Complete++
		case domain.Partial:
			g.Partial++
		case domain.Missing:
			g.Missing++
		case domain.NotApplicable:
			g.NotApplicable++
		}
	}
	g.Tracked = g.Complete + g.Partial + g.Missing
	g.Percent = percent(g.Complete, g.Tracked)

	ranked := Rank(LanguageStatistics(snap))
	g.Top = Top(ranked, topN)
	g.Bottom = Bottom(ranked, topN)

	var percents []float64
	for _, ls := range ranked {
		if !ls.NoData {
			percents = append(percents, ls.Percent)
		}
	}
	// Mean and Median error only on empty input, which leaves the zero value.
	if len(percents) > 0 {
		g.MeanPercent, _ = stats.Mean(percents)
		g.MedianPercent, _ = stats.Median(percents)
	}

	rankedPkgs := RankPackages(PackageStatistics(snap))
	g.TopPackages = clip(rankedPkgs, topN)
	g.BottomPackages = clip(reversed(rankedPkgs), topN)
	return g
}

// Rank orders language stats by percentage complete descending, breaking
// ties by higher tracked-package count, then by language code. The order is
// total, so ranking the same stats twice yields identical output.
func Rank(langs []domain.LanguageStats) []domain.LanguageStats {
	ranked := append([]domain.LanguageStats(nil), langs...)
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Percent != b.Percent {
			return a.Percent > b.Percent
		}
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Code < b.Code
	})
	return ranked
}

// Top returns the first n entries of the ranked order. n is clamped to
// [0, len(ranked)]; asking for more than exists returns everything.
func Top(ranked []domain.LanguageStats, n int) []domain.LanguageStats {
	return clip(ranked, n)
}

// Bottom returns the last n entries of the ranked order, worst first. It is
// the exact reverse of the ranking Top uses, so at n = len(ranked) the two
// lists are mirror images.
func Bottom(ranked []domain.LanguageStats, n int) []domain.LanguageStats {
	return clip(reversed(ranked), n)
}

// RankPackages orders package stats by tracked-language count descending,
// then percentage, then name.
func RankPackages(pkgs []domain.PackageStats) []domain.PackageStats {
	ranked := append([]domain.PackageStats(nil), pkgs...)
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		if a.Percent != b.Percent {
			return a.Percent > b.Percent
		}
		return a.Name < b.Name
	})
	return ranked
}

// LanguageBreakdown partitions one language's packages by coverage state.
// The code is resolved case-insensitively, with a locale-variant fallback
// (pt_BR matches the hub's bare "br" team when no "pt_br" team exists).
func LanguageBreakdown(snap *domain.Snapshot, code string) (*domain.LanguageDetail, bool) {
	resolved, ok := ResolveLanguage(snap, code)
	if !ok {
		return nil, false
	}

	detail := &domain.LanguageDetail{
		CompletePackages: []string{},
		PartialPackages:  []string{},
		MissingPackages:  []string{},
	}
	for _, ls := range LanguageStatistics(snap) {
		if ls.Code == resolved {
			detail.LanguageStats = ls
			break
		}
	}

	pkgs := append([]string(nil), snap.Packages...)
	sort.Strings(pkgs)
	for _, pkg := range pkgs {
		cell, ok := snap.Cell(resolved, pkg)
		if !ok {
			continue
		}
		switch cell.State {
		case domain.Complete:
			detail.CompletePackages = append(detail.CompletePackages, pkg)
		case domain.Partial:
			detail.PartialPackages = append(detail.PartialPackages, pkg)
		case domain.Missing:
			detail.MissingPackages = append(detail.MissingPackages, pkg)
		}
	}
	return detail, true
}

// PackageBreakdown partitions one package's languages by coverage state.
// Package name comparison is exact.
func PackageBreakdown(snap *domain.Snapshot, name string) (*domain.PackageStats, bool) {
	if !snap.HasPackage(name) {
		return nil, false
	}
	ps := &domain.PackageStats{
		Name:     name,
		Complete: []string{},
		Partial:  []string{},
		Missing:  []string{},
	}
	langs := append([]string(nil), snap.Languages...)
	sort.Strings(langs)
	for _, lang := range langs {
		cell, ok := snap.Cell(lang, name)
		if !ok {
			continue
		}
		switch cell.State {
		case domain.Complete:
			ps.Complete = append(ps.Complete, lang)
		case domain.Partial:
			ps.Partial = append(ps.Partial, lang)
		case domain.Missing:
			ps.Missing = append(ps.Missing, lang)
		case domain.NotApplicable:
			ps.NotApplicable = append(ps.NotApplicable, lang)
		}
	}
	ps.Total = len(ps.Complete) + len(ps.Partial) + len(ps.Missing)
	ps.Percent = percent(len(ps.Complete), ps.Total)
	ps.NoData = ps.Total == 0
	return ps, true
}

// ResolveLanguage maps a user-supplied language code to a snapshot language.
// It tries the normalized code first, then the variant suffix (pt_BR → br).
func ResolveLanguage(snap *domain.Snapshot, code string) (string, bool) {
	normalized := domain.NormalizeLanguage(code)
	if snap.HasLanguage(normalized) {
		return normalized, true
	}
	if _, suffix, found := strings.Cut(normalized, "_"); found && snap.HasLanguage(suffix) {
		return suffix, true
	}
	return "", false
}

// SuggestPackages returns up to five package names containing the given
// name, for "did you mean" hints.
func SuggestPackages(snap *domain.Snapshot, name string) []string {
	needle := strings.ToLower(name)
	var matches []string
	for _, pkg := range snap.Packages {
		if strings.Contains(strings.ToLower(pkg), needle) {
			matches = append(matches, pkg)
		}
	}
	sort.Strings(matches)
	return clip(matches, 5)
}

// percent is the one place the completion percentage is computed:
// complete / total * 100, or 0 when nothing is tracked.
func percent(complete, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(complete) / float64(total) * 100
}

// clip returns at most n leading elements of s as a fresh slice, clamping n
// to [0, len(s)].
func clip[T any](s []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if n > len(s) {
		n = len(s)
	}
	return append([]T(nil), s[:n]...)
}

// reversed returns a reversed copy of s.
func reversed[T any](s []T) []T {
	out := make([]T, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}
