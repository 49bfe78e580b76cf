package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yeager/tp-stats/internal/domain"
	"github.com/yeager/tp-stats/internal/gateway"
	"github.com/yeager/tp-stats/internal/matrix"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It lets us run the aggregation pipeline without touching the network.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchMatrix(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockFetcher) FetchTeams(ctx context.Context) ([]gateway.Team, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gateway.Team), args.Error(1)
}

func (m *mockFetcher) FetchTeamPage(ctx context.Context, code string) (*gateway.TeamPage, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.TeamPage), args.Error(1)
}

func (m *mockFetcher) DownloadPOFiles(ctx context.Context, urls []string, destDir string) ([]gateway.Download, error) {
	args := m.Called(ctx, urls, destDir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gateway.Download), args.Error(1)
}

// buildSnapshot constructs a classified snapshot directly, bypassing the parser.
func buildSnapshot(langs, pkgs []string, states map[domain.CellKey]domain.CoverageState) *domain.Snapshot {
	snap := &domain.Snapshot{
		Languages: langs,
		Packages:  pkgs,
		Cells:     make(map[domain.CellKey]domain.Cell),
	}
	for key, state := range states {
		snap.Cells[key] = domain.Cell{
			Language: key.Language,
			Package:  key.Package,
			RawToken: string(state),
			State:    state,
		}
	}
	return snap
}

// exampleSnapshot is the two-language, three-package scenario used across
// several tests: sv has 1/3 complete, de has 2/3.
func exampleSnapshot() *domain.Snapshot {
	return buildSnapshot(
		[]string{"sv", "de"},
		[]string{"a", "b", "c"},
		map[domain.CellKey]domain.CoverageState{
			{Language: "sv", Package: "a"}: domain.Complete,
			{Language: "sv", Package: "b"}: domain.Partial,
			{Language: "sv", Package: "c"}: domain.Missing,
			{Language: "de", Package: "a"}: domain.Complete,
			{Language: "de", Package: "b"}: domain.Complete,
			{Language: "de", Package: "c"}: domain.Missing,
		},
	)
}

func TestBuildReport_GlobalScenario(t *testing.T) {
	snap := exampleSnapshot()
	report, err := BuildReport(snap, Options{TopN: 1}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Global.Languages)
	assert.Equal(t, 3, report.Global.Packages)
	assert.Equal(t, 3, report.Global.Complete)
	assert.Equal(t, 1, report.Global.Partial)
	assert.Equal(t, 2, report.Global.Missing)
	assert.Equal(t, 6, report.Global.Tracked)

	require.Len(t, report.Global.Top, 1)
	assert.Equal(t, "de", report.Global.Top[0].Code)
	assert.InDelta(t, 66.7, report.Global.Top[0].Percent, 0.05)

	require.Len(t, report.Global.Bottom, 1)
	assert.Equal(t, "sv", report.Global.Bottom[0].Code)
	assert.InDelta(t, 33.3, report.Global.Bottom[0].Percent, 0.05)

	// Package a is complete in both languages.
	pkg, ok := PackageBreakdown(snap, "a")
	require.True(t, ok)
	assert.Equal(t, []string{"de", "sv"}, pkg.Complete)
	assert.Empty(t, pkg.Partial)
	assert.Empty(t, pkg.Missing)
	assert.InDelta(t, 100.0, pkg.Percent, 0.001)
}

// TestBuildReport_Deterministic verifies that aggregating the same snapshot
// twice yields byte-identical statistics.
func TestBuildReport_Deterministic(t *testing.T) {
	snap := exampleSnapshot()

	first, err := BuildReport(snap, Options{TopN: 2}, time.Time{})
	require.NoError(t, err)
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := BuildReport(snap, Options{TopN: 2}, time.Time{})
		require.NoError(t, err)
		againJSON, err := json.Marshal(again)
		require.NoError(t, err)
		assert.Equal(t, firstJSON, againJSON)
	}
}

func TestLanguageStatistics_PercentInvariants(t *testing.T) {
	snap := buildSnapshot(
		[]string{"sv", "de", "fr"},
		[]string{"a", "b"},
		map[domain.CellKey]domain.CoverageState{
			{Language: "sv", Package: "a"}: domain.Complete,
			{Language: "sv", Package: "b"}: domain.Complete,
			{Language: "de", Package: "a"}: domain.Missing,
			// fr tracks nothing.
		},
	)

	stats := LanguageStatistics(snap)
	require.Len(t, stats, 3)
	for _, ls := range stats {
		assert.GreaterOrEqual(t, ls.Percent, 0.0, ls.Code)
		assert.LessOrEqual(t, ls.Percent, 100.0, ls.Code)
		if ls.Total == 0 {
			assert.Zero(t, ls.Percent, ls.Code)
			assert.True(t, ls.NoData, ls.Code)
		}
	}

	// Sorted by code: de, fr, sv.
	assert.Equal(t, "de", stats[0].Code)
	assert.Zero(t, stats[0].Percent)
	assert.False(t, stats[0].NoData)
	assert.Equal(t, "fr", stats[1].Code)
	assert.True(t, stats[1].NoData)
	assert.Equal(t, "sv", stats[2].Code)
	assert.InDelta(t, 100.0, stats[2].Percent, 0.001)
}

// TestNotApplicableExcluded verifies that not-applicable cells never move a
// percentage at any aggregation level.
func TestNotApplicableExcluded(t *testing.T) {
	base := buildSnapshot(
		[]string{"sv"},
		[]string{"a", "b", "c"},
		map[domain.CellKey]domain.CoverageState{
			{Language: "sv", Package: "a"}: domain.Complete,
			{Language: "sv", Package: "b"}: domain.Missing,
		},
	)
	withNA := buildSnapshot(
		[]string{"sv"},
		[]string{"a", "b", "c"},
		map[domain.CellKey]domain.CoverageState{
			{Language: "sv", Package: "a"}: domain.Complete,
			{Language: "sv", Package: "b"}: domain.Missing,
			{Language: "sv", Package: "c"}: domain.NotApplicable,
		},
	)

	baseLang := LanguageStatistics(base)[0]
	naLang := LanguageStatistics(withNA)[0]
	assert.Equal(t, baseLang.Percent, naLang.Percent)
	assert.Equal(t, baseLang.Total, naLang.Total)
	assert.Equal(t, 1, naLang.NotApplicable)

	assert.Equal(t, GlobalStatistics(base, 0).Percent, GlobalStatistics(withNA, 0).Percent)
}

// TestTopBottomComplement checks that at N = language count the bottom list
// is the exact reverse of the top list.
func TestTopBottomComplement(t *testing.T) {
	snap := buildSnapshot(
		[]string{"sv", "de", "fr", "nl", "fi"},
		[]string{"a", "b"},
		map[domain.CellKey]domain.CoverageState{
			{Language: "sv", Package: "a"}: domain.Complete,
			{Language: "sv", Package: "b"}: domain.Complete,
			{Language: "de", Package: "a"}: domain.Complete,
			{Language: "de", Package: "b"}: domain.Missing,
			// fr and nl tie at 50% with equal totals; code breaks the tie.
			{Language: "fr", Package: "a"}: domain.Complete,
			{Language: "fr", Package: "b"}: domain.Partial,
			{Language: "nl", Package: "a"}: domain.Complete,
			{Language: "nl", Package: "b"}: domain.Partial,
			{Language: "fi", Package: "a"}: domain.Missing,
		},
	)

	ranked := Rank(LanguageStatistics(snap))
	n := len(ranked)

	top := Top(ranked, n)
	bottom := Bottom(ranked, n)
	require.Len(t, bottom, n)
	for i := range top {
		assert.Equal(t, top[i], bottom[n-1-i], "position %d", i)
	}

	// The documented tie-break: fr sorts before nl at equal percent/total.
	codes := make([]string, 0, n)
	for _, ls := range top {
		codes = append(codes, ls.Code)
	}
	assert.Equal(t, []string{"sv", "de", "fr", "nl", "fi"}, codes)
}

func TestTopBottomClamping(t *testing.T) {
	snap := exampleSnapshot()
	ranked := Rank(LanguageStatistics(snap))

	assert.Len(t, Top(ranked, 100), 2, "N beyond language count returns everything")
	assert.Len(t, Bottom(ranked, 100), 2)
	assert.Empty(t, Top(ranked, 0), "N = 0 returns an empty list")
	assert.Empty(t, Bottom(ranked, 0))
	assert.Empty(t, Top(ranked, -3))
}

func TestLanguageBreakdown(t *testing.T) {
	snap := exampleSnapshot()

	detail, ok := LanguageBreakdown(snap, "SV")
	require.True(t, ok, "lookup is case-insensitive")
	assert.Equal(t, "sv", detail.Code)
	assert.Equal(t, []string{"a"}, detail.CompletePackages)
	assert.Equal(t, []string{"b"}, detail.PartialPackages)
	assert.Equal(t, []string{"c"}, detail.MissingPackages)

	_, ok = LanguageBreakdown(snap, "xx")
	assert.False(t, ok)
}

func TestResolveLanguage_VariantFallback(t *testing.T) {
	snap := buildSnapshot([]string{"br", "sv"}, nil, nil)

	resolved, ok := ResolveLanguage(snap, "pt_BR")
	require.True(t, ok)
	assert.Equal(t, "br", resolved)

	_, ok = ResolveLanguage(snap, "pt_PT")
	assert.False(t, ok)
}

func TestBuildReport_UnknownFilters(t *testing.T) {
	snap := exampleSnapshot()

	_, err := BuildReport(snap, Options{Language: "xx"}, time.Time{})
	var langErr *UnknownLanguageError
	require.ErrorAs(t, err, &langErr)
	assert.Equal(t, []string{"de", "sv"}, langErr.Available)

	_, err = BuildReport(snap, Options{Package: "coreutil"}, time.Time{})
	var pkgErr *UnknownPackageError
	require.ErrorAs(t, err, &pkgErr)
	assert.Empty(t, pkgErr.Suggestions)
}

func TestSuggestPackages(t *testing.T) {
	snap := buildSnapshot(nil, []string{"coreutils", "gnulib", "libc", "util-linux"}, nil)
	assert.Equal(t, []string{"coreutils", "util-linux"}, SuggestPackages(snap, "UTIL"))
}

// TestAggregator_Report drives the full pipeline through a mocked gateway.
func TestAggregator_Report(t *testing.T) {
	const matrixHTML = `<table><thead><tr>
		<th>Domain</th><th>Pct</th>
		<th><a href="../team/sv.html">sv</a></th>
		<th><a href="../team/de.html">de</a></th>
	</tr></thead><tbody>
	<tr><td><a href="../domain/grep.html">grep</a></td><td>50%</td><td>100%</td><td>10%</td></tr>
	</tbody></table>`

	testCases := []struct {
		name        string
		matrix      []byte
		fetchErr    error
		opts        Options
		expectError bool
		check       func(t *testing.T, report *domain.Report)
	}{
		{
			name:   "happy path - global report",
			matrix: []byte(matrixHTML),
			opts:   Options{TopN: 5},
			check: func(t *testing.T, report *domain.Report) {
				assert.Equal(t, 2, report.Global.Languages)
				assert.Equal(t, 1, report.Global.Packages)
				require.Len(t, report.Global.Top, 2)
				assert.Equal(t, "sv", report.Global.Top[0].Code)
				assert.False(t, report.GeneratedAt.IsZero())
			},
		},
		{
			name:        "error case - fetch fails",
			fetchErr:    errors.New("hub unreachable"),
			opts:        Options{TopN: 5},
			expectError: true,
		},
		{
			name:        "error case - matrix lost its structure",
			matrix:      []byte("<html><body>maintenance</body></html>"),
			opts:        Options{TopN: 5},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			if tc.fetchErr != nil {
				fetcher.On("FetchMatrix", mock.Anything).Return(nil, tc.fetchErr)
			} else {
				fetcher.On("FetchMatrix", mock.Anything).Return(tc.matrix, nil)
			}

			aggregator := NewAggregator(fetcher, matrix.DefaultVocabulary(), log.New(io.Discard))
			report, err := aggregator.Report(context.Background(), tc.opts)

			if tc.expectError {
				assert.Error(t, err)
				assert.Nil(t, report)
			} else {
				require.NoError(t, err)
				tc.check(t, report)
			}
			fetcher.AssertExpectations(t)
		})
	}
}

// TestAggregator_ParseErrorIsDistinct checks that a structurally broken
// matrix surfaces ErrNoStructure rather than an empty result.
func TestAggregator_ParseErrorIsDistinct(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("FetchMatrix", mock.Anything).Return([]byte("not a matrix"), nil)

	aggregator := NewAggregator(fetcher, matrix.DefaultVocabulary(), log.New(io.Discard))
	_, err := aggregator.Report(context.Background(), Options{})
	assert.ErrorIs(t, err, matrix.ErrNoStructure)
}
