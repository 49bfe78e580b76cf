package domain

import "time"

// LanguageStats holds the coverage counts for a single language.
// All fields are derived from one snapshot; nothing is updated incrementally.
type LanguageStats struct {
	Code          string `json:"code"`
	Complete      int    `json:"complete"`
	Partial       int    `json:"partial"`
	Missing       int    `json:"missing"`
	NotApplicable int    `json:"not_applicable,omitempty"`
	// Total is the number of tracked packages: complete + partial + missing.
	// NotApplicable cells are excluded.
	Total int `json:"total"`
	// Percent is complete / total * 100, or 0 when no packages are tracked.
	Percent float64 `json:"percent"`
	// NoData is set when Total is 0, so a zero percentage from "nothing
	// tracked" is distinguishable from "nothing translated".
	NoData bool `json:"no_data,omitempty"`
}

// PackageStats holds, for a single package, the languages at each coverage
// state. Language lists are sorted by code.
type PackageStats struct {
	Name          string   `json:"name"`
	Complete      []string `json:"complete"`
	Partial       []string `json:"partial"`
	Missing       []string `json:"missing"`
	NotApplicable []string `json:"not_applicable,omitempty"`
	Total         int      `json:"total"`
	Percent       float64  `json:"percent"`
	NoData        bool     `json:"no_data,omitempty"`
}

// GlobalStats aggregates coverage across all languages and packages, plus the
// ranked top/bottom language lists.
type GlobalStats struct {
	Languages     int     `json:"languages"`
	Packages      int     `json:"packages"`
	Complete      int     `json:"complete"`
	Partial       int     `json:"partial"`
	Missing       int     `json:"missing"`
	NotApplicable int     `json:"not_applicable,omitempty"`
	Tracked       int     `json:"tracked"`
	Percent       float64 `json:"percent"`
	// MeanPercent and MedianPercent summarize the per-language percentages
	// of languages that have data.
	MeanPercent   float64 `json:"mean_percent"`
	MedianPercent float64 `json:"median_percent"`

	Top    []LanguageStats `json:"top"`
	Bottom []LanguageStats `json:"bottom"`
	// TopPackages and BottomPackages rank packages by how widely they are
	// translated (most/fewest tracked languages first).
	TopPackages    []PackageStats `json:"top_packages,omitempty"`
	BottomPackages []PackageStats `json:"bottom_packages,omitempty"`
}

// LanguageDetail partitions one language's packages by coverage state.
// Each list is sorted by package name.
type LanguageDetail struct {
	LanguageStats
	CompletePackages []string `json:"complete_packages"`
	PartialPackages  []string `json:"partial_packages"`
	MissingPackages  []string `json:"missing_packages"`
}

// Report is the statistics model handed to the renderer. It is a pure
// derivation of one snapshot; renderers project it without recomputing
// anything.
type Report struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Global      GlobalStats     `json:"global"`
	Languages   []LanguageStats `json:"languages,omitempty"`
	Packages    []PackageStats  `json:"packages,omitempty"`
	// Language is set when the report was filtered to a single language.
	Language *LanguageDetail `json:"language,omitempty"`
	// Package is set when the report was filtered to a single package.
	Package  *PackageStats `json:"package,omitempty"`
	TopN     int           `json:"top_n"`
	Warnings []Warning     `json:"warnings,omitempty"`
}
