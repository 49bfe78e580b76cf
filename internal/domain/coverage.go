// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"fmt"
	"strings"
)

// CoverageState describes the translation status of one package for one language.
// It is a closed enumeration; every classified cell carries exactly one state.
type CoverageState string

const (
	// Complete means the translation is finished (the hub reports 100%).
	Complete CoverageState = "complete"
	// Partial means a translation exists but is incomplete or fuzzy-only.
	Partial CoverageState = "partial"
	// Missing means the hub tracks the pair but no usable translation exists.
	Missing CoverageState = "missing"
	// NotApplicable means the package does not ship to this language or is
	// excluded/disabled. NotApplicable cells never enter percentage denominators.
	NotApplicable CoverageState = "not_applicable"
)

// Valid reports whether s is one of the defined coverage states.
func (s CoverageState) Valid() bool {
	switch s {
	case Complete, Partial, Missing, NotApplicable:
		return true
	}
	return false
}

// CellKey identifies one (language, package) pair within a snapshot.
// Language is case-normalized; package comparison is exact.
type CellKey struct {
	Language string
	Package  string
}

// Cell is one entry of the status matrix: a raw token as published by the hub
// plus the coverage state derived from it. The state is always derived from
// the token, never set independently.
type Cell struct {
	Language string        `json:"language"`
	Package  string        `json:"package"`
	RawToken string        `json:"raw_token"`
	State    CoverageState `json:"state"`
}

// WarningKind distinguishes the non-fatal conditions recorded while building
// a snapshot.
type WarningKind string

const (
	// WarnMalformedRow marks a matrix row with the wrong field count.
	WarnMalformedRow WarningKind = "malformed_row"
	// WarnDuplicateCell marks a (language, package) pair published twice;
	// the later occurrence wins.
	WarnDuplicateCell WarningKind = "duplicate_cell"
	// WarnUnknownToken marks a status token outside the known vocabulary;
	// the cell is classified as Missing.
	WarnUnknownToken WarningKind = "unknown_token"
)

// Warning is a non-fatal condition recorded during parsing or classification.
// Warnings are accumulated alongside successful results, never thrown away.
type Warning struct {
	Kind     WarningKind `json:"kind"`
	Language string      `json:"language,omitempty"`
	Package  string      `json:"package,omitempty"`
	Detail   string      `json:"detail"`
}

func (w Warning) String() string {
	var loc string
	if w.Language != "" || w.Package != "" {
		loc = fmt.Sprintf(" (%s/%s)", w.Language, w.Package)
	}
	return fmt.Sprintf("%s%s: %s", w.Kind, loc, w.Detail)
}

// Snapshot is one fetched and classified instance of the status matrix.
// It is immutable once built; all statistics are derived from it on demand.
type Snapshot struct {
	// Languages holds the case-normalized language codes in header order.
	Languages []string
	// Packages holds the package names in row order.
	Packages []string
	// Cells maps each tracked (language, package) pair to its cell. Absence
	// of a key means the pair is not tracked, which is distinct from an
	// explicit Missing token.
	Cells map[CellKey]Cell
	// Warnings collected while parsing and classifying the matrix.
	Warnings []Warning
}

// Cell returns the cell for the given pair and whether the pair is tracked.
func (s *Snapshot) Cell(language, pkg string) (Cell, bool) {
	c, ok := s.Cells[CellKey{Language: language, Package: pkg}]
	return c, ok
}

// HasLanguage reports whether code appears in the snapshot header.
func (s *Snapshot) HasLanguage(code string) bool {
	code = NormalizeLanguage(code)
	for _, l := range s.Languages {
		if l == code {
			return true
		}
	}
	return false
}

// HasPackage reports whether name appears in the snapshot. Comparison is exact.
func (s *Snapshot) HasPackage(name string) bool {
	for _, p := range s.Packages {
		if p == name {
			return true
		}
	}
	return false
}

// NormalizeLanguage lower-cases and trims a language code for comparison.
func NormalizeLanguage(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
