package matrix

import (
	_ "embed"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yeager/tp-stats/internal/domain"
)

//go:embed vocabulary.yaml
var defaultVocabularyYAML []byte

// percentToken matches the hub's percent cell encoding, e.g. "47%".
var percentToken = regexp.MustCompile(`^([0-9]{1,3})%$`)

// Vocabulary is the token-to-state lookup table for the hub's status matrix.
// It is the single source of truth for word tokens; adding a new hub token is
// a one-line edit of the vocabulary file.
type Vocabulary struct {
	tokens map[string]domain.CoverageState
}

type vocabularyFile struct {
	Tokens map[string]string `yaml:"tokens"`
}

// DefaultVocabulary returns the vocabulary embedded in the binary. It panics
// only if the embedded file is invalid, which is covered by tests.
func DefaultVocabulary() *Vocabulary {
	v, err := LoadVocabulary(strings.NewReader(string(defaultVocabularyYAML)))
	if err != nil {
		panic(fmt.Sprintf("embedded vocabulary is invalid: %v", err))
	}
	return v
}

// LoadVocabulary reads a YAML vocabulary and validates every mapped state.
func LoadVocabulary(r io.Reader) (*Vocabulary, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary: %w", err)
	}
	var file vocabularyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary: %w", err)
	}
	if len(file.Tokens) == 0 {
		return nil, fmt.Errorf("vocabulary defines no tokens")
	}
	tokens := make(map[string]domain.CoverageState, len(file.Tokens))
	for token, state := range file.Tokens {
		s := domain.CoverageState(state)
		if !s.Valid() {
			return nil, fmt.Errorf("vocabulary token %q maps to unknown state %q", token, state)
		}
		tokens[strings.ToLower(strings.TrimSpace(token))] = s
	}
	return &Vocabulary{tokens: tokens}, nil
}

// Classify maps a raw status token to a coverage state. The second return
// value reports whether the token was recognized; unrecognized tokens
// classify as Missing so the pipeline keeps working when the hub introduces
// new token text.
func (v *Vocabulary) Classify(token string) (domain.CoverageState, bool) {
	normalized := strings.ToLower(strings.TrimSpace(token))
	if state, ok := v.tokens[normalized]; ok {
		return state, true
	}
	// The hub encodes cell completion as an integer percentage: 100 is
	// complete, 0 is missing, anything between is partial.
	if m := percentToken.FindStringSubmatch(normalized); m != nil {
		pct, err := strconv.Atoi(m[1])
		if err == nil && pct <= 100 {
			switch {
			case pct == 100:
				return domain.Complete, true
			case pct == 0:
				return domain.Missing, true
			default:
				return domain.Partial, true
			}
		}
	}
	return domain.Missing, false
}

// ClassifySnapshot derives the coverage state of every cell in s and records
// an unrecognized-token warning for each token outside the vocabulary.
// Cells are visited in row/column order so warnings come out in a stable
// order across runs. It must run exactly once, before the snapshot is handed
// to the aggregator.
func (v *Vocabulary) ClassifySnapshot(s *domain.Snapshot) {
	for _, pkg := range s.Packages {
		for _, lang := range s.Languages {
			key := domain.CellKey{Language: lang, Package: pkg}
			cell, ok := s.Cells[key]
			if !ok {
				continue
			}
			state, known := v.Classify(cell.RawToken)
			cell.State = state
			s.Cells[key] = cell
			if !known {
				s.Warnings = append(s.Warnings, domain.Warning{
					Kind:     domain.WarnUnknownToken,
					Language: cell.Language,
					Package:  cell.Package,
					Detail:   fmt.Sprintf("unrecognized status token %q, classified as missing", cell.RawToken),
				})
			}
		}
	}
}
