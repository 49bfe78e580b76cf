package cmd

import (
	"errors"
	"strings"

	"github.com/yeager/tp-stats/internal/usecase"
)

// hintAvailableMax caps how many language codes the hint lists.
const hintAvailableMax = 20

// filterHint turns an unknown-filter error into a hint line naming what the
// matrix does carry: the available language codes on a language miss, close
// package names on a package miss.
func filterHint(err error) (string, bool) {
	var unknownLang *usecase.UnknownLanguageError
	if errors.As(err, &unknownLang) && len(unknownLang.Available) > 0 {
		codes := unknownLang.Available
		suffix := ""
		if len(codes) > hintAvailableMax {
			codes = codes[:hintAvailableMax]
			suffix = ", ..."
		}
		return "Available languages: " + strings.Join(codes, ", ") + suffix, true
	}
	var unknownPkg *usecase.UnknownPackageError
	if errors.As(err, &unknownPkg) && len(unknownPkg.Suggestions) > 0 {
		return "Did you mean: " + strings.Join(unknownPkg.Suggestions, ", "), true
	}
	return "", false
}
