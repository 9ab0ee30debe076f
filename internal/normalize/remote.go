package normalize

import (
	"regexp"
	"strings"

	"jobmill-engine/internal/domain"
)

var remoteWord = regexp.MustCompile(`\bremote\b`)

// Phrase tables for remote classification. The partial phrases are checked
// before the bare-word rules so "remote option" never counts as fully
// remote even though it contains the standalone word.
var (
	remoteYesPhrases     = []string{"fully remote", "100% remote"}
	remotePartialPhrases = []string{"hybrid", "remote option", "partially remote"}
	onsiteWords          = []string{"office", "onsite"}
)

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

// RemoteStatus classifies text as yes/partial/no. Rules are evaluated in
// order: explicit fully-remote phrases, then hybrid-style phrases, then the
// standalone word "remote" (yes on its own, partial next to office/onsite).
func RemoteStatus(text string) string {
	t := strings.ToLower(text)

	if containsAny(t, remoteYesPhrases) {
		return domain.RemoteYes
	}
	if containsAny(t, remotePartialPhrases) {
		return domain.RemotePartial
	}
	if remoteWord.MatchString(t) {
		if containsAny(t, onsiteWords) {
			return domain.RemotePartial
		}
		return domain.RemoteYes
	}
	return domain.RemoteNo
}
