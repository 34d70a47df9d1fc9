package exam

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/techops-academy/certifier/internal/model"
)

// NormalizeAnswer canonicalizes a free-text submission for comparison:
// lower-case, decompose (NFD) and drop combining marks, discard everything
// outside [a-z0-9] and whitespace, then trim. "DNS szerver" and "dns szerver"
// normalize identically; so do answers differing only in accents.
//
// The function is idempotent: normalizing an already-normalized string is a
// no-op.
func NormalizeAnswer(s string) string {
	lowered := strings.ToLower(s)

	// The chain carries per-use buffers, so build it per call rather than
	// sharing one across goroutines.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		stripped = lowered
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// GradeFreeText reports whether a submission matches any accepted or hidden
// answer of the question after normalization. Typos are accepted only to the
// extent the hidden-answer list captures them; there is no fuzzy matching.
func GradeFreeText(q model.Question, submission string) bool {
	normalized := NormalizeAnswer(submission)
	if normalized == "" {
		return false
	}
	for _, accepted := range q.AcceptedAnswers {
		if NormalizeAnswer(accepted) == normalized {
			return true
		}
	}
	for _, hidden := range q.HiddenAnswers {
		if NormalizeAnswer(hidden) == normalized {
			return true
		}
	}
	return false
}

// GradeMultiple reports whether the selected option index is the question's
// designated correct index.
func GradeMultiple(q model.Question, selected int) bool {
	return selected == q.CorrectIndex
}
