// Package conversation implements the staged loan dialogue: free-text
// parsing, the stage engine and sanction letter rendering.
package conversation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var digitRun = regexp.MustCompile(`\d+`)

// nameMarkers are checked in order; the first one present in the text wins.
var nameMarkers = []string{"name is", "i am", "i'm"}

// IntroFacts is what the opening message yields: a name, an amount, both
// or neither.
type IntroFacts struct {
	Name      string
	HasName   bool
	Amount    int64
	HasAmount bool
}

// Found reports whether at least one fact was extracted.
func (f IntroFacts) Found() bool {
	return f.HasName || f.HasAmount
}

// ParseIntro reads a customer name and a requested amount out of the
// opening free-text message.
func ParseIntro(text string) IntroFacts {
	var facts IntroFacts
	facts.Name, facts.HasName = ExtractName(text)
	facts.Amount, facts.HasAmount = ParseAmount(text)
	return facts
}

// ParseAmount extracts the first run of digits from text as an amount.
// Commas are stripped first so "5,00,000" and "500,000" both read as 500000.
// A parsed zero counts as no amount, so a bare "0" re-asks instead of
// recording a zero rupee request.
func ParseAmount(text string) (int64, bool) {
	cleaned := strings.ReplaceAll(text, ",", "")
	match := digitRun.FindString(cleaned)
	if match == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(match, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// ExtractName looks for a self-introduction marker ("name is", "i am", "i'm")
// and reads up to three words after it as the customer name, title-cased.
func ExtractName(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, marker := range nameMarkers {
		idx := strings.Index(lower, marker)
		if idx < 0 {
			continue
		}
		rest := text[idx+len(marker):]
		words := strings.Fields(rest)
		if len(words) == 0 {
			return "", false
		}
		if len(words) > 3 {
			words = words[:3]
		}
		for i, w := range words {
			words[i] = titleWord(w)
		}
		return strings.Join(words, " "), true
	}
	return "", false
}

// titleWord uppercases the first letter of each alphabetic run and lowercases
// the rest, so "mcGREGOR" becomes "Mcgregor" and "o'brien" becomes "O'Brien".
func titleWord(w string) string {
	var b strings.Builder
	prevAlpha := false
	for _, r := range w {
		alpha := unicode.IsLetter(r)
		switch {
		case alpha && !prevAlpha:
			b.WriteRune(unicode.ToUpper(r))
		case alpha:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
		prevAlpha = alpha
	}
	return b.String()
}
