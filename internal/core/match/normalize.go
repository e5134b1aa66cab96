package match

import (
	"sort"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldText case-folds input and strips combining marks so "Beyoncé" and
// "BEYONCE" compare equal. Casers and transform chains carry state, so
// both are built per call to keep scoring safe for concurrent use.
func foldText(input string) string {
	if input == "" {
		return ""
	}
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripMarks, input)
	if err != nil {
		stripped = input
	}
	return cases.Fold().String(stripped)
}

// cleanSeparators turns every run of non-alphanumeric runes into a single
// space.
func cleanSeparators(input string) string {
	var out strings.Builder
	lastSpace := false
	for _, r := range input {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			out.WriteRune(' ')
			lastSpace = true
		}
	}

	return out.String()
}

// tokenSet returns the distinct tokens of input, sorted.
func tokenSet(input string, stem bool) []string {
	fields := strings.Fields(cleanSeparators(foldText(input)))
	if len(fields) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, token := range fields {
		if stem {
			token = stemToken(token)
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

func stemToken(token string) string {
	stemmed, err := snowball.Stem(token, "english", false)
	if err != nil || stemmed == "" {
		return token
	}
	return stemmed
}
