// Package match scores track identities against video titles and selects
// the best video for each track.
package match

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	MinScore = 0
	MaxScore = 100
)

// Scorer computes token-set similarity. The zero value is ready to use.
type Scorer struct {
	// Stem reduces tokens to their English Snowball stem before comparing,
	// so "remixes" and "remix" count as the same token.
	Stem bool
}

// Score is the token-set similarity of a and b with the default Scorer.
func Score(a string, b string) int {
	return Scorer{}.Score(a, b)
}

// Score returns an integer in [0,100]. Case, accents, punctuation, token
// order and repeated tokens are ignored, and extra tokens on one side do not
// lower the score when the other side's tokens are all present. Empty input
// on either side scores 0.
func (s Scorer) Score(a string, b string) int {
	tokensA := tokenSet(a, s.Stem)
	tokensB := tokenSet(b, s.Stem)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return MinScore
	}

	intersection, diffAB, diffBA := partition(tokensA, tokensB)
	if len(intersection) > 0 && (len(diffAB) == 0 || len(diffBA) == 0) {
		return MaxScore
	}

	sect := strings.Join(intersection, " ")
	ab := strings.Join(diffAB, " ")
	ba := strings.Join(diffBA, " ")

	sectLen := utf8.RuneCountInString(sect)
	abLen := utf8.RuneCountInString(ab)
	baLen := utf8.RuneCountInString(ba)

	// Lengths of "sect ab" and "sect ba"; the joining space only exists
	// when sect is non-empty.
	glue := 0
	if sectLen > 0 {
		glue = 1
	}
	sectABLen := sectLen + glue + abLen
	sectBALen := sectLen + glue + baLen

	// The shared "sect " prefix contributes nothing to the Indel distance,
	// so comparing the diffs alone gives the distance of the combined
	// strings.
	best := normalizedSimilarity(indelDistance(ab, ba), sectABLen+sectBALen)
	if sectLen == 0 {
		return roundScore(best)
	}

	// sect against "sect ab" differs only by the appended tokens.
	best = math.Max(best, normalizedSimilarity(glue+abLen, sectLen+sectABLen))
	best = math.Max(best, normalizedSimilarity(glue+baLen, sectLen+sectBALen))
	return roundScore(best)
}

// partition splits two sorted, de-duplicated token lists into their
// intersection and the two differences, all sorted.
func partition(a []string, b []string) (intersection, onlyA, onlyB []string) {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			intersection = append(intersection, a[i])
			i++
			j++
		case a[i] < b[j]:
			onlyA = append(onlyA, a[i])
			i++
		default:
			onlyB = append(onlyB, b[j])
			j++
		}
	}
	onlyA = append(onlyA, a[i:]...)
	onlyB = append(onlyB, b[j:]...)
	return intersection, onlyA, onlyB
}

// normalizedSimilarity maps an Indel distance over strings whose lengths
// sum to total onto [0,100].
func normalizedSimilarity(distance int, total int) float64 {
	if total == 0 {
		return MaxScore
	}
	return MaxScore * (1 - float64(distance)/float64(total))
}

func roundScore(v float64) int {
	score := int(math.Floor(v + 0.5))
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// indelDistance counts the insertions and deletions needed to turn a into
// b: len(a) + len(b) - 2*LCS(a, b).
func indelDistance(a string, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			switch {
			case ra[i-1] == rb[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		copy(prev, curr)
	}

	return len(ra) + len(rb) - 2*prev[len(rb)]
}
