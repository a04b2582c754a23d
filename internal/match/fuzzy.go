package match

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// DefaultFuzzyThreshold is the largest normalized edit distance the fallback
// pass accepts.
const DefaultFuzzyThreshold = 0.4

// Field is one weighted piece of text in a fuzzy search document.
type Field struct {
	Text   string
	Weight float64
}

// Document is one searchable item; its position in the corpus is its index.
type Document struct {
	Fields []Field
}

// Hit is a fuzzy match against corpus[Index]. Distance is normalized to
// [0, 1], 0 meaning an exact match.
type Hit struct {
	Index    int
	Distance float64
}

// Searcher finds approximate matches for query in corpus.
type Searcher interface {
	Search(corpus []Document, query string) []Hit
}

// EditDistanceSearcher matches query tokens against field tokens by
// normalized Levenshtein distance.
//
// A field's distance is the mean, over query tokens, of the best token
// distance in that field. Fields whose distance exceeds Threshold are ignored;
// the document distance is the weighted mean of the remaining fields, and a
// document with no remaining field is not a hit.
type EditDistanceSearcher struct {
	Threshold float64
}

// NewEditDistanceSearcher returns a searcher; threshold <= 0 selects
// DefaultFuzzyThreshold.
func NewEditDistanceSearcher(threshold float64) *EditDistanceSearcher {
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}
	return &EditDistanceSearcher{Threshold: threshold}
}

// Search implements Searcher. Hits are returned in corpus order.
func (s *EditDistanceSearcher) Search(corpus []Document, query string) []Hit {
	qt := Tokenize(query)
	if len(qt) == 0 {
		return nil
	}
	var out []Hit
	for i, doc := range corpus {
		if d, ok := s.documentDistance(doc, qt); ok {
			out = append(out, Hit{Index: i, Distance: d})
		}
	}
	return out
}

func (s *EditDistanceSearcher) documentDistance(doc Document, qt []string) (float64, bool) {
	var sum, weights float64
	for _, f := range doc.Fields {
		if f.Weight <= 0 {
			continue
		}
		ft := Tokenize(f.Text)
		if len(ft) == 0 {
			continue
		}
		d := fieldDistance(ft, qt)
		if d > s.Threshold {
			continue
		}
		sum += f.Weight * d
		weights += f.Weight
	}
	if weights == 0 {
		return 0, false
	}
	return sum / weights, true
}

func fieldDistance(fieldTokens, queryTokens []string) float64 {
	var total float64
	for _, q := range queryTokens {
		best := 1.0
		for _, t := range fieldTokens {
			if d := tokenDistance(q, t); d < best {
				best = d
				if best == 0 {
					break
				}
			}
		}
		total += best
	}
	return total / float64(len(queryTokens))
}

func tokenDistance(a, b string) float64 {
	if a == b {
		return 0
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 0
	}
	return float64(levenshtein.ComputeDistance(a, b)) / float64(maxLen)
}
