package index

import (
	"sort"

	"findex/internal/lexer"
	"findex/internal/term"
)

// Result is one ranked search hit.
type Result struct {
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

// Search ranks every indexed document against the query by summed TF-IDF.
// Query tokens are taken raw from the lexer and scored independently, so a
// term repeated in the query counts twice. Documents with an exact zero score
// are dropped; the rest are sorted by descending score, ties broken by path
// for deterministic output.
func (ix *Index) Search(query string) []Result {
	type weighted struct {
		key term.Key
		idf float64
	}

	var terms []weighted
	lx := lexer.New(query)
	for {
		tok, ok := lx.Next()
		if !ok {
			break
		}
		key := term.NewKey(tok)
		terms = append(terms, weighted{key: key, idf: ix.IDF(key)})
	}

	var results []Result
	for path, doc := range ix.documents {
		score := 0.0
		for _, t := range terms {
			score += doc.TermFrequency(t.key) * t.idf
		}
		if score == 0 {
			continue
		}
		results = append(results, Result{Path: path, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score == results[j].Score {
			return results[i].Path < results[j].Path
		}
		return results[i].Score > results[j].Score
	})

	return results
}
