package retrieval

import (
	"strings"
	"unicode/utf8"
)

// Quality blend weights: keyword overlap dominates, then length fitness,
// then lexical diversity.
const (
	keywordWeight   = 0.5
	lengthWeight    = 0.3
	diversityWeight = 0.2
)

// AssessQuality scores how well a candidate passage serves a query beyond
// raw embedding similarity. Pure function; empty inputs score zero.
func AssessQuality(candidate, query string) Quality {
	var q Quality

	queryKeywords := ExtractKeywords(query)
	if len(queryKeywords) > 0 {
		candidateSet := make(map[string]struct{})
		for _, w := range ExtractKeywords(candidate) {
			candidateSet[w] = struct{}{}
		}
		querySet := make(map[string]struct{})
		matched := 0
		for _, w := range queryKeywords {
			if _, dup := querySet[w]; dup {
				continue
			}
			querySet[w] = struct{}{}
			if _, ok := candidateSet[w]; ok {
				matched++
			}
		}
		q.KeywordMatch = float64(matched) / float64(len(querySet))
	}

	length := utf8.RuneCountInString(candidate)
	switch {
	case length >= 100 && length <= 1000:
		q.LengthScore = 1.0
	case length < 100:
		q.LengthScore = float64(length) / 100
	default:
		q.LengthScore = 0.8
	}

	words := strings.Fields(candidate)
	if len(words) > 0 {
		unique := make(map[string]struct{}, len(words))
		for _, w := range words {
			unique[w] = struct{}{}
		}
		ratio := float64(len(unique)) / float64(len(words))
		if ratio > 1.0 {
			ratio = 1.0
		}
		q.DiversityScore = ratio
	}

	q.OverallScore = keywordWeight*q.KeywordMatch +
		lengthWeight*q.LengthScore +
		diversityWeight*q.DiversityScore
	return q
}
