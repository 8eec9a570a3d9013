package usecase

import (
	"regexp"
	"sort"
	"strings"

	"github.com/nutrical/backend/internal/domain"
)

var (
	punctuationRegex    = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	multipleSpacesRegex = regexp.MustCompile(`\s+`)

	// size/quantity fragments such as "500 g", "1.5l", "12 oz", "6 pack"
	sizeQuantityPattern = regexp.MustCompile(`(?i)\b\d+(?:[.,]\d+)?\s*(?:fl\s*oz|oz|ml|l|liters?|litres?|kg|g|grams?|mg|lbs?|pounds?|cups?|tbsp|tsp|pack|pk|ct|count)\b`)
)

// queryNoiseWords carry no information for a FoodData Central search
var queryNoiseWords = map[string]bool{
	"fresh": true, "organic": true, "premium": true, "natural": true,
	"pack": true, "bag": true, "box": true, "jar": true, "bottle": true,
	"the": true, "and": true, "with": true, "of": true, "a": true, "an": true,
}

// dataTypeBonus prefers analytical data over branded label data
var dataTypeBonus = map[string]float64{
	"Foundation":     10,
	"SR Legacy":      8,
	"Survey (FNDDS)": 5,
	"Branded":        0,
}

const maxQueryLength = 100

// cleanSearchQuery strips sizes, punctuation and noise words from an ingredient
// name so it can be sent to FoodData Central
func cleanSearchQuery(query string) string {
	cleaned := sizeQuantityPattern.ReplaceAllString(query, " ")
	cleaned = strings.ReplaceAll(cleaned, "&", " and ")
	cleaned = punctuationRegex.ReplaceAllString(cleaned, " ")

	words := strings.Fields(cleaned)
	kept := words[:0]
	for _, w := range words {
		if !queryNoiseWords[strings.ToLower(w)] {
			kept = append(kept, w)
		}
	}
	cleaned = strings.Join(kept, " ")

	if len(cleaned) > maxQueryLength {
		cleaned = cleaned[:maxQueryLength]
		if lastSpace := strings.LastIndex(cleaned, " "); lastSpace > maxQueryLength/2 {
			cleaned = cleaned[:lastSpace]
		}
	}
	return strings.TrimSpace(cleaned)
}

// normalizeForCacheKey lowercases s and collapses punctuation and whitespace
func normalizeForCacheKey(s string) string {
	result := punctuationRegex.ReplaceAllString(strings.ToLower(s), " ")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// tokenize splits s into lowercase tokens, dropping noise words, single
// characters and bare numbers
func tokenize(s string) []string {
	words := strings.Fields(punctuationRegex.ReplaceAllString(strings.ToLower(s), " "))
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) <= 1 || queryNoiseWords[w] || isNumeric(w) {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// matchScore rates how well a FoodData Central description answers query, 0-100.
// Query coverage dominates; description coverage and Jaccard similarity refine it.
func matchScore(query string, c domain.USDACandidate) float64 {
	queryTokens := tokenize(query)
	descTokens := tokenize(c.Description)
	if len(queryTokens) == 0 || len(descTokens) == 0 {
		return 0
	}

	queryMatched := intersection(queryTokens, descTokens)
	descMatched := intersection(descTokens, queryTokens)
	union := unionSize(queryTokens, descTokens)

	queryCoverage := float64(queryMatched) / float64(len(queryTokens))
	descCoverage := float64(descMatched) / float64(len(descTokens))
	jaccard := float64(queryMatched) / float64(union)

	score := (queryCoverage*0.60 + descCoverage*0.20 + jaccard*0.20) * 80
	if queryMatched > 0 {
		score += dataTypeBonus[c.DataType]
	}
	q, d := strings.ToLower(query), strings.ToLower(c.Description)
	if len(q) > 3 && strings.Contains(d, q) {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	return score
}

// rankCandidates scores every candidate against query and orders them best first.
// Ties keep the order FoodData Central returned.
func rankCandidates(query string, candidates []domain.USDACandidate) []domain.USDACandidate {
	for i := range candidates {
		candidates[i].MatchScore = matchScore(query, candidates[i])
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].MatchScore > candidates[j].MatchScore
	})
	return candidates
}

func intersection(tokens, other []string) int {
	set := make(map[string]bool, len(other))
	for _, t := range other {
		set[t] = true
	}
	seen := make(map[string]bool, len(tokens))
	n := 0
	for _, t := range tokens {
		if set[t] && !seen[t] {
			seen[t] = true
			n++
		}
	}
	return n
}

func unionSize(a, b []string) int {
	set := make(map[string]bool, len(a)+len(b))
	for _, t := range a {
		set[t] = true
	}
	for _, t := range b {
		set[t] = true
	}
	return len(set)
}
