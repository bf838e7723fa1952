// Package cache provides the context store the orchestrator consults when a
// primary backend fails.
package cache

import (
	"context"
	"sort"
	"strings"
	"time"
)

// DefaultLimit is the number of entries requested on failover.
const DefaultLimit = 3

// minRelevance is the score an entry must exceed to be returned.
const minRelevance = 0.1

// Entry is one piece of prior context.
type Entry struct {
	Query     string    `json:"query"`
	Content   string    `json:"content"`
	Relevance float64   `json:"relevance,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Cache returns prior content relevant to a query. Callers bound each
// lookup with a context deadline.
type Cache interface {
	Lookup(ctx context.Context, query string, limit int) ([]Entry, error)
}

// Recorder stores content for later lookups.
type Recorder interface {
	Store(ctx context.Context, entry Entry) error
}

// Contents returns the content of each entry in order.
func Contents(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Content)
	}
	return out
}

// rank scores candidates against query, drops weak matches, and returns at
// most limit entries, strongest first. Candidates are expected newest first;
// equal scores keep that order.
func rank(candidates []Entry, query string, limit int) []Entry {
	keywords := extractKeywords(strings.ToLower(query))
	if len(keywords) == 0 || limit <= 0 {
		return nil
	}

	var results []Entry
	for _, e := range candidates {
		text := strings.ToLower(e.Query + " " + e.Content)
		relevance := calculateRelevance(text, keywords)
		if relevance > minRelevance {
			e.Relevance = relevance
			results = append(results, e)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"what": true, "how": true, "where": true, "when": true, "why": true,
	"to": true, "of": true, "in": true, "for": true, "on": true,
	"and": true, "or": true, "but": true, "with": true,
}

func extractKeywords(query string) []string {
	var keywords []string
	seen := make(map[string]bool)
	for _, w := range strings.Fields(query) {
		w = strings.Trim(w, ".,;:!?\"'()[]{}")
		if len(w) > 2 && !stopWords[w] && !seen[w] {
			seen[w] = true
			keywords = append(keywords, w)
		}
	}
	return keywords
}

// calculateRelevance is the fraction of keywords present in content.
func calculateRelevance(content string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}

	matches := 0
	for _, kw := range keywords {
		if strings.Contains(content, kw) {
			matches++
		}
	}
	return float64(matches) / float64(len(keywords))
}
