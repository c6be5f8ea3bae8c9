package search

import "strings"

// MatchRank classifies how well a name matches a query. Lower is better.
type MatchRank int

const (
	RankExact MatchRank = iota
	RankPrefix
	RankSubstring
	RankNone
)

// Rank returns the match class for name against query, case-insensitive.
// An empty query matches everything as a substring match.
func Rank(query, name string) MatchRank {
	if query == "" {
		return RankSubstring
	}
	q := strings.ToLower(strings.TrimSpace(query))
	n := strings.ToLower(strings.TrimSpace(name))

	switch {
	case n == q:
		return RankExact
	case strings.HasPrefix(n, q):
		return RankPrefix
	case strings.Contains(n, q):
		return RankSubstring
	default:
		return RankNone
	}
}

// Matches reports whether name matches query at all.
func Matches(query, name string) bool {
	return Rank(query, name) != RankNone
}

// Less orders two names for the same query: exact before prefix before
// substring. Equal ranks report false so callers can fall through to their
// own tie-break (recency in every listing here).
func Less(query, a, b string) bool {
	return Rank(query, a) < Rank(query, b)
}
