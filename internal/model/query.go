package model

import "strings"

// Query is a classified search request. ISBN-like tokens always take
// precedence: when a query mixes keywords and identifiers the keywords are
// dropped, matching how the retail sources behave.
type Query struct {
	ISBNs     []string
	Keywords  []string
	Publisher string
	Page      int
}

// ParseQuery splits raw tokens into identifiers and keywords. A token of the
// form "ed:NAME" requests a publisher-filtered advanced search.
func ParseQuery(tokens []string, isISBN func(string) bool) Query {
	q := Query{Page: 1}
	for _, tok := range tokens {
		switch {
		case strings.HasPrefix(tok, "ed:"):
			q.Publisher = strings.TrimPrefix(tok, "ed:")
		case isISBN(tok):
			q.ISBNs = append(q.ISBNs, tok)
		default:
			q.Keywords = append(q.Keywords, tok)
		}
	}
	return q
}

// IsISBNSearch reports whether the query should go through the ISBN path.
func (q Query) IsISBNSearch() bool {
	return len(q.ISBNs) > 0
}

// Terms returns the keyword search string, words joined by "+".
func (q Query) Terms() string {
	return strings.Join(q.Keywords, "+")
}
