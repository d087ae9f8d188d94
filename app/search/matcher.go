package search

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// trigramWidth is the shingle size of the FTS index tokenizer. Tokens
// shorter than this produce no trigrams and can never match through the
// index.
const trigramWidth = 3

// Normalize folds a query string before matching: case differences are
// erased the same way the trigram tokenizer folds indexed text, and
// full-width/half-width variants collapse to their canonical form.
// Width folding is query-side only. Stored fields are indexed as
// delivered and producers send canonical-width text; the folding here
// is for query input, which from a Japanese IME often arrives with
// full-width Latin characters that would otherwise never match the
// ASCII sources.
func Normalize(s string) string {
	return cases.Fold().String(width.Fold.String(strings.TrimSpace(s)))
}

// MatchQuery is a compiled FTS5 MATCH expression plus the leftover
// tokens that were too short for the trigram index.
type MatchQuery struct {
	Expression string
	Short      []ShortToken
}

// ShortToken is a keyword token below trigram width. Match carries the
// MATCH expression of the token's dictionary counterparts that did
// reach trigram width; the caller ORs it with its fallback scan for the
// token so a dictionary entry widens the match instead of narrowing it.
type ShortToken struct {
	Token string
	Match string
}

// Indexable reports whether any token reached trigram width, i.e.
// whether the index can produce a candidate set at all.
func (q MatchQuery) Indexable() bool {
	return q.Expression != ""
}

// BuildMatchQuery turns a normalized keyword into an FTS5 MATCH
// expression. Each whitespace-separated token becomes a quoted phrase;
// tokens are ANDed. synonyms maps a token to dictionary counterparts
// that are ORed in, so an English query can match Japanese-only fields
// and vice versa. A token below trigram width is excluded from the
// expression and reported as a ShortToken carrying its own synonym
// expression for the caller's fallback scan.
func BuildMatchQuery(keyword string, synonyms map[string][]string) MatchQuery {
	var parts []string
	var short []ShortToken

	for _, token := range strings.Fields(keyword) {
		var alternatives []string
		for _, syn := range synonyms[token] {
			syn = Normalize(syn)
			if utf8.RuneCountInString(syn) >= trigramWidth {
				alternatives = append(alternatives, quote(syn))
			}
		}

		if utf8.RuneCountInString(token) < trigramWidth {
			short = append(short, ShortToken{Token: token, Match: orGroup(alternatives)})
			continue
		}

		parts = append(parts, orGroup(append([]string{quote(token)}, alternatives...)))
	}

	return MatchQuery{
		Expression: strings.Join(parts, " AND "),
		Short:      short,
	}
}

// orGroup joins MATCH alternatives into one OR expression.
func orGroup(alternatives []string) string {
	switch len(alternatives) {
	case 0:
		return ""
	case 1:
		return alternatives[0]
	default:
		return "(" + strings.Join(alternatives, " OR ") + ")"
	}
}

// quote wraps a token as an FTS5 string literal so user input can never
// be parsed as query syntax.
func quote(token string) string {
	return `"` + strings.ReplaceAll(token, `"`, `""`) + `"`
}

// escapeLike escapes LIKE wildcards in a token for the short-query
// fallback scan.
func escapeLike(token string) string {
	token = strings.ReplaceAll(token, `\`, `\\`)
	token = strings.ReplaceAll(token, `%`, `\%`)
	token = strings.ReplaceAll(token, `_`, `\_`)
	return token
}
