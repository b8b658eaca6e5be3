// Package interpret turns free-form query text into a structured intent.
// Matching is rule-based: a small set of precompiled patterns checked in
// priority order, with a raw passthrough as the escape hatch.
package interpret

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/netrec/netrec/model"
)

// ParseError reports query text that looked like an attribute filter but
// could not be split into occupation and location.
type ParseError struct {
	Query  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse query %q: %s", e.Query, e.Reason)
}

var (
	// "... like <name>" or "... similar to <name>" at the end of the query
	similarityPattern = regexp.MustCompile(`(?i)\b(?:like|similar to)\s+([^,]+?)\s*$`)

	// "<occupation> in <location>", case-insensitive separator
	attributePattern = regexp.MustCompile(`(?i)^(.*?)\s+in\s+(.+)$`)

	// leading filler before the occupation ("find me a nurse" -> "nurse")
	occupationPrefixPattern = regexp.MustCompile(`(?i)^(?:find|show|get|recommend|search for)?\s*(?:me\s+)?(?:an?\s+|some\s+)?(.*)$`)

	// queries asking about a person's network rather than attributes
	connectionPattern = regexp.MustCompile(`(?i)\b(?:connected|connections?|knows?|network)\b`)
)

// Interpret classifies query text into an intent. It never fails: text that
// matches no pattern becomes a raw query so the router can still attempt a
// best-effort lookup.
func Interpret(query string) *model.Intent {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return model.NewRawQuery(trimmed)
	}

	if match := similarityPattern.FindStringSubmatch(trimmed); match != nil {
		targetPerson := trimQuotes(match[1])
		return model.NewSimilarityQuery(trimmed, targetPerson)
	}

	if isConnectionQuery(trimmed) {
		if personID := lastToken(trimmed); personID != "" {
			return model.NewConnectionQuery(personID, model.DefaultQueryConfig().MaxHops)
		}
	}

	occupation, location, err := ParseOccupationAndLocation(trimmed)
	if err == nil {
		return model.NewAttributeFilter(occupation, location)
	}

	return model.NewRawQuery(trimmed)
}

// ParseOccupationAndLocation splits "<occupation> in <location>" query text.
// The occupation is singularized (one trailing "s" stripped) and both fields
// are trimmed of surrounding quotes and whitespace.
func ParseOccupationAndLocation(query string) (string, string, error) {
	trimmed := strings.TrimSpace(query)

	match := attributePattern.FindStringSubmatch(trimmed)
	if match == nil {
		return "", "", &ParseError{
			Query:  query,
			Reason: `expected "<occupation> in <location>"`,
		}
	}

	occupation := trimQuotes(match[1])
	location := trimQuotes(match[2])

	if prefixMatch := occupationPrefixPattern.FindStringSubmatch(occupation); prefixMatch != nil {
		occupation = strings.TrimSpace(prefixMatch[1])
	}
	if occupation == "" || location == "" {
		return "", "", &ParseError{
			Query:  query,
			Reason: "occupation or location is empty",
		}
	}

	occupation = strings.TrimSuffix(occupation, "s")

	return occupation, location, nil
}

func isConnectionQuery(query string) bool {
	return connectionPattern.MatchString(query)
}

// lastToken returns the final whitespace-delimited token stripped of quotes
// and trailing punctuation. Keyword tokens are skipped so "who does X know?"
// still yields X.
func lastToken(query string) string {
	fields := strings.Fields(query)
	for i := len(fields) - 1; i >= 0; i-- {
		token := trimQuotes(strings.TrimRight(fields[i], "?!.,;"))
		if token == "" || connectionPattern.MatchString(token) {
			continue
		}
		return token
	}
	return ""
}

func trimQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}
