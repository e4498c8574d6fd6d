package search

import (
	"regexp"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/rs/zerolog/log"
)

// Modifier is a recognized key:value filter term of a search query.
type Modifier struct {
	Kind  string
	Value string
}

// The whitelist of recognized modifier kinds. Unrecognized modifiers are
// dropped from the query, partial understanding beats failure.
var validModifiers = []string{
	ModifierAmount,
	ModifierAmountLess,
	ModifierAmountMore,
	ModifierSource,
	ModifierDestination,
	ModifierAccount,
	ModifierCategory,
	ModifierBudget,
	ModifierType,
	ModifierTag,
	ModifierOn,
	ModifierBefore,
	ModifierAfter,
}

const (
	ModifierAmount      = "amount"
	ModifierAmountLess  = "amount_less"
	ModifierAmountMore  = "amount_more"
	ModifierSource      = "source"
	ModifierDestination = "destination"
	ModifierAccount     = "account"
	ModifierCategory    = "category"
	ModifierBudget      = "budget"
	ModifierType        = "type"
	ModifierTag         = "tag"
	ModifierOn          = "on"
	ModifierBefore      = "before"
	ModifierAfter       = "after"
)

// Query is a parsed free-text search query: the recognized modifiers plus
// the remaining free words.
type Query struct {
	Words     []string
	Modifiers []Modifier
}

var modifierPattern = regexp.MustCompile(`(?i)[a-z_]+:[0-9a-z-.]+`)

// ParseQuery splits a free-text query into modifiers and words.
//
// Every key:value term is stripped from the text. Terms with a recognized
// key become modifiers, the rest is silently dropped. The remaining text is
// quote-stripped and whitespace-split into words.
func ParseQuery(query string) Query {
	var parsed Query

	filtered := query
	for _, match := range modifierPattern.FindAllString(query, -1) {
		kind, value, found := strings.Cut(match, ":")
		kind = strings.TrimSpace(kind)
		value = strings.TrimSpace(value)

		if found && kind != "" && value != "" {
			if slices.Contains(validModifiers, strings.ToLower(kind)) {
				parsed.Modifiers = append(parsed.Modifiers, Modifier{
					Kind:  strings.ToLower(kind),
					Value: value,
				})
			} else {
				log.Debug().Str("modifier", match).Msg("dropping unrecognized search modifier")
			}
		}

		filtered = strings.Replace(filtered, match, "", 1)
	}

	replacer := strings.NewReplacer(`"`, "", `'`, "")
	filtered = strings.TrimSpace(replacer.Replace(filtered))

	if len(filtered) > 0 {
		parsed.Words = strings.Fields(filtered)
	}

	return parsed
}

// HasModifiers reports whether the query has at least one modifier.
func (q Query) HasModifiers() bool {
	return len(q.Modifiers) > 0
}

// WordsAsString returns the free words joined by spaces.
func (q Query) WordsAsString() string {
	return strings.Join(q.Words, " ")
}

// matchAnyWord reports whether any of the words is a case-insensitive
// substring of the haystack. It never matches without words.
func matchAnyWord(haystack string, words []string) bool {
	if len(haystack) == 0 {
		return false
	}

	lowered := strings.ToLower(haystack)
	for _, word := range words {
		if strings.Contains(lowered, strings.ToLower(word)) {
			return true
		}
	}

	return false
}
