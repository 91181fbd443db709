// Package profanity rejects message bodies containing disallowed language.
package profanity

import "strings"

// Matching is token based: the text is lowercased and split on anything that
// is not a letter or digit, so punctuation and whitespace around a term never
// hide it ("word!!!" still matches "word").
var disallowedTerms = map[string]bool{
	"fuck":    true,
	"shit":    true,
	"bitch":   true,
	"cunt":    true,
	"asshole": true,
	"faggot":  true,
	"nigger":  true,
	"whore":   true,
	"slut":    true,
	"dick":    true,
}

type Filter struct{}

func New() *Filter {
	return &Filter{}
}

// ContainsProfanity is a pure predicate; it never mutates the input.
func (f *Filter) ContainsProfanity(text string) bool {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isAlphanumeric(r)
	})
	for _, token := range tokens {
		if disallowedTerms[token] {
			return true
		}
	}
	return false
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
