package synth

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// stopWords are tokens dropped during key-term extraction. Lowercase.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "but": {}, "by": {}, "for": {}, "from": {}, "get": {},
	"has": {}, "have": {}, "how": {}, "in": {}, "is": {}, "it": {},
	"me": {}, "my": {}, "not": {}, "of": {}, "on": {}, "or": {},
	"show": {}, "that": {}, "the": {}, "this": {}, "to": {}, "was": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "who": {},
	"why": {}, "will": {}, "with": {},
}

// keyTerms extracts searchable tokens from free text: NFC-normalized,
// lowercased, stop words removed, tokens of three or more characters
// only. Order of first appearance is preserved; duplicates are dropped.
func keyTerms(text string) []string {
	normalized := strings.ToLower(norm.NFC.String(text))

	fields := strings.FieldsFunc(normalized, func(r rune) bool {
		return !isWordRune(r)
	})

	seen := map[string]struct{}{}
	var out []string
	for _, tok := range fields {
		if len(tok) <= 2 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '-', r == '.':
		return true
	case r > 127: // keep non-ASCII letters intact
		return true
	}
	return false
}
