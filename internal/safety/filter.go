// Package safety screens inbound chat text for personally identifying
// details before anything is forwarded to the AI provider.
package safety

import "strings"

// RedirectReply is returned verbatim whenever the filter trips. The
// conversation continues; the provider is never called for that turn.
const RedirectReply = "Let us not share personal details. Tell me about toys, books, or fun experiences instead."

// DefaultDenylist returns the built-in PII marker terms. The list is
// deliberately over-broad policy data: "+" and "@" catch phone numbers
// and handles at the cost of false positives on ordinary text.
func DefaultDenylist() []string {
	return []string{
		"address", "phone", "email", "@", "street", "avenue",
		"school", "whatsapp", "+", "http", "://",
	}
}

// Filter matches lower-cased message text against a denylist of
// substrings.
type Filter struct {
	denylist []string
}

// NewFilter builds a filter from the supplied terms, falling back to the
// default denylist when none are given.
func NewFilter(denylist []string) *Filter {
	if len(denylist) == 0 {
		denylist = DefaultDenylist()
	}
	return &Filter{denylist: append([]string(nil), denylist...)}
}

// Check reports the first denylisted term found in text, if any.
func (f *Filter) Check(text string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, term := range f.denylist {
		if term == "" {
			continue
		}
		if strings.Contains(lowered, term) {
			return term, true
		}
	}
	return "", false
}

// CheckAll runs Check over a batch; one match trips the whole batch.
func (f *Filter) CheckAll(texts []string) (string, bool) {
	for _, text := range texts {
		if term, tripped := f.Check(text); tripped {
			return term, true
		}
	}
	return "", false
}
