// Package wishlist files every child utterance into one of six fixed
// gift categories using ordered keyword rules.
package wishlist

import "strings"

// Category names, in display order.
const (
	Toys        = "Toys"
	Books       = "Books"
	Games       = "Games"
	Clothes     = "Clothes"
	Experiences = "Experiences"
	Other       = "Other"
)

// Categories lists every bucket in display order.
func Categories() []string {
	return []string{Toys, Books, Games, Clothes, Experiences, Other}
}

type rule struct {
	category string
	keywords []string
}

// Rule order is load-bearing: the first match wins, so "lego game"
// files under Toys, never Games.
var rules = []rule{
	{Toys, []string{"lego", "doll", "car", "train", "plush"}},
	{Books, []string{"book", "comic", "draw", "marker", "paint"}},
	{Games, []string{"game", "switch", "ps", "xbox"}},
	{Clothes, []string{"shirt", "hoodie", "shoe", "sock", "cap"}},
	{Experiences, []string{"trip", "park", "museum", "zoo", "ski", "lake"}},
}

// Categorize returns the bucket for the given utterance. Unmatched text
// falls to Other.
func Categorize(text string) string {
	lowered := strings.ToLower(text)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lowered, kw) {
				return r.category
			}
		}
	}
	return Other
}
