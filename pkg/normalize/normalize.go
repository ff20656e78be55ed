// Package normalize derives the comparable attributes of a vendor listing from
// its free-text title and brand: a cleaned title, a model number, RAM and
// storage sizes, and a short canonical title used as a fallback matching key.
//
// All functions are pure and safe for concurrent use.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/agentstation/pricemap/pkg/products"
)

// bidiControls matches the directional marks scrapers copy out of vendor pages.
var bidiControls = runes.Predicate(func(r rune) bool {
	return r == '\u200e' || r == '\u200f' || (r >= '\u202a' && r <= '\u202e')
})

// CleanText strips bidirectional control characters, trims and lowercases s.
func CleanText(s string) string {
	s, _, _ = transform.String(runes.Remove(bidiControls), s)
	// Casers keep state, so each call gets its own.
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

// Apply fills the derived fields of p.
func Apply(p *products.VendorProduct) {
	p.BrandLower = CleanText(p.Brand)
	p.CleanTitle = CleanText(p.Title)
	p.Model = ModelNumber(p.Title)
	if p.Model == "" && p.DeclaredModel != "" {
		p.Model = CleanText(p.DeclaredModel)
	}
	p.RAM, p.Storage = RAMStorage(p.Title)
	p.ShortTitle = ShortTitle(p.Title, p.Brand)
}

// ApplyAll normalizes every product of list in place.
func ApplyAll(list []products.VendorProduct) {
	for i := range list {
		Apply(&list[i])
	}
}
