package normalize

import (
	"regexp"
	"strings"

	"github.com/agentstation/pricemap/pkg/constants"
)

// titleFilters strip, in order, the noise that differs between vendors
// listing the same product.
var titleFilters = []*regexp.Regexp{
	regexp.MustCompile(`\b(windows|home|laptop|notebook|chromebook|macbook|intel|amd|apple|core|processor|display|retina|ms office|os|graphics|iris|geforce)\b`),
	regexp.MustCompile(`\b\d+(\.\d+)?\s*(gb|tb|cm|inch|inches|kg|nits)\b`),
	regexp.MustCompile(`\b\d{3,4}x\d{3,4}\b`),
	regexp.MustCompile(`\b[0-9]{2,}[a-z0-9]{2,}\b`),
	regexp.MustCompile(`[^a-z0-9 ]+`),
}

// ShortTitle reduces title to at most six significant words: brand,
// stopwords, units, resolutions, long codes and punctuation are removed and
// single-character words dropped. Applying it to its own output is a no-op.
func ShortTitle(title, brand string) string {
	brand = CleanText(brand)

	t := shorten(title, brand)
	for {
		next := shorten(t, brand)
		if next == t {
			break
		}
		t = next
	}

	words := strings.Fields(t)
	if len(words) > constants.ShortTitleWords {
		words = words[:constants.ShortTitleWords]
	}
	return strings.Join(words, " ")
}

// shorten runs one pass of the title filters.
func shorten(title, brand string) string {
	t := CleanText(title)
	if brand != "" {
		t = strings.ReplaceAll(t, brand, " ")
	}
	for _, re := range titleFilters {
		t = re.ReplaceAllString(t, " ")
	}

	words := strings.Fields(t)
	kept := words[:0]
	for _, w := range words {
		if len(w) > 1 {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}
