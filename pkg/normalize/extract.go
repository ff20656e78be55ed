package normalize

import (
	"regexp"
	"strings"

	"github.com/agentstation/pricemap/pkg/constants"
)

var (
	modelPattern = regexp.MustCompile(`\b([A-Z0-9]{4,}(?:[-/][A-Z0-9]{2,})?)\b`)

	// measurePattern matches capacities and physical units written as one token.
	measurePattern = regexp.MustCompile(`^\d+(GB|TB|MB|MAH|HZ|GHZ|MHZ|MP|MM|CM|KG|NITS|W)$`)

	// memoryPattern matches memory generations such as DDR4 or LPDDR5X.
	memoryPattern = regexp.MustCompile(`^(LP)?DDR\d*X?$`)

	// ordinalPattern matches processor generations such as 12TH.
	ordinalPattern = regexp.MustCompile(`^\d+(ST|ND|RD|TH)$`)

	ramPattern     = regexp.MustCompile(`(?i)(\d+)\s*gb\s*ram`)
	storagePattern = regexp.MustCompile(`(?i)(\d+)\s*gb\s*(ssd|emmc|hdd|storage)?`)
)

// blockedModels are marketing words that look like model numbers.
var blockedModels = map[string]struct{}{
	"INTEL":   {},
	"WINDOWS": {},
	"APPLE":   {},
	"CHROME":  {},
	"EMMC":    {},
	"SSD":     {},
	"RAM":     {},
	"DDR":     {},
	"CORE":    {},
	"GEN":     {},
	"OFFICE":  {},
	"HOME":    {},
}

// ModelNumber returns the first token of title that looks like a model
// number, lowercased, or "" when there is none.
//
// Tokens are scanned left to right. A token qualifies when it is at least
// four characters long, may carry one internal '-' or '/' separator, contains
// a digit but is not purely numeric, and is neither a blocked marketing word
// nor a capacity, unit, memory or generation token.
func ModelNumber(title string) string {
	if title == "" {
		return ""
	}
	for _, token := range modelPattern.FindAllString(strings.ToUpper(title), -1) {
		if len(token) < constants.MinModelLength || !qualifies(token) {
			continue
		}
		return strings.ToLower(token)
	}
	return ""
}

// qualifies requires a digit: without it the brand or series word leading a
// title wins, so "Dell XPS13-9310 13-inch" would yield "dell" instead of
// "xps13-9310", and "Apple MacBook Pro" yields "" rather than "macbook".
func qualifies(token string) bool {
	if _, blocked := blockedModels[token]; blocked {
		return false
	}

	digits, letters := 0, 0
	for _, r := range token {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r >= 'A' && r <= 'Z':
			letters++
		}
	}
	if digits == 0 || (letters == 0 && !strings.ContainsAny(token, "-/")) {
		return false
	}

	return !measurePattern.MatchString(token) &&
		!memoryPattern.MatchString(token) &&
		!ordinalPattern.MatchString(token)
}

// RAMStorage returns the RAM and storage sizes in GB mentioned in title.
// Either value is "" when absent.
//
// Storage is the first "<n> GB" mention that is not followed by "RAM",
// preferring one that names its kind (SSD, eMMC, HDD, storage).
func RAMStorage(title string) (ram, storage string) {
	if m := ramPattern.FindStringSubmatch(title); m != nil {
		ram = m[1]
	}

	var fallback string
	for _, m := range storagePattern.FindAllStringSubmatchIndex(title, -1) {
		rest := strings.TrimLeft(title[m[1]:], " \t")
		if len(rest) >= 3 && strings.EqualFold(rest[:3], "ram") {
			continue
		}
		size := title[m[2]:m[3]]
		if m[4] >= 0 {
			return ram, size
		}
		if fallback == "" {
			fallback = size
		}
	}
	return ram, fallback
}
