package combiner

import (
	"time"

	"github.com/agentstation/pricemap/pkg/products"
)

// Result is the outcome of combining one category.
type Result struct {
	Category string
	Output   string
	Products []products.CombinedProduct
	Stats    Stats
}

// Stats describes what a category run saw and skipped. Missing and
// unparsable vendor files and unmatched products are not errors; they only
// show up here.
type Stats struct {
	Vendors          map[string]int `json:"vendors" yaml:"vendors"` // products loaded per vendor
	MissingFiles     []string       `json:"missing_files,omitempty" yaml:"missing_files,omitempty"`
	UnparsableFiles  []string       `json:"unparsable_files,omitempty" yaml:"unparsable_files,omitempty"`
	FeatureKeys      int            `json:"feature_keys" yaml:"feature_keys"`
	NoBrand          int            `json:"no_brand" yaml:"no_brand"`
	Unmatched        int            `json:"unmatched" yaml:"unmatched"`
	ModelMatches     int            `json:"model_matches" yaml:"model_matches"`
	AttributeMatches int            `json:"attribute_matches" yaml:"attribute_matches"`
	Emitted          int            `json:"emitted" yaml:"emitted"`
	Reused           bool           `json:"reused" yaml:"reused"`
	Duration         time.Duration  `json:"duration" yaml:"duration"`
}

// Degraded reports whether any input was missing or unparsable.
func (s *Stats) Degraded() bool {
	return len(s.MissingFiles) > 0 || len(s.UnparsableFiles) > 0
}

// Summary is the outcome of a full aggregate rebuild.
type Summary struct {
	Output     string
	Categories []*Result
	Products   int
	Duration   time.Duration
}
