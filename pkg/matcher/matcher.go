// Package matcher finds, for one listing of the base vendor, the listing of
// the same physical product at every other vendor.
//
// Matching is deterministic and first-match-wins. Stage 1 compares model
// numbers; when that fails for any vendor, Stage 2 compares the
// (short title, RAM, storage) triple. Both stages are all-or-nothing and only
// search products of the same brand.
package matcher

import (
	"github.com/agentstation/pricemap/pkg/products"
)

// Stage identifies which strategy produced a match.
type Stage int

const (
	// StageNone means no complete group was found.
	StageNone Stage = iota
	// StageModel means every vendor matched on model number.
	StageModel
	// StageAttributes means every vendor matched on short title, RAM and storage.
	StageAttributes
)

// String returns the string representation of a Stage.
func (s Stage) String() string {
	switch s {
	case StageModel:
		return "model"
	case StageAttributes:
		return "attributes"
	default:
		return "none"
	}
}

// Group maps vendor name to the listing believed to be the same product.
type Group map[string]*products.VendorProduct

// Buckets groups one vendor's products by lowercased brand, keeping list order.
type Buckets map[string][]*products.VendorProduct

// BucketByBrand buckets list by BrandLower. Products of list must already be
// normalized; the buckets point into list.
func BucketByBrand(list []products.VendorProduct) Buckets {
	buckets := make(Buckets)
	for i := range list {
		p := &list[i]
		buckets[p.BrandLower] = append(buckets[p.BrandLower], p)
	}
	return buckets
}

// Matcher matches base vendor products against the other vendors.
type Matcher struct {
	vendors []string
	buckets map[string]Buckets
}

// New creates a Matcher for vendors, in order; vendors[0] is the base vendor.
// lists holds each vendor's normalized products; a vendor without a list
// matches nothing.
func New(vendors []string, lists map[string][]products.VendorProduct) *Matcher {
	m := &Matcher{
		vendors: vendors,
		buckets: make(map[string]Buckets, len(vendors)),
	}
	for _, v := range vendors {
		m.buckets[v] = BucketByBrand(lists[v])
	}
	return m
}

// Match returns the group for base covering every vendor and the stage that
// produced it. It returns nil and StageNone when base has no brand or when
// some vendor has no matching listing under either stage.
func (m *Matcher) Match(base *products.VendorProduct) (Group, Stage) {
	if base.BrandLower == "" || len(m.vendors) == 0 {
		return nil, StageNone
	}

	if base.Model != "" {
		if group := m.collect(base, func(p *products.VendorProduct) bool {
			return p.Model == base.Model
		}); group != nil {
			return group, StageModel
		}
	}

	key := base.Triple()
	if group := m.collect(base, func(p *products.VendorProduct) bool {
		return p.Triple() == key
	}); group != nil {
		return group, StageAttributes
	}

	return nil, StageNone
}

// collect picks, for every vendor after the base in configured order, the
// first same-brand product accepted by same. It gives up on the first vendor
// without one.
func (m *Matcher) collect(base *products.VendorProduct, same func(*products.VendorProduct) bool) Group {
	group := Group{m.vendors[0]: base}
	for _, v := range m.vendors[1:] {
		found := first(m.buckets[v][base.BrandLower], same)
		if found == nil {
			return nil
		}
		group[v] = found
	}
	if len(group) != len(m.vendors) {
		return nil
	}
	return group
}

func first(candidates []*products.VendorProduct, same func(*products.VendorProduct) bool) *products.VendorProduct {
	for _, p := range candidates {
		if same(p) {
			return p
		}
	}
	return nil
}
