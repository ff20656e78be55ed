// Package combiner builds the combined catalog. For one category it loads
// every vendor file, matches each base vendor listing against the other
// vendors, enriches the accepted groups with canonical features and images,
// and writes the result next to the vendor files. Final rebuilds every
// category and writes the global aggregate.
package combiner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/pricemap/pkg/enhancer"
	"github.com/agentstation/pricemap/pkg/errors"
	"github.com/agentstation/pricemap/pkg/loader"
	"github.com/agentstation/pricemap/pkg/logging"
	"github.com/agentstation/pricemap/pkg/matcher"
	"github.com/agentstation/pricemap/pkg/products"
	"github.com/agentstation/pricemap/pkg/registry"
)

// idNamespace scopes the name-based product IDs.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/agentstation/pricemap/products"))

// Combiner runs category and aggregate combines. Runs are serialized, so it
// is safe to call from several goroutines.
type Combiner struct {
	mu    sync.Mutex
	reg   *registry.Registry
	cache *loader.Cache
	memo  bool
	memos map[string]memo
}

// memo is the last result of a category and the fingerprint of its inputs.
type memo struct {
	fingerprint string
	products    []products.CombinedProduct
	stats       Stats
}

// New creates a Combiner for reg.
func New(reg *registry.Registry, opts ...Option) (*Combiner, error) {
	if reg == nil {
		return nil, &errors.ValidationError{Field: "registry", Message: "cannot be nil"}
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &Combiner{
		reg:   reg,
		cache: options.cache,
		memo:  options.memo,
		memos: make(map[string]memo),
	}, nil
}

// Registry returns the registry the combiner was built with.
func (c *Combiner) Registry() *registry.Registry {
	return c.reg
}

// Cache returns the loader cache used by the combiner.
func (c *Combiner) Cache() *loader.Cache {
	return c.cache
}

// Category combines one category and writes its output file.
func (c *Combiner) Category(ctx context.Context, name string) (*Result, error) {
	cat, err := c.reg.Category(name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.category(ctx, cat)
}

// Final combines every category in registry order and writes the
// concatenation of their products to the aggregate file.
func (c *Combiner) Final(ctx context.Context) (*Summary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	summary := &Summary{
		Output:     c.reg.AggregateFile(),
		Categories: make([]*Result, 0, len(c.reg.Categories)),
	}

	all := make([]products.CombinedProduct, 0)
	for i := range c.reg.Categories {
		result, err := c.category(ctx, &c.reg.Categories[i])
		if err != nil {
			return nil, err
		}
		summary.Categories = append(summary.Categories, result)
		all = append(all, result.Products...)
	}

	if err := WriteDocument(summary.Output, products.Document{Products: all}); err != nil {
		return nil, errors.WrapResource("write", "aggregate", summary.Output, err)
	}

	summary.Products = len(all)
	summary.Duration = time.Since(start)

	logging.FromContext(ctx).Info().
		Int("products", summary.Products).
		Int("categories", len(summary.Categories)).
		Str("output", summary.Output).
		Dur("duration", summary.Duration).
		Msg("Aggregate written")

	return summary, nil
}

// category runs one category. Callers hold c.mu.
func (c *Combiner) category(ctx context.Context, cat *registry.Category) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapResource("combine", "category", cat.Name, errors.ErrCanceled)
	}

	ctx = logging.WithCategory(ctx, cat.Name)
	logger := logging.FromContext(ctx)
	start := time.Now()

	result := &Result{
		Category: cat.Name,
		Output:   c.reg.OutputFile(cat),
	}
	stats := Stats{Vendors: make(map[string]int, len(c.reg.Vendors))}

	lists := make(map[string][]products.VendorProduct, len(c.reg.Vendors))
	inputs := make([]string, 0, len(c.reg.Vendors)+1)
	for _, vendor := range c.reg.Vendors {
		path := c.reg.VendorFile(cat, vendor)
		list, status := c.cache.Load(logging.WithVendor(ctx, vendor), path)
		switch status {
		case loader.StatusMissing:
			stats.MissingFiles = append(stats.MissingFiles, path)
		case loader.StatusUnparsable:
			stats.UnparsableFiles = append(stats.UnparsableFiles, path)
		}
		lists[vendor] = list
		stats.Vendors[vendor] = len(list)
		inputs = append(inputs, vendor, c.cache.Hash(path))
	}

	var features *enhancer.Lookup
	if source := c.reg.FeatureSourceFile(cat); source != "" {
		list, _ := c.cache.Load(ctx, source)
		features = enhancer.Build(list)
		stats.FeatureKeys = features.Len()
		inputs = append(inputs, source, c.cache.Hash(source))
	}

	fingerprint := fingerprintOf(inputs)
	if prev, ok := c.memos[cat.Name]; ok && c.memo && prev.fingerprint == fingerprint {
		result.Products = prev.products
		result.Stats = prev.stats
		result.Stats.Reused = true
	} else {
		result.Products = c.assemble(cat, lists, features, &stats)
		result.Stats = stats
	}

	if err := WriteDocument(result.Output, products.Document{Products: result.Products}); err != nil {
		return nil, errors.WrapResource("write", "category", cat.Name, err)
	}

	if c.memo {
		// A reused run skipped assemble, so the match counts live in
		// result.Stats, not in the local stats.
		kept := result.Stats
		kept.Reused = false
		c.memos[cat.Name] = memo{fingerprint: fingerprint, products: result.Products, stats: kept}
	}
	result.Stats.Duration = time.Since(start)

	event := logger.Info()
	if result.Stats.Degraded() {
		event = logger.Warn().
			Strs("missing", result.Stats.MissingFiles).
			Strs("unparsable", result.Stats.UnparsableFiles)
	}
	event.
		Int("emitted", result.Stats.Emitted).
		Int("unmatched", result.Stats.Unmatched).
		Int("no_brand", result.Stats.NoBrand).
		Int("model_matches", result.Stats.ModelMatches).
		Int("attribute_matches", result.Stats.AttributeMatches).
		Bool("reused", result.Stats.Reused).
		Dur("duration", result.Stats.Duration).
		Msg("Category combined")

	return result, nil
}

// assemble matches every base vendor product and builds the combined records.
func (c *Combiner) assemble(cat *registry.Category, lists map[string][]products.VendorProduct, features *enhancer.Lookup, stats *Stats) []products.CombinedProduct {
	m := matcher.New(c.reg.Vendors, lists)
	base := lists[c.reg.BaseVendor()]
	out := make([]products.CombinedProduct, 0)

	for i := range base {
		p := &base[i]
		if p.BrandLower == "" {
			stats.NoBrand++
			continue
		}

		group, stage := m.Match(p)
		switch stage {
		case matcher.StageModel:
			stats.ModelMatches++
		case matcher.StageAttributes:
			stats.AttributeMatches++
		default:
			stats.Unmatched++
			continue
		}

		cp := products.CombinedProduct{
			ID:       productID(cat.Name, i, p.CleanTitle),
			Title:    p.Title,
			Brand:    p.Brand,
			Category: cat.Name,
			Vendors:  make(map[string]products.VendorListing, len(group)),
		}
		for vendor, listing := range group {
			cp.Vendors[vendor] = products.ListingOf(listing)
		}
		features.Enhance(&cp, p)

		out = append(out, cp)
	}

	stats.Emitted = len(out)
	return out
}

// productID derives a stable ID from the category and the base listing.
func productID(category string, index int, cleanTitle string) string {
	name := category + "\x00" + strconv.Itoa(index) + "\x00" + cleanTitle
	return uuid.NewSHA1(idNamespace, []byte(name)).String()
}

func fingerprintOf(inputs []string) string {
	h := sha256.New()
	for _, s := range inputs {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
