// Package registry holds the static configuration of the combiner: the ordered
// vendor list, the category directories and, per category, which vendor file
// is authoritative for features and images.
package registry

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/pricemap/pkg/constants"
	"github.com/agentstation/pricemap/pkg/errors"
)

// Category is one product category and the directory holding its vendor files.
type Category struct {
	Name          string `json:"name" yaml:"name"`
	Dir           string `json:"dir" yaml:"dir"`                                           // relative to the database root unless absolute
	FeatureSource string `json:"feature_source,omitempty" yaml:"feature_source,omitempty"` // vendor file name, e.g. "flipkart.json"
}

// Registry is the combiner configuration. The first vendor is the base vendor
// every match is anchored on; a combined product must cover all vendors.
type Registry struct {
	Root       string     `json:"root" yaml:"root"`
	Vendors    []string   `json:"vendors" yaml:"vendors"`
	Categories []Category `json:"categories" yaml:"categories"`
	Aggregate  string     `json:"aggregate" yaml:"aggregate"`
}

// Default returns the built-in registry rooted at root.
func Default(root string) *Registry {
	if root == "" {
		root = constants.DefaultDatabaseRoot
	}
	return &Registry{
		Root:    root,
		Vendors: []string{"amazon", "flipkart", "croma", "vijaysales", "jiomart"},
		Categories: []Category{
			{Name: "laptop", Dir: "laptop", FeatureSource: "flipkart.json"},
			{Name: "mobiles", Dir: "mobiles", FeatureSource: "amazon.json"},
			{Name: "laptop accessories", Dir: "laptopaccessories", FeatureSource: "amazon.json"},
			{Name: "mobile accessories", Dir: "mobileaccessories", FeatureSource: "amazon.json"},
		},
		Aggregate: constants.FinalFileName,
	}
}

// Load reads a YAML registry file. A non-empty root overrides the root
// declared in the file; missing fields fall back to the defaults.
func Load(path, root string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var r Registry
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}

	defaults := Default(root)
	if root != "" || r.Root == "" {
		r.Root = defaults.Root
	}
	if len(r.Vendors) == 0 {
		r.Vendors = defaults.Vendors
	}
	if len(r.Categories) == 0 {
		r.Categories = defaults.Categories
	}
	if r.Aggregate == "" {
		r.Aggregate = defaults.Aggregate
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks the registry for empty or duplicate entries.
func (r *Registry) Validate() error {
	if len(r.Vendors) == 0 {
		return errors.NewValidationError("vendors", nil, "at least one vendor is required")
	}
	seen := make(map[string]struct{}, len(r.Vendors))
	for _, v := range r.Vendors {
		if strings.TrimSpace(v) == "" {
			return errors.NewValidationError("vendors", v, "vendor name cannot be empty")
		}
		if _, dup := seen[v]; dup {
			return errors.NewValidationError("vendors", v, "duplicate vendor "+v)
		}
		seen[v] = struct{}{}
	}

	if len(r.Categories) == 0 {
		return errors.NewValidationError("categories", nil, "at least one category is required")
	}
	names := make(map[string]struct{}, len(r.Categories))
	for _, c := range r.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return errors.NewValidationError("categories", c, "category name cannot be empty")
		}
		if strings.TrimSpace(c.Dir) == "" {
			return errors.NewValidationError("categories", c.Name, "category "+c.Name+" has no directory")
		}
		if _, dup := names[c.Name]; dup {
			return errors.NewValidationError("categories", c.Name, "duplicate category "+c.Name)
		}
		names[c.Name] = struct{}{}
	}

	if r.Aggregate == "" {
		return errors.NewValidationError("aggregate", nil, "aggregate file cannot be empty")
	}
	return nil
}

// BaseVendor returns the vendor every match is anchored on.
func (r *Registry) BaseVendor() string {
	return r.Vendors[0]
}

// Category returns the category with the given name.
func (r *Registry) Category(name string) (*Category, error) {
	for i := range r.Categories {
		if r.Categories[i].Name == name {
			return &r.Categories[i], nil
		}
	}
	return nil, errors.NewNotFoundError("category", name)
}

// Names returns the category names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.Categories))
	for i, c := range r.Categories {
		names[i] = c.Name
	}
	return names
}

// Dir returns the directory of c.
func (r *Registry) Dir(c *Category) string {
	if filepath.IsAbs(c.Dir) {
		return filepath.Clean(c.Dir)
	}
	return filepath.Join(r.Root, c.Dir)
}

// VendorFile returns the path of vendor's file for c.
func (r *Registry) VendorFile(c *Category, vendor string) string {
	return filepath.Join(r.Dir(c), vendor+constants.VendorFileExt)
}

// FeatureSourceFile returns the path of the feature source file for c, or ""
// when the category has none.
func (r *Registry) FeatureSourceFile(c *Category) string {
	if c.FeatureSource == "" {
		return ""
	}
	return filepath.Join(r.Dir(c), c.FeatureSource)
}

// OutputFile returns the path of the combined output of c.
func (r *Registry) OutputFile(c *Category) string {
	return filepath.Join(r.Dir(c), constants.CombinedFileName)
}

// AggregateFile returns the path of the global aggregate.
func (r *Registry) AggregateFile() string {
	if filepath.IsAbs(r.Aggregate) {
		return filepath.Clean(r.Aggregate)
	}
	return filepath.Join(r.Root, r.Aggregate)
}

// Owner returns the first category, in registry order, whose directory
// contains path.
func (r *Registry) Owner(path string) (*Category, bool) {
	target, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}
	for i := range r.Categories {
		dir, err := filepath.Abs(r.Dir(&r.Categories[i]))
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(dir, target)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return &r.Categories[i], true
		}
	}
	return nil, false
}

// IsOutput reports whether path is a file written by the combiner.
func (r *Registry) IsOutput(path string) bool {
	if filepath.Base(path) == constants.CombinedFileName {
		return true
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	aggregate, err := filepath.Abs(r.AggregateFile())
	return err == nil && target == aggregate
}

// FormatYAML renders the registry as YAML.
func (r *Registry) FormatYAML() ([]byte, error) {
	return yaml.Marshal(r)
}
