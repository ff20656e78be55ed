// Package status reports the state of the vendor data on disk: product
// counts, sizes and ages of every vendor file, and the size of the combined
// outputs.
package status

import (
	"fmt"
	"os"
	"time"

	"github.com/agentstation/pricemap/pkg/combiner"
	"github.com/agentstation/pricemap/pkg/constants"
	"github.com/agentstation/pricemap/pkg/products"
	"github.com/agentstation/pricemap/pkg/registry"
)

// Freshness buckets the age of a vendor file.
type Freshness string

// Freshness values.
const (
	Fresh Freshness = "fresh" // modified within constants.FreshAge
	Stale Freshness = "stale" // modified within constants.StaleAge
	Old   Freshness = "old"
)

// FreshnessOf returns the freshness bucket of a file of the given age.
func FreshnessOf(age time.Duration) Freshness {
	switch {
	case age < constants.FreshAge:
		return Fresh
	case age < constants.StaleAge:
		return Stale
	default:
		return Old
	}
}

// FormatAge renders age the way operators read it: minutes below an hour,
// hours below a day, days otherwise.
func FormatAge(age time.Duration) string {
	switch FreshnessOf(age) {
	case Fresh:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case Stale:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	}
}

// VendorFile is the state of one vendor file.
type VendorFile struct {
	Vendor    string        `json:"vendor" yaml:"vendor"`
	Path      string        `json:"path" yaml:"path"`
	Exists    bool          `json:"exists" yaml:"exists"`
	Products  int           `json:"products" yaml:"products"`
	Size      int64         `json:"size" yaml:"size"`
	ModTime   time.Time     `json:"mod_time,omitempty" yaml:"mod_time,omitempty"`
	Age       time.Duration `json:"age,omitempty" yaml:"age,omitempty"`
	Freshness Freshness     `json:"freshness,omitempty" yaml:"freshness,omitempty"`
	Error     string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// Output is the state of a combiner output file.
type Output struct {
	Path     string `json:"path" yaml:"path"`
	Exists   bool   `json:"exists" yaml:"exists"`
	Products int    `json:"products" yaml:"products"`
	Size     int64  `json:"size" yaml:"size"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Category is the state of one category directory.
type Category struct {
	Name      string       `json:"name" yaml:"name"`
	Dir       string       `json:"dir" yaml:"dir"`
	DirExists bool         `json:"dir_exists" yaml:"dir_exists"`
	Vendors   []VendorFile `json:"vendors" yaml:"vendors"`
	Products  int          `json:"products" yaml:"products"`
	Combined  Output       `json:"combined" yaml:"combined"`
}

// Report is a snapshot of the whole database.
type Report struct {
	CheckedAt  time.Time  `json:"checked_at" yaml:"checked_at"`
	Root       string     `json:"root" yaml:"root"`
	Categories []Category `json:"categories" yaml:"categories"`
	Aggregate  Output     `json:"aggregate" yaml:"aggregate"`
	Products   int        `json:"products" yaml:"products"` // vendor products across all categories
}

// Collect inspects every category of reg. Unreadable files are reported, not
// returned as errors.
func Collect(reg *registry.Registry, now time.Time) *Report {
	report := &Report{
		CheckedAt:  now,
		Root:       reg.Root,
		Categories: make([]Category, 0, len(reg.Categories)),
	}

	for i := range reg.Categories {
		cat := &reg.Categories[i]
		c := Category{
			Name:    cat.Name,
			Dir:     reg.Dir(cat),
			Vendors: make([]VendorFile, 0, len(reg.Vendors)),
		}
		if info, err := os.Stat(c.Dir); err == nil && info.IsDir() {
			c.DirExists = true
		}

		for _, vendor := range reg.Vendors {
			vf := inspectVendor(reg.VendorFile(cat, vendor), now)
			vf.Vendor = vendor
			c.Products += vf.Products
			c.Vendors = append(c.Vendors, vf)
		}
		c.Combined = inspectOutput(reg.OutputFile(cat))

		report.Products += c.Products
		report.Categories = append(report.Categories, c)
	}

	report.Aggregate = inspectOutput(reg.AggregateFile())
	return report
}

func inspectVendor(path string, now time.Time) VendorFile {
	vf := VendorFile{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			vf.Error = err.Error()
		}
		return vf
	}
	vf.Exists = true
	vf.Size = info.Size()
	vf.ModTime = info.ModTime()
	vf.Age = now.Sub(vf.ModTime)
	if vf.Age < 0 {
		vf.Age = 0
	}
	vf.Freshness = FreshnessOf(vf.Age)

	data, err := os.ReadFile(path)
	if err != nil {
		vf.Error = err.Error()
		return vf
	}
	list, err := products.DecodeList(data)
	if err != nil {
		vf.Error = err.Error()
		return vf
	}
	vf.Products = len(list)
	return vf
}

func inspectOutput(path string) Output {
	out := Output{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			out.Error = err.Error()
		}
		return out
	}
	out.Exists = true
	out.Size = info.Size()

	doc, err := combiner.ReadDocument(path)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.Products = len(doc.Products)
	return out
}
