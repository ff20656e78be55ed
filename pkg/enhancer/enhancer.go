// Package enhancer attaches canonical features and images to combined
// products. Per category one vendor file is authoritative; its listings are
// indexed once by model number (falling back to the cleaned title) and every
// combined product looks its base listing up by the same key.
package enhancer

import (
	"github.com/agentstation/pricemap/pkg/products"
)

// LookupKey returns the enrichment key of p: its model number when known,
// otherwise its cleaned title.
func LookupKey(p *products.VendorProduct) string {
	if p.Model != "" {
		return p.Model
	}
	return p.CleanTitle
}

// Lookup indexes the features and images of one feature-source vendor.
type Lookup struct {
	features map[string]any
	images   map[string]*products.Image
}

// Build indexes source, which must already be normalized. Later listings
// overwrite earlier ones with the same key. Listings without a key are
// skipped.
func Build(source []products.VendorProduct) *Lookup {
	l := &Lookup{
		features: make(map[string]any, len(source)),
		images:   make(map[string]*products.Image, len(source)),
	}
	for i := range source {
		p := &source[i]
		key := LookupKey(p)
		if key == "" {
			continue
		}
		l.features[key] = p.Features
		if img, ok := NormalizeImage(p.ImageURL); ok {
			l.images[key] = img
		}
	}
	return l
}

// Features returns the feature payload for key, or nil.
func (l *Lookup) Features(key string) any {
	if l == nil {
		return nil
	}
	return l.features[key]
}

// Image returns the image set for key, or nil.
func (l *Lookup) Image(key string) *products.Image {
	if l == nil {
		return nil
	}
	return l.images[key]
}

// Len returns the number of indexed keys.
func (l *Lookup) Len() int {
	if l == nil {
		return 0
	}
	return len(l.features)
}

// Enhance sets the features and image of cp from the entry of base.
func (l *Lookup) Enhance(cp *products.CombinedProduct, base *products.VendorProduct) {
	key := LookupKey(base)
	cp.Features = l.Features(key)
	cp.Image = l.Image(key)
}

// NormalizeImage converts a raw image_url value into an Image. It reports
// false when the value is absent or empty. Accepted shapes are a
// {thumbnail, urls} object and a list of URLs, whose first entry becomes the
// thumbnail; any other value yields an empty Image.
func NormalizeImage(raw any) (*products.Image, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, false
	case []any:
		if len(v) == 0 {
			return nil, false
		}
		urls := stringsOf(v)
		img := &products.Image{URLs: urls}
		if len(urls) > 0 {
			img.Thumbnail = urls[0]
		}
		return img, true
	case map[string]any:
		if len(v) == 0 {
			return nil, false
		}
		thumbnail, hasThumbnail := v["thumbnail"]
		urls, hasURLs := v["urls"]
		if !hasThumbnail || !hasURLs {
			return empty(), true
		}
		img := empty()
		img.Thumbnail, _ = thumbnail.(string)
		if list, ok := urls.([]any); ok {
			img.URLs = stringsOf(list)
		}
		return img, true
	case string:
		if v == "" {
			return nil, false
		}
		return empty(), true
	default:
		return empty(), true
	}
}

func empty() *products.Image {
	return &products.Image{URLs: []string{}}
}

// stringsOf keeps the string entries of list.
func stringsOf(list []any) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
