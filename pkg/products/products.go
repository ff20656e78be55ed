// Package products defines the records flowing through the pricemap pipeline:
// raw vendor listings as scraped, and the combined catalog entries built from them.
//
// Vendor files are produced by independent scrapers and are not validated.
// Decoding is therefore tolerant: a record is any JSON object, every field is
// optional, and values whose type is unexpected are kept opaque or dropped
// rather than failing the whole file.
package products

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Raw vendor record field names.
const (
	FieldTitle           = "title"
	FieldBrand           = "brand"
	FieldPrice           = "price"
	FieldDiscountedPrice = "discounted_price"
	FieldDiscountPrice   = "discountprice"
	FieldDiscountPrice2  = "discount_price"
	FieldRating          = "rating"
	FieldAffiliateLink   = "affiliatelink"
	FieldOffers          = "offers"
	FieldModelNumber     = "model_number"
	FieldImageURL        = "image_url"
	FieldFeatures        = "features"
)

// discountFields lists the discount price spellings in precedence order.
var discountFields = []string{FieldDiscountedPrice, FieldDiscountPrice, FieldDiscountPrice2}

// VendorProduct is one scraped listing from one vendor.
//
// Price-like values are kept as decoded JSON values (numbers or strings,
// depending on the scraper) and passed through to the output untouched.
type VendorProduct struct {
	Title         string `json:"title"`
	Brand         string `json:"brand"`
	Price         any    `json:"price"`
	DiscountPrice any    `json:"discountprice"`
	Rating        any    `json:"rating"`
	AffiliateLink any    `json:"affiliatelink"`
	Offers        []any  `json:"offers"`
	DeclaredModel string `json:"model_number,omitempty"`
	ImageURL      any    `json:"image_url,omitempty"`
	Features      any    `json:"features,omitempty"`

	// Derived by normalize.Apply at load time. Empty means absent.
	BrandLower string `json:"-"`
	CleanTitle string `json:"-"`
	Model      string `json:"-"`
	RAM        string `json:"-"`
	Storage    string `json:"-"`
	ShortTitle string `json:"-"`
}

// Triple is the fallback matching key of a normalized product.
type Triple struct {
	ShortTitle string
	RAM        string
	Storage    string
}

// Triple returns the (short title, RAM, storage) key of the product.
func (p *VendorProduct) Triple() Triple {
	return Triple{ShortTitle: p.ShortTitle, RAM: p.RAM, Storage: p.Storage}
}

// FromRecord builds a VendorProduct from one decoded vendor record.
func FromRecord(record map[string]any) VendorProduct {
	p := VendorProduct{
		Title:         text(record[FieldTitle]),
		Brand:         strings.TrimSpace(text(record[FieldBrand])),
		Price:         record[FieldPrice],
		Rating:        record[FieldRating],
		AffiliateLink: record[FieldAffiliateLink],
		DeclaredModel: strings.TrimSpace(text(record[FieldModelNumber])),
		ImageURL:      record[FieldImageURL],
		Features:      record[FieldFeatures],
		Offers:        []any{},
	}

	for _, field := range discountFields {
		if v, ok := record[field]; ok && present(v) {
			p.DiscountPrice = v
			break
		}
	}

	if offers, ok := record[FieldOffers].([]any); ok {
		p.Offers = offers
	}

	return p
}

// DecodeList parses a vendor file. The document may be a bare list of records
// or an object with a "products" list. Entries that are not JSON objects are
// skipped. A document of any other shape yields an empty list.
func DecodeList(data []byte) ([]VendorProduct, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		items, _ = v["products"].([]any)
	}

	list := make([]VendorProduct, 0, len(items))
	for _, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			continue
		}
		list = append(list, FromRecord(record))
	}
	return list, nil
}

// text renders a scalar field as a string. Null becomes "".
func text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(s)
	}
}

// present reports whether a discount value counts as set.
func present(v any) bool {
	switch s := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(s) != ""
	default:
		return true
	}
}
