package products_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/pricemap/pkg/products"
)

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "bare list", input: `[{"title":"a"},{"title":"b"}]`, want: 2},
		{name: "products wrapper", input: `{"products":[{"title":"a"}]}`, want: 1},
		{name: "wrapper without products", input: `{"items":[{"title":"a"}]}`, want: 0},
		{name: "scalar document", input: `42`, want: 0},
		{name: "non-object entries skipped", input: `[{"title":"a"}, "junk", 7, null]`, want: 1},
		{name: "invalid json", input: `{"products": [`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := products.DecodeList([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, list, tt.want)
		})
	}
}

func TestFromRecord(t *testing.T) {
	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"title": "Dell XPS13-9310 13-inch",
		"brand": "  Dell ",
		"price": 99999,
		"discountprice": "89,999",
		"discount_price": "1",
		"rating": "4.5",
		"affiliatelink": "https://example.com/x",
		"offers": ["bank offer"],
		"model_number": 9310,
		"image_url": ["https://img/1.jpg"],
		"features": {"cpu": "i7"}
	}`), &record))

	p := products.FromRecord(record)

	assert.Equal(t, "Dell XPS13-9310 13-inch", p.Title)
	assert.Equal(t, "Dell", p.Brand)
	assert.Equal(t, float64(99999), p.Price)
	assert.Equal(t, "89,999", p.DiscountPrice)
	assert.Equal(t, "4.5", p.Rating)
	assert.Equal(t, []any{"bank offer"}, p.Offers)
	assert.Equal(t, "9310", p.DeclaredModel)
	assert.Equal(t, map[string]any{"cpu": "i7"}, p.Features)
}

func TestFromRecordDiscountPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		record map[string]any
		want   any
	}{
		{
			name:   "discounted_price wins",
			record: map[string]any{"discounted_price": 10.0, "discountprice": 20.0, "discount_price": 30.0},
			want:   10.0,
		},
		{
			name:   "null falls through",
			record: map[string]any{"discounted_price": nil, "discountprice": 20.0},
			want:   20.0,
		},
		{
			name:   "empty string falls through",
			record: map[string]any{"discounted_price": " ", "discount_price": "30"},
			want:   "30",
		},
		{
			name:   "none present",
			record: map[string]any{"price": 5.0},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := products.FromRecord(tt.record)
			assert.Equal(t, tt.want, p.DiscountPrice)
		})
	}
}

func TestFromRecordTolerance(t *testing.T) {
	p := products.FromRecord(map[string]any{
		"title":  nil,
		"brand":  42.0,
		"offers": "not a list",
	})

	assert.Empty(t, p.Title)
	assert.Equal(t, "42", p.Brand)
	assert.NotNil(t, p.Offers)
	assert.Empty(t, p.Offers)
}

func TestListingOf(t *testing.T) {
	p := &products.VendorProduct{Price: 1.0, DiscountPrice: 2.0, Rating: "4", AffiliateLink: "l"}
	listing := products.ListingOf(p)

	assert.Equal(t, 1.0, listing.Price)
	assert.Equal(t, 2.0, listing.DiscountPrice)
	assert.NotNil(t, listing.Offers)

	data, err := json.Marshal(listing)
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":1,"discountprice":2,"rating":"4","affiliatelink":"l","offers":[]}`, string(data))
}

func TestCombinedProductShape(t *testing.T) {
	doc := products.Document{Products: []products.CombinedProduct{{
		ID:       "id-1",
		Title:    "t",
		Brand:    "b",
		Category: "laptop",
		Vendors:  map[string]products.VendorListing{"amazon": {Offers: []any{}}},
	}}}

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"products":[{
		"id":"id-1","title":"t","brand":"b","category":"laptop",
		"vendors":{"amazon":{"price":null,"discountprice":null,"rating":null,"affiliatelink":null,"offers":[]}},
		"features":null,"image":null
	}]}`, string(data))
}
