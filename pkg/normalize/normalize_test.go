package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/pricemap/pkg/normalize"
	"github.com/agentstation/pricemap/pkg/products"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercase and trim", input: "  MiXeD Case  ", want: "mixed case"},
		{name: "bidi marks", input: "\u200eDell\u200f XPS\u202c", want: "dell xps"},
		{name: "embedding controls", input: "\u202aHP\u202b \u202d15s\u202e", want: "hp 15s"},
		{name: "empty", input: "", want: ""},
		{name: "only controls", input: "\u200e\u200f", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalize.CleanText(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, normalize.CleanText(got), "CleanText must be idempotent")
		})
	}
}

func TestModelNumber(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{title: "Dell XPS13-9310 13-inch", want: "xps13-9310"},
		{title: "Lenovo IdeaPad 82XM00JCIN Laptop", want: "82xm00jcin"},
		{title: "ASUS Vivobook DDR4 X515EA-EJ322WS", want: "x515ea-ej322ws"},
		{title: "Apple MacBook Air M2 8GB RAM 256GB SSD", want: ""},
		{title: "Apple MacBook Pro", want: ""},
		{title: "Samsung Galaxy S23 Ultra 5G (12GB, 256GB)", want: ""},
		{title: "Intel Windows 11 Home 2023", want: ""},
		{title: "Power Bank 20000mAh 12345", want: ""},
		{title: "Monitor 144Hz LPDDR5X 12TH", want: ""},
		{title: "Cable 1234-56", want: "1234-56"},
		{title: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize.ModelNumber(tt.title))
		})
	}
}

func TestRAMStorage(t *testing.T) {
	tests := []struct {
		title       string
		wantRAM     string
		wantStorage string
	}{
		{title: "16GB RAM 512GB SSD Laptop", wantRAM: "16", wantStorage: "512"},
		{title: "512GB SSD 16GB RAM", wantRAM: "16", wantStorage: "512"},
		{title: "8 GB RAM | 256 GB storage", wantRAM: "8", wantStorage: "256"},
		{title: "Phone 128GB", wantRAM: "", wantStorage: "128"},
		{title: "Tablet 64GB 4GB RAM 256GB eMMC", wantRAM: "4", wantStorage: "256"},
		{title: "No sizes here", wantRAM: "", wantStorage: ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			ram, storage := normalize.RAMStorage(tt.title)
			assert.Equal(t, tt.wantRAM, ram)
			assert.Equal(t, tt.wantStorage, storage)
		})
	}
}

func TestShortTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		brand string
		want  string
	}{
		{
			name:  "stopwords and os",
			title: "HP Pavilion 15 Laptop Windows 11 Home",
			brand: "HP",
			want:  "pavilion 15 11",
		},
		{
			name:  "codes and units",
			title: "Dell XPS13-9310 13-inch Laptop",
			brand: "Dell",
			want:  "xps13",
		},
		{
			name:  "truncated to six words",
			title: "Acme alpha beta gamma delta epsilon zeta eta",
			brand: "Acme",
			want:  "alpha beta gamma delta epsilon zeta",
		},
		{
			name:  "resolution",
			title: "Acme Vision 1920x1080 Monitor",
			brand: "",
			want:  "acme vision monitor",
		},
		{
			name:  "empty",
			title: "",
			brand: "Dell",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize.ShortTitle(tt.title, tt.brand))
		})
	}
}

func TestShortTitleStableAcrossVendors(t *testing.T) {
	a := normalize.ShortTitle("Dell Inspiron 3520 Laptop", "Dell")
	b := normalize.ShortTitle("DELL Inspiron 3520 Notebook (Windows)", "DELL")

	assert.Equal(t, "inspiron", a)
	assert.Equal(t, a, b)
}

func TestShortTitleIdempotent(t *testing.T) {
	titles := []struct{ title, brand string }{
		{"Lenovo IdeaPad Slim 3 Intel Core i5 12th Gen 16GB RAM 512GB SSD 15.6 inch", "Lenovo"},
		{`LENOVO IdeaPad Slim 3 (Core i5-12th Gen/16 GB/512 GB SSD/Windows 11 Home) 15.6"`, "Lenovo"},
		{"Dell XPS13-9310 13-inch", "Dell"},
		{"boAt Airdopes 141 TWS Earbuds, 42H Playtime", "boAt"},
		{"Samsung Galaxy S23 Ultra 5G (Phantom Black, 12GB, 256GB Storage)", "Samsung"},
		{"a - b x 16 GB", ""},
		{"\u200eApple MacBook Air M2 13.6 inch Retina Display", "Apple"},
	}

	for _, tt := range titles {
		once := normalize.ShortTitle(tt.title, tt.brand)
		twice := normalize.ShortTitle(once, tt.brand)
		assert.Equal(t, once, twice, "title %q", tt.title)
	}
}

func TestApply(t *testing.T) {
	p := products.VendorProduct{
		Title: "Dell XPS13-9310 13-inch 16GB RAM 512GB SSD",
		Brand: " Dell ",
	}
	normalize.Apply(&p)

	assert.Equal(t, "dell", p.BrandLower)
	assert.Equal(t, "dell xps13-9310 13-inch 16gb ram 512gb ssd", p.CleanTitle)
	assert.Equal(t, "xps13-9310", p.Model)
	assert.Equal(t, "16", p.RAM)
	assert.Equal(t, "512", p.Storage)
	assert.Equal(t, "xps13 ram ssd", p.ShortTitle)
}

func TestApplyDeclaredModelFallback(t *testing.T) {
	list := []products.VendorProduct{
		{Title: "boAt Airdopes", Brand: "boAt", DeclaredModel: "AD-141"},
		{Title: "Lenovo IdeaPad 82XM00JCIN", Brand: "Lenovo", DeclaredModel: "ignored"},
	}
	normalize.ApplyAll(list)

	assert.Equal(t, "ad-141", list[0].Model)
	assert.Equal(t, "82xm00jcin", list[1].Model)
}
