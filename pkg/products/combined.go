package products

// CombinedProduct is one catalog entry covering every configured vendor.
type CombinedProduct struct {
	ID       string                   `json:"id"`
	Title    string                   `json:"title"`
	Brand    string                   `json:"brand"`
	Category string                   `json:"category"`
	Vendors  map[string]VendorListing `json:"vendors"`
	Features any                      `json:"features"`
	Image    *Image                   `json:"image"`
}

// VendorListing is the per-vendor commercial data of a combined product.
type VendorListing struct {
	Price         any   `json:"price"`
	DiscountPrice any   `json:"discountprice"`
	Rating        any   `json:"rating"`
	AffiliateLink any   `json:"affiliatelink"`
	Offers        []any `json:"offers"`
}

// ListingOf extracts the commercial fields of a vendor product.
func ListingOf(p *VendorProduct) VendorListing {
	offers := p.Offers
	if offers == nil {
		offers = []any{}
	}
	return VendorListing{
		Price:         p.Price,
		DiscountPrice: p.DiscountPrice,
		Rating:        p.Rating,
		AffiliateLink: p.AffiliateLink,
		Offers:        offers,
	}
}

// Image is the canonical image set of a product.
type Image struct {
	Thumbnail string   `json:"thumbnail"`
	URLs      []string `json:"urls"`
}

// Document is the on-disk shape of every combiner output file.
type Document struct {
	Products []CombinedProduct `json:"products"`
}
