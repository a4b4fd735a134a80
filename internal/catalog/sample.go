package catalog

import (
	"strings"

	"shippingbar-service/internal/model"
)

const imageParams = "?ixlib=rb-1.2.1&auto=format&fit=crop&w=100&q=80"

// sampleProducts is served when no Wix store is reachable
var sampleProducts = []model.Product{
	{ID: "1", Name: "Leather Wallet", Price: 1999, ImageURL: "https://images.unsplash.com/photo-1434389677669-e08b4cac3105" + imageParams},
	{ID: "2", Name: "Cotton T-Shirt", Price: 1499, ImageURL: "https://images.unsplash.com/photo-1543512214-318c7553f230" + imageParams},
	{ID: "3", Name: "Phone Case", Price: 1299, ImageURL: "https://images.unsplash.com/photo-1560343090-f0409e92791a" + imageParams},
	{ID: "4", Name: "Sunglasses", Price: 2499, ImageURL: "https://images.unsplash.com/photo-1565620731358-e8c038abc8d1" + imageParams},
	{ID: "5", Name: "Handmade Soap", Price: 799, ImageURL: "https://images.unsplash.com/photo-1613333835718-9b8b24e92939" + imageParams},
}

// SampleProducts filters the sample catalog by case-insensitive name substring
func SampleProducts(query string) []model.Product {
	query = strings.ToLower(strings.TrimSpace(query))

	out := make([]model.Product, 0, len(sampleProducts))
	for _, p := range sampleProducts {
		if query == "" || strings.Contains(strings.ToLower(p.Name), query) {
			out = append(out, p)
		}
	}
	return out
}
