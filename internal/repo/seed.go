package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/shopspring/decimal"
)

func sampleProducts() []models.Product {
	p := func(name, desc, price, image, category string) models.Product {
		return models.Product{
			Name:        name,
			Description: desc,
			Price:       decimal.RequireFromString(price),
			Image:       image,
			Category:    category,
		}
	}
	return []models.Product{
		p("Wireless Headphones", "Premium noise-cancelling wireless headphones with 30-hour battery life", "199.99",
			"https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=500", "Electronics"),
		p("Smart Watch", "Fitness tracking smartwatch with heart rate monitor and GPS", "299.99",
			"https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=500", "Electronics"),
		p("Laptop Stand", "Ergonomic aluminum laptop stand with adjustable height", "49.99",
			"https://images.unsplash.com/photo-1527864550417-7fd91fc51a46?w=500", "Accessories"),
		p("Mechanical Keyboard", "RGB backlit mechanical gaming keyboard with blue switches", "129.99",
			"https://images.unsplash.com/photo-1587829741301-dc798b83add3?w=500", "Electronics"),
		p("Wireless Mouse", "Ergonomic wireless mouse with precision tracking", "39.99",
			"https://images.unsplash.com/photo-1527814050087-3793815479db?w=500", "Electronics"),
		p("USB-C Hub", "7-in-1 USB-C hub with HDMI, USB 3.0, and SD card reader", "59.99",
			"https://images.unsplash.com/photo-1625948515291-69613efd103f?w=500", "Accessories"),
		p("Phone Case", "Premium leather phone case with card holder", "29.99",
			"https://images.unsplash.com/photo-1585792180666-f7347c490ee2?w=500", "Accessories"),
		p("Portable Charger", "20000mAh portable power bank with fast charging", "44.99",
			"https://images.unsplash.com/photo-1609091839311-d5365f9ff1c5?w=500", "Electronics"),
	}
}

// SeedProducts fills an empty catalog with the sample products and returns
// what it inserted (nil when the catalog already had rows).
func SeedProducts(ctx context.Context, q Queries) ([]models.Product, error) {
	n, err := q.CountProducts(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, nil
	}

	products := sampleProducts()
	if err := q.CreateProducts(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}
