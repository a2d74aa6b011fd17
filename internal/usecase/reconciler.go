package usecase

import "github.com/qkart/storefront/internal/domain"

// JoinCartWithCatalog joins server cart entries with the catalog.
//
// Order and cardinality of entries are preserved. Each entry is matched to
// the first product whose ID equals its ProductID; ProductID and Quantity
// always come from the entry. Entries without a matching product pass
// through with zero product fields and Matched=false.
//
// A nil entries slice means "no cart" and yields nil; an empty slice yields
// an empty, non-nil slice.
func JoinCartWithCatalog(entries []domain.CartEntry, catalog []domain.Product) []domain.CartLineItem {
	if entries == nil {
		return nil
	}

	items := make([]domain.CartLineItem, 0, len(entries))
	for _, entry := range entries {
		item := domain.CartLineItem{
			ProductID: entry.ProductID,
			Quantity:  entry.Quantity,
		}
		if product, ok := findProduct(catalog, entry.ProductID); ok {
			item.Name = product.Name
			item.Category = product.Category
			item.Cost = product.Cost
			item.Rating = product.Rating
			item.ImageURL = product.ImageURL
			item.Matched = true
		}
		items = append(items, item)
	}
	return items
}

// CartTotal sums cost * quantity over all items
func CartTotal(items []domain.CartLineItem) int64 {
	if len(items) == 0 {
		return 0
	}

	var total int64
	for _, item := range items {
		total += item.LineTotal()
	}
	return total
}

// IsProductInCart reports whether any line item has the given product id
func IsProductInCart(items []domain.CartLineItem, productID string) bool {
	for _, item := range items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// VisibleItems returns the items with a quantity of at least one, which is
// what the cart panel and checkout display.
func VisibleItems(items []domain.CartLineItem) []domain.CartLineItem {
	visible := make([]domain.CartLineItem, 0, len(items))
	for _, item := range items {
		if item.Quantity >= 1 {
			visible = append(visible, item)
		}
	}
	return visible
}

// CheckoutSummary builds the read-only order details for the checkout page.
// Shipping is free.
func CheckoutSummary(items []domain.CartLineItem) (*domain.Checkout, error) {
	visible := VisibleItems(items)
	if len(visible) == 0 {
		return nil, domain.ErrEmptyCart
	}

	subtotal := CartTotal(visible)
	return &domain.Checkout{
		Items:           visible,
		ProductCount:    len(visible),
		Subtotal:        subtotal,
		ShippingCharges: 0,
		Total:           subtotal,
	}, nil
}

func findProduct(catalog []domain.Product, id string) (domain.Product, bool) {
	for _, product := range catalog {
		if product.ID == id {
			return product, true
		}
	}
	return domain.Product{}, false
}
