package domain

// Product represents a purchasable item as served by the shop API
type Product struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Cost     int64  `json:"cost"`   // integer currency units
	Rating   int    `json:"rating"` // 0-5
	ImageURL string `json:"image"`
}

// CartEntry is the server-side cart record for one product
type CartEntry struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"qty"`
}

// CartLineItem is a CartEntry joined with its Product.
// ProductID and Quantity always come from the entry; the remaining fields
// come from the matched product and stay zero when Matched is false.
type CartLineItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"qty"`
	Name      string `json:"name,omitempty"`
	Category  string `json:"category,omitempty"`
	Cost      int64  `json:"cost"`
	Rating    int    `json:"rating,omitempty"`
	ImageURL  string `json:"image,omitempty"`
	Matched   bool   `json:"matched"`
}

// LineTotal returns cost * quantity for the item
func (i CartLineItem) LineTotal() int64 {
	return i.Cost * int64(i.Quantity)
}

// CartUpdate is the request body for POST /cart
type CartUpdate struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"qty"`
}

// Checkout is the read-only order summary shown on the checkout page
type Checkout struct {
	Items           []CartLineItem `json:"items"`
	ProductCount    int            `json:"productCount"`
	Subtotal        int64          `json:"subtotal"`
	ShippingCharges int64          `json:"shippingCharges"`
	Total           int64          `json:"total"`
}
