package models

// CartItem is one product line. ID is the product id; a cart holds at most one
// line per product.
type CartItem struct {
	ID       string  `bson:"id" json:"id" validate:"required"`
	Name     string  `bson:"name" json:"name"`
	Price    float64 `bson:"price" json:"price" validate:"gte=0"`
	Quantity int     `bson:"quantity" json:"quantity" validate:"gte=1"`
	Image    string  `bson:"image" json:"image"`
	Wattage  string  `bson:"wattage,omitempty" json:"wattage,omitempty"`
}

// Cart is stored under the owning user's id.
type Cart struct {
	Meta   `bson:",inline"`
	UserID string     `bson:"userId" json:"userId"`
	Items  []CartItem `bson:"items" json:"items"`
}

// Subtotal sums price*quantity over all lines.
func Subtotal(items []CartItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}
