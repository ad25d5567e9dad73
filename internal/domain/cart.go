package domain

import "github.com/shopspring/decimal"

// ProductSnapshot holds the product fields copied onto a cart line at read time.
type ProductSnapshot struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"imageUrl,omitempty"`
	Stock    int             `json:"stock"`
}

type CartLine struct {
	ID        string          `json:"id"`
	UserID    string          `json:"-"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Product   ProductSnapshot `json:"product"`
}

// Subtotal is quantity times the snapshot price.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the derived view of a user's lines. It is never persisted.
type Cart struct {
	Lines     []CartLine      `json:"lineItems"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

// NewCart builds the view and its derived values from lines.
func NewCart(lines []CartLine) Cart {
	if lines == nil {
		lines = []CartLine{}
	}
	return Cart{
		Lines:     lines,
		Total:     CartTotal(lines),
		ItemCount: CartItemCount(lines),
	}
}

// CartTotal returns the sum of quantity times snapshot price.
func CartTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// CartItemCount returns the sum of line quantities.
func CartItemCount(lines []CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}
