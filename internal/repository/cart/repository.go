package cart

import (
	"context"

	"storefront/internal/domain"
)

// Repository is the cart_items table, always scoped to one user.
type Repository interface {
	// ListByUser returns the user's lines joined with the current product snapshot.
	ListByUser(ctx context.Context, userID string) ([]domain.CartLine, error)
	Insert(ctx context.Context, userID, productID string, quantity int) (string, error)
	UpdateQuantity(ctx context.Context, userID, lineID string, quantity int) error
	// Delete is a no-op when the line does not exist.
	Delete(ctx context.Context, userID, lineID string) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}
