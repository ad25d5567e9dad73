// Package catalog serves the product listing, search and detail reads and
// the admin-only product mutations.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store is the product persistence the catalog needs.
type Store interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type Service struct {
	store  Store
	logger zerolog.Logger
}

func New(store Store, logger zerolog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// ListProducts returns every product, newest first.
func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list products: %w", domain.ErrStoreRead, err)
	}
	return products, nil
}

// Search lists the catalog and filters it by name.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return SearchByName(products, query), nil
}

// GetProduct returns one product. Malformed ids are reported as not found.
func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: get product: %w", domain.ErrStoreRead, err)
	}
	return p, nil
}

// SearchByName keeps products whose name contains query, ignoring case.
// An empty query keeps everything. Order is preserved.
func SearchByName(products []domain.Product, query string) []domain.Product {
	if query == "" {
		return products
	}
	needle := strings.ToLower(query)
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}

// CreateProduct inserts a product from admin form input.
func (s *Service) CreateProduct(ctx context.Context, identity domain.Identity, form ProductForm) (*domain.Product, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	p, err := ParseProductForm(form)
	if err != nil {
		return nil, err
	}
	created, err := s.store.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%w: create product: %w", domain.ErrStoreWrite, err)
	}
	s.logger.Info().Str("user_id", identity.UserID).Str("product_id", created.ID).Msg("catalog: product created")
	return created, nil
}

// UpdateProduct replaces the editable fields of product id.
func (s *Service) UpdateProduct(ctx context.Context, identity domain.Identity, id string, form ProductForm) (*domain.Product, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	p, err := ParseProductForm(form)
	if err != nil {
		return nil, err
	}
	p.ID = id
	updated, err := s.store.Update(ctx, p)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: update product: %w", domain.ErrStoreWrite, err)
	}
	s.logger.Info().Str("user_id", identity.UserID).Str("product_id", id).Msg("catalog: product updated")
	return updated, nil
}

// DeleteProduct removes product id. Cart lines referencing it go with it.
func (s *Service) DeleteProduct(ctx context.Context, identity domain.Identity, id string) error {
	if err := requireAdmin(identity); err != nil {
		return err
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: delete product: %w", domain.ErrStoreWrite, err)
	}
	s.logger.Info().Str("user_id", identity.UserID).Str("product_id", id).Msg("catalog: product deleted")
	return nil
}

func requireAdmin(identity domain.Identity) error {
	if !identity.Authenticated() {
		return domain.ErrAuthRequired
	}
	if !identity.IsAdmin {
		return domain.ErrForbidden
	}
	return nil
}
