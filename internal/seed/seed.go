// Package seed loads demo catalog data and an admin account for manual testing.
package seed

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/service/identity"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type productSeed struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Stock       int
}

// Options controls the seeded admin account. An empty AdminEmail skips it.
type Options struct {
	AdminEmail    string
	AdminPassword string
}

var demoProducts = []productSeed{
	{
		Name:        "Рубашка",
		Description: "Хлопковая рубашка",
		Price:       decimal.RequireFromString("1500.00"),
		ImageURL:    "https://images.example.com/shirt.jpg",
		Stock:       10,
	},
	{
		Name:        "Книга",
		Description: "Твёрдый переплёт",
		Price:       decimal.RequireFromString("700.00"),
		Stock:       0,
	},
	{
		Name:        "Шкаф",
		Description: "Дубовый шкаф",
		Price:       decimal.RequireFromString("25000.00"),
		ImageURL:    "https://images.example.com/wardrobe.jpg",
		Stock:       2,
	},
	{
		Name:        "Demo Mug",
		Description: "Ceramic mug with demo logo",
		Price:       decimal.RequireFromString("12.99"),
		Stock:       25,
	},
}

// Apply inserts seed data. Products are matched by name and the admin by
// email, so running it twice changes nothing.
func Apply(ctx context.Context, pool *pgxpool.Pool, opts Options, logger zerolog.Logger) error {
	for _, p := range demoProducts {
		inserted, err := insertProduct(ctx, pool, p)
		if err != nil {
			return fmt.Errorf("insert product %q: %w", p.Name, err)
		}
		logger.Debug().Str("name", p.Name).Bool("inserted", inserted).Msg("seed: product")
	}

	if strings.TrimSpace(opts.AdminEmail) == "" {
		return nil
	}
	if err := upsertAdmin(ctx, pool, opts.AdminEmail, opts.AdminPassword); err != nil {
		return fmt.Errorf("upsert admin %q: %w", opts.AdminEmail, err)
	}
	logger.Info().Str("email", opts.AdminEmail).Msg("seed: admin ready")
	return nil
}

func insertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) (bool, error) {
	const q = `
INSERT INTO products (name, description, price, image_url, stock)
SELECT $1, NULLIF($2, ''), $3::numeric, NULLIF($4, ''), $5
WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = $1)
`
	cmd, err := pool.Exec(ctx, q, p.Name, p.Description, p.Price.StringFixed(2), p.ImageURL, p.Stock)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func upsertAdmin(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	if len(password) < 8 {
		return fmt.Errorf("admin password must be at least 8 characters")
	}
	hash, err := identity.HashPassword(password)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO users (email, password_hash, is_admin)
VALUES (lower($1), $2, TRUE)
ON CONFLICT ((lower(email))) DO UPDATE
SET password_hash = EXCLUDED.password_hash,
    is_admin = TRUE
`
	_, err = pool.Exec(ctx, q, strings.TrimSpace(email), hash)
	return err
}
