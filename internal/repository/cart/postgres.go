package cart

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const pgForeignKeyViolation = "23503"

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.CartLine, error) {
	const q = `
SELECT ci.id::text, ci.user_id::text, ci.product_id::text, ci.quantity,
       p.name, p.price::text, COALESCE(p.image_url, ''), p.stock
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.user_id = $1
ORDER BY ci.created_at ASC, ci.id
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("cart repo: list")
		return nil, err
	}
	defer rows.Close()

	lines := []domain.CartLine{}
	for rows.Next() {
		var (
			line  domain.CartLine
			price string
		)
		if err := rows.Scan(
			&line.ID,
			&line.UserID,
			&line.ProductID,
			&line.Quantity,
			&line.Product.Name,
			&price,
			&line.Product.ImageURL,
			&line.Product.Stock,
		); err != nil {
			return nil, err
		}
		line.Product.Price, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("cart repo: decode price %q for line=%s: %w", price, line.ID, err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("cart repo: list rows")
		return nil, err
	}
	r.logger.Debug().Str("user_id", userID).Int("count", len(lines)).Msg("cart repo: list")
	return lines, nil
}

func (r *postgresRepo) Insert(ctx context.Context, userID, productID string, quantity int) (string, error) {
	const q = `
INSERT INTO cart_items (user_id, product_id, quantity)
VALUES ($1, $2, $3)
RETURNING id::text
`
	var id string
	if err := r.pool.QueryRow(ctx, q, userID, productID, quantity).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return "", domain.ErrNotFound
		}
		r.logger.Error().Err(err).Str("user_id", userID).Str("product_id", productID).Msg("cart repo: insert")
		return "", err
	}
	r.logger.Debug().Str("user_id", userID).Str("line_id", id).Msg("cart repo: inserted")
	return id, nil
}

func (r *postgresRepo) UpdateQuantity(ctx context.Context, userID, lineID string, quantity int) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE cart_items
SET quantity = $1
WHERE id = $2 AND user_id = $3
`, quantity, lineID, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Str("line_id", lineID).Msg("cart repo: update quantity")
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, userID, lineID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, lineID, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Str("line_id", lineID).Msg("cart repo: delete")
		return err
	}
	r.logger.Debug().Str("user_id", userID).Str("line_id", lineID).Int64("rows", cmd.RowsAffected()).Msg("cart repo: delete")
	return nil
}

func (r *postgresRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("cart repo: clear")
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
