package catalog

import (
	"math"
	"strconv"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/validate"

	"github.com/shopspring/decimal"
)

// maxPrice is the largest value a NUMERIC(12,2) column holds.
var maxPrice = decimal.RequireFromString("9999999999.99")

// ProductForm is the admin product form as submitted: every field is text.
type ProductForm struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Price       string `json:"price" validate:"required"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url"`
	Stock       string `json:"stock" validate:"required"`
}

// ParseProductForm validates the form and converts it into a product.
// Prices are rounded to cents.
func ParseProductForm(form ProductForm) (domain.Product, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Description = strings.TrimSpace(form.Description)
	form.Price = strings.TrimSpace(form.Price)
	form.ImageURL = strings.TrimSpace(form.ImageURL)
	form.Stock = strings.TrimSpace(form.Stock)
	if err := validate.Struct(form); err != nil {
		return domain.Product{}, err
	}

	price, err := decimal.NewFromString(form.Price)
	if err != nil {
		return domain.Product{}, domain.NewValidationError("price", "must be a number")
	}
	if price.IsNegative() {
		return domain.Product{}, domain.NewValidationError("price", "must be greater than or equal to 0")
	}
	price = price.Round(2)
	if price.GreaterThan(maxPrice) {
		return domain.Product{}, domain.NewValidationError("price", "is too large")
	}

	stock, err := strconv.Atoi(form.Stock)
	if err != nil {
		return domain.Product{}, domain.NewValidationError("stock", "must be a whole number")
	}
	if stock < 0 {
		return domain.Product{}, domain.NewValidationError("stock", "must be greater than or equal to 0")
	}
	if stock > math.MaxInt32 {
		return domain.Product{}, domain.NewValidationError("stock", "is too large")
	}

	return domain.Product{
		Name:        form.Name,
		Description: form.Description,
		Price:       price,
		ImageURL:    form.ImageURL,
		Stock:       stock,
	}, nil
}
