// Package importer loads catalog products from a CSV file.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/service/catalog"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

// ProductWriter persists imported products.
type ProductWriter interface {
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
}

// CSVImporter reads product rows and creates them, or updates them when the
// row carries the id of an existing product.
//
// Columns: id (optional), name, description, price, image_url, stock.
type CSVImporter struct {
	reader   *csv.Reader
	products ProductWriter
	logger   zerolog.Logger
}

func NewCSVImporter(r io.Reader, products ProductWriter, logger zerolog.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:   csvr,
		products: products,
		logger:   logger,
	}
}

// Run imports every row. Invalid rows are skipped and reported together in
// the returned error; the count covers the rows that were saved.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["name"]; !ok {
		return 0, errors.New("missing required column \"name\"")
	}

	var (
		imported int
		rowErrs  error
	)
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return imported, multierr.Append(rowErrs, fmt.Errorf("read row %d: %w", line, err))
		}
		if isBlank(record) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return imported, multierr.Append(rowErrs, err)
		}

		if err := i.save(ctx, record, index); err != nil {
			i.logger.Warn().Err(err).Int("row", line).Msg("importer: row skipped")
			rowErrs = multierr.Append(rowErrs, fmt.Errorf("row %d: %w", line, err))
			continue
		}
		imported++
	}

	i.logger.Info().Int("imported", imported).Int("failed", len(multierr.Errors(rowErrs))).Msg("importer: done")
	return imported, rowErrs
}

func (i *CSVImporter) save(ctx context.Context, record []string, index map[string]int) error {
	p, err := catalog.ParseProductForm(catalog.ProductForm{
		Name:        pick(record, index, "name"),
		Description: pick(record, index, "description"),
		Price:       pick(record, index, "price"),
		ImageURL:    pick(record, index, "image_url", "imageUrl"),
		Stock:       pick(record, index, "stock"),
	})
	if err != nil {
		return err
	}

	id := pick(record, index, "id")
	if id == "" {
		_, err = i.products.Create(ctx, p)
		return err
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.NewValidationError("id", "must be a valid id")
	}
	p.ID = id
	_, err = i.products.Update(ctx, p)
	return err
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return idx
}

// pick returns the first non-empty value among the named columns.
func pick(record []string, index map[string]int, names ...string) string {
	for _, name := range names {
		pos, ok := index[name]
		if !ok || pos >= len(record) {
			continue
		}
		if v := strings.TrimSpace(record[pos]); v != "" {
			return v
		}
	}
	return ""
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
