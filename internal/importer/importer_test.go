package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"storefront/internal/domain"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

type stubProductRepo struct {
	created []domain.Product
	updated []domain.Product
}

func (s *stubProductRepo) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	s.created = append(s.created, p)
	return &p, nil
}

func (s *stubProductRepo) Update(_ context.Context, p domain.Product) (*domain.Product, error) {
	if p.ID == "00000000-0000-0000-0000-000000000404" {
		return nil, domain.ErrNotFound
	}
	s.updated = append(s.updated, p)
	return &p, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `name,description,price,image_url,stock
Рубашка,Хлопок,1500.00,https://example.com/shirt.jpg,4
Книга,,700,,0

Шкаф,Дуб,25000.5,,1
`
	repo := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, zerolog.Nop())

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 3 || len(repo.created) != 3 {
		t.Fatalf("expected 3 products imported, got %d (%d saved)", count, len(repo.created))
	}
	first := repo.created[0]
	if first.Name != "Рубашка" || first.Stock != 4 || first.ImageURL != "https://example.com/shirt.jpg" || !first.Price.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("unexpected product data: %+v", first)
	}
	if !repo.created[2].Price.Equal(decimal.RequireFromString("25000.50")) {
		t.Fatalf("unexpected price %s", repo.created[2].Price)
	}
}

func TestCSVImporter_UpdatesRowsWithID(t *testing.T) {
	csvData := `id,name,price,stock
00000000-0000-0000-0000-000000000001,Рубашка,1200,2
,Лампа,300,5
`
	repo := &stubProductRepo{}
	count, err := NewCSVImporter(strings.NewReader(csvData), repo, zerolog.Nop()).Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 2 || len(repo.updated) != 1 || len(repo.created) != 1 {
		t.Fatalf("expected 1 update and 1 create, got %d/%d", len(repo.updated), len(repo.created))
	}
	if repo.updated[0].ID != "00000000-0000-0000-0000-000000000001" {
		t.Fatalf("expected id to be preserved, got %s", repo.updated[0].ID)
	}
}

func TestCSVImporter_CollectsRowErrors(t *testing.T) {
	csvData := `id,name,price,stock
,Рубашка,abc,2
,,10,1
not-a-uuid,Книга,10,1
00000000-0000-0000-0000-000000000404,Шкаф,10,1
,Лампа,300,5
`
	repo := &stubProductRepo{}
	count, err := NewCSVImporter(strings.NewReader(csvData), repo, zerolog.Nop()).Run(context.Background())
	if count != 1 || len(repo.created) != 1 {
		t.Fatalf("expected only the valid row imported, got %d", count)
	}
	errs := multierr.Errors(err)
	if len(errs) != 4 {
		t.Fatalf("expected 4 row errors, got %d: %v", len(errs), err)
	}
	if !errors.Is(errs[0], domain.ErrValidation) || !strings.Contains(errs[0].Error(), "row 2") {
		t.Fatalf("unexpected first error: %v", errs[0])
	}
	if !errors.Is(errs[3], domain.ErrNotFound) {
		t.Fatalf("expected not found for missing id, got %v", errs[3])
	}
}

func TestCSVImporter_RequiresNameColumn(t *testing.T) {
	_, err := NewCSVImporter(strings.NewReader("price,stock\n1,1\n"), &stubProductRepo{}, zerolog.Nop()).Run(context.Background())
	if err == nil {
		t.Fatalf("expected missing column error")
	}
}
