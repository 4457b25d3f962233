package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the candidate record returned by the catalog backend. SalePrice
// is the price in effect at lookup time; the cart copies it into the line so a
// later catalog change never retroactively moves an open sale.
type Product struct {
	ID        uuid.UUID
	SKU       string
	Barcode   string
	Name      string
	SalePrice decimal.Decimal
}

// Searcher looks up sale candidates by name, SKU, or barcode. Implementations
// must return a bounded list; the terminal never paginates mid-sale.
type Searcher interface {
	SearchProducts(ctx context.Context, query string, limit int) ([]Product, error)
}
