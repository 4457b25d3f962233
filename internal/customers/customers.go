package customers

import (
	"context"

	"github.com/google/uuid"
)

// WalkInID is the reserved synthetic identity used when no customer is linked.
var WalkInID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// Customer references a registered customer linked to a sale.
type Customer struct {
	ID    uuid.UUID
	Name  string
	TaxID *string
}

// WalkIn returns the synthetic walk-in customer.
func WalkIn() Customer {
	return Customer{ID: WalkInID, Name: "Consumidor Final"}
}

// IsWalkIn reports whether the customer is the reserved walk-in identity.
func (c Customer) IsWalkIn() bool {
	return c.ID == WalkInID
}

// Lookup finds customers by name or tax id, returning a bounded candidate list.
type Lookup interface {
	SearchCustomers(ctx context.Context, query string, limit int) ([]Customer, error)
}
