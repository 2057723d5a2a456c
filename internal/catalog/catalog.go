// Package catalog defines the product-lookup capability the cart and order
// services consume. The MongoDB product repository implements it in
// production; tests use an in-memory double.
package catalog

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

type ProductInfo struct {
	Name  string
	Price decimal.Decimal
}

type Catalog interface {
	// Exists reports whether productID references a known product.
	Exists(ctx context.Context, productID string) (bool, error)
	// Resolve returns the current name and price for productID, or
	// ErrProductNotFound.
	Resolve(ctx context.Context, productID string) (ProductInfo, error)
}
