package service

import "errors"

var (
	// ErrEmptyCart is returned when checkout finds no cart, or a cart with
	// no lines, for the owner.
	ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

	// ErrConflict is returned when concurrent writers keep invalidating
	// the optimistic update past the retry budget.
	ErrConflict = errors.New("cart is contended, please retry")

	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrInvalidProductID = errors.New("product id must not be empty")
)

// maxRetries bounds the optimistic-concurrency loop of every cart mutation
// and of checkout.
const maxRetries = 3
