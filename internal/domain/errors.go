package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateResource indicates a uniqueness rule rejected a create or rename.
	ErrDuplicateResource = errors.New("resource already exists")
	// ErrInsufficientStock indicates a requested quantity exceeds what is on hand.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrEmptyResult indicates a valid query matched nothing.
	ErrEmptyResult = errors.New("no results")
	// ErrAlreadyInCart indicates the product is already a line of the cart.
	ErrAlreadyInCart = errors.New("product already in cart")
	// ErrInvalidInput indicates a request failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrReferenced indicates a row is still referenced by a foreign key.
	ErrReferenced = errors.New("still referenced")
)
