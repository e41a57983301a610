package factor

import "errors"

var (
	// ErrInvalidDomain is returned when a variable is declared with a
	// non-positive domain size.
	ErrInvalidDomain = errors.New("variable domain size must be positive")

	// ErrDuplicateID is returned when a variable id is reused with a
	// different domain size.
	ErrDuplicateID = errors.New("variable id already declared with a different domain size")

	// ErrShapeMismatch is returned when a factor table's length does not
	// equal the product of its scope's domain sizes.
	ErrShapeMismatch = errors.New("table length does not match scope shape")

	// ErrInvalidTable is returned when a factor table contains a negative
	// entry. Tables hold unnormalized likelihoods and never need to sum to
	// one, but they must stay non-negative.
	ErrInvalidTable = errors.New("factor table entries must be non-negative")
)
