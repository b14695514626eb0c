// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// ledger engine and handlers to distinguish between different failure
// scenarios without string matching.
package repository

import "errors"

var (
	// ErrNameExists is returned when a service account name is already
	// taken.
	ErrNameExists = errors.New("name already exists")

	// ErrQuantityConflict is returned when an item edit would push the
	// quantity columns out of their invariant, e.g. shrinking
	// quantity_total below the amount currently out on loan.
	ErrQuantityConflict = errors.New("quantity conflict with active checkouts")
)
