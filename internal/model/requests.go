package model

import (
	"fmt"
	"strings"
	"time"
)

// FieldError pairs an input field with a human readable problem.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the structured validation failure returned by the
// ledger before anything touches storage.  It satisfies error so it can
// travel through normal return paths, and callers can type-assert it to
// render the individual field problems.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ErrOrNil returns nil when no field failed, otherwise the collected set.
func (v ValidationErrors) ErrOrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// CreateItemRequest carries the fields for a new item.  Quantity seeds
// both quantity_total and quantity_available.
type CreateItemRequest struct {
	ItemName       string  `json:"item_name"`
	Quantity       int     `json:"quantity"`
	Location       string  `json:"location"`
	Subteam        Subteam `json:"subteam"`
	PointOfContact uint64  `json:"point_of_contact"`
	PurchaseOrder  string  `json:"purchase_order"`
	Description    *string `json:"description,omitempty"`
}

// Normalize strips surrounding whitespace from the string fields, the
// same cleanup the write path always applied upstream.
func (r *CreateItemRequest) Normalize() {
	r.ItemName = strings.TrimSpace(r.ItemName)
	r.Location = strings.TrimSpace(r.Location)
	r.Subteam = Subteam(strings.TrimSpace(string(r.Subteam)))
	r.PurchaseOrder = strings.TrimSpace(r.PurchaseOrder)
}

// Validate checks every bound before the request is allowed near the
// store.  All problems are reported at once.
func (r *CreateItemRequest) Validate() error {
	r.Normalize()
	var errs ValidationErrors
	if r.ItemName == "" || len(r.ItemName) > 200 {
		errs = append(errs, FieldError{"item_name", "must be 1-200 characters"})
	}
	if r.Quantity <= 0 {
		errs = append(errs, FieldError{"quantity", "must be positive"})
	}
	if r.Location == "" || len(r.Location) > 100 {
		errs = append(errs, FieldError{"location", "must be 1-100 characters"})
	}
	if !ValidSubteam(r.Subteam) {
		errs = append(errs, FieldError{"subteam", "unknown subteam"})
	}
	if r.PointOfContact == 0 {
		errs = append(errs, FieldError{"point_of_contact", "required"})
	}
	if r.PurchaseOrder == "" || len(r.PurchaseOrder) > 500 {
		errs = append(errs, FieldError{"purchase_order", "must be 1-500 characters"})
	}
	if r.Description != nil && len(*r.Description) > 1000 {
		errs = append(errs, FieldError{"description", "must be at most 1000 characters"})
	}
	return errs.ErrOrNil()
}

// UpdateItemRequest is a sparse patch: nil means "leave untouched".
// QuantityAvailable is intentionally absent - availability only moves
// through checkout and return.
type UpdateItemRequest struct {
	ItemName       *string  `json:"item_name,omitempty"`
	QuantityTotal  *int     `json:"quantity_total,omitempty"`
	Location       *string  `json:"location,omitempty"`
	Subteam        *Subteam `json:"subteam,omitempty"`
	PointOfContact *uint64  `json:"point_of_contact,omitempty"`
	PurchaseOrder  *string  `json:"purchase_order,omitempty"`
	Description    *string  `json:"description,omitempty"`
}

// IsEmpty reports whether no field is set, which makes the update a
// plain read.
func (r *UpdateItemRequest) IsEmpty() bool {
	return r.ItemName == nil && r.QuantityTotal == nil && r.Location == nil &&
		r.Subteam == nil && r.PointOfContact == nil && r.PurchaseOrder == nil &&
		r.Description == nil
}

// Validate checks only the fields that are present.
func (r *UpdateItemRequest) Validate() error {
	var errs ValidationErrors
	if r.ItemName != nil {
		*r.ItemName = strings.TrimSpace(*r.ItemName)
		if *r.ItemName == "" || len(*r.ItemName) > 200 {
			errs = append(errs, FieldError{"item_name", "must be 1-200 characters"})
		}
	}
	if r.QuantityTotal != nil && *r.QuantityTotal < 0 {
		errs = append(errs, FieldError{"quantity_total", "must not be negative"})
	}
	if r.Location != nil {
		*r.Location = strings.TrimSpace(*r.Location)
		if *r.Location == "" || len(*r.Location) > 100 {
			errs = append(errs, FieldError{"location", "must be 1-100 characters"})
		}
	}
	if r.Subteam != nil {
		*r.Subteam = Subteam(strings.TrimSpace(string(*r.Subteam)))
		if !ValidSubteam(*r.Subteam) {
			errs = append(errs, FieldError{"subteam", "unknown subteam"})
		}
	}
	if r.PointOfContact != nil && *r.PointOfContact == 0 {
		errs = append(errs, FieldError{"point_of_contact", "must not be zero"})
	}
	if r.PurchaseOrder != nil {
		*r.PurchaseOrder = strings.TrimSpace(*r.PurchaseOrder)
		if *r.PurchaseOrder == "" || len(*r.PurchaseOrder) > 500 {
			errs = append(errs, FieldError{"purchase_order", "must be 1-500 characters"})
		}
	}
	if r.Description != nil && len(*r.Description) > 1000 {
		errs = append(errs, FieldError{"description", "must be at most 1000 characters"})
	}
	return errs.ErrOrNil()
}

// Changes lists the set fields as column=value pairs for the audit
// trail, in a fixed order so entries stay comparable.
func (r *UpdateItemRequest) Changes() []string {
	var out []string
	if r.ItemName != nil {
		out = append(out, fmt.Sprintf("item_name=%s", *r.ItemName))
	}
	if r.QuantityTotal != nil {
		out = append(out, fmt.Sprintf("quantity_total=%d", *r.QuantityTotal))
	}
	if r.Location != nil {
		out = append(out, fmt.Sprintf("location=%s", *r.Location))
	}
	if r.Subteam != nil {
		out = append(out, fmt.Sprintf("subteam=%s", *r.Subteam))
	}
	if r.PointOfContact != nil {
		out = append(out, fmt.Sprintf("point_of_contact=%d", *r.PointOfContact))
	}
	if r.PurchaseOrder != nil {
		out = append(out, fmt.Sprintf("purchase_order=%s", *r.PurchaseOrder))
	}
	if r.Description != nil {
		out = append(out, fmt.Sprintf("description=%s", *r.Description))
	}
	return out
}

// CheckoutRequest asks for `Quantity` units of one item.
type CheckoutRequest struct {
	ItemID             uint64     `json:"item_id"`
	Quantity           int        `json:"quantity"`
	ExpectedReturnDate *time.Time `json:"expected_return_date,omitempty"`
	Notes              *string    `json:"notes,omitempty"`
}

// Validate enforces the checkout bounds.  The expected return date, when
// given, must be strictly in the future at validation time.
func (r *CheckoutRequest) Validate() error {
	var errs ValidationErrors
	if r.ItemID == 0 {
		errs = append(errs, FieldError{"item_id", "required"})
	}
	if r.Quantity <= 0 {
		errs = append(errs, FieldError{"quantity", "must be positive"})
	}
	if r.ExpectedReturnDate != nil && !r.ExpectedReturnDate.After(time.Now()) {
		errs = append(errs, FieldError{"expected_return_date", "must be in the future"})
	}
	if r.Notes != nil && len(*r.Notes) > 500 {
		errs = append(errs, FieldError{"notes", "must be at most 500 characters"})
	}
	return errs.ErrOrNil()
}
