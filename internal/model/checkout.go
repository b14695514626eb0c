package model

import "time"

// Checkout records one outstanding loan of `Quantity` units of one item
// to one member.  A checkout is created atomically with the decrement of
// the parent item's availability and is mutated exactly once, on return.
// Rows are never deleted and never re-opened.
type Checkout struct {
	ID                 uint64     `json:"id"`
	ItemID             uint64     `json:"item_id"`
	GuildID            uint64     `json:"guild_id"`
	UserID             uint64     `json:"user_id"`
	Quantity           int        `json:"quantity"`
	CheckedOutAt       time.Time  `json:"checked_out_at"`
	ExpectedReturnDate *time.Time `json:"expected_return_date,omitempty"`
	ReturnedAt         *time.Time `json:"returned_at,omitempty"`
	Notes              *string    `json:"notes,omitempty"`
}

// IsActive reports whether the loan is still open.
func (c Checkout) IsActive() bool {
	return c.ReturnedAt == nil
}

// IsOverdue reports whether an active loan has passed its expected
// return date.  Returned or open-ended loans are never overdue.
func (c Checkout) IsOverdue() bool {
	if c.ExpectedReturnDate == nil || c.ReturnedAt != nil {
		return false
	}
	return time.Now().UTC().After(*c.ExpectedReturnDate)
}

// DaysCheckedOut returns the whole days the loan has been (or was) out.
func (c Checkout) DaysCheckedOut() int {
	end := time.Now().UTC()
	if c.ReturnedAt != nil {
		end = *c.ReturnedAt
	}
	return int(end.Sub(c.CheckedOutAt).Hours() / 24)
}
