package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalid marks validation failures; callers match it with errors.Is.
var ErrInvalid = errors.New("invalid input")

// Status represents the lifecycle state of a trade listing.
type Status string

const (
	StatusOpen      Status = "open"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if st.Valid() {
		return st, true
	}
	return "", false
}

// Trade is a marketplace listing offering one item for another, optionally
// with cash on top. The owner is always the authenticated creator; a cash
// amount above zero requires fiscalization before the trade is visible.
type Trade struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	UserID        string    `bson:"user_id" json:"user_id"`
	Title         string    `bson:"title" json:"title"`
	Description   string    `bson:"description,omitempty" json:"description,omitempty"`
	Category      string    `bson:"category,omitempty" json:"category,omitempty"`
	ItemOffered   string    `bson:"item_offered,omitempty" json:"item_offered,omitempty"`
	ItemWanted    string    `bson:"item_wanted,omitempty" json:"item_wanted,omitempty"`
	CashAmount    float64   `bson:"cash_amount" json:"cash_amount"`
	FiscalReceipt string    `bson:"fiscal_receipt,omitempty" json:"fiscal_receipt,omitempty"`
	Status        Status    `bson:"status" json:"status"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`

	// Owner is attached on single-trade reads and never persisted.
	Owner *PublicProfile `bson:"-" json:"owner,omitempty"`
}

// Validate checks the schema constraints shared by create and update.
func (t *Trade) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if t.CashAmount < 0 {
		return fmt.Errorf("%w: cash_amount must not be negative", ErrInvalid)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: status must be one of open, completed, cancelled", ErrInvalid)
	}
	return nil
}
