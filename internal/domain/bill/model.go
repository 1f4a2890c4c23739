package bill

import (
	"time"

	ierr "github.com/fakturo/fakturo/internal/errors"
	"github.com/fakturo/fakturo/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// BillItem is a single line on a bill. Item order is significant: it is
// preserved in the rendered document.
type BillItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Note        string          `json:"note,omitempty"`
}

// Total returns quantity * unit price for this line.
func (i BillItem) Total() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// Bill represents the bill domain model. ID 0 means the bill has not been
// saved yet. PDFData and PDFCreatedAt are either both set or both unset;
// the generation pipeline returns them as a pair and the caller persists
// them as a unit.
type Bill struct {
	ID           uint64           `json:"id"`
	ClientID     uint64           `json:"client_id"`
	Date         time.Time        `json:"date"`
	DueDate      time.Time        `json:"due_date"`
	Items        []BillItem       `json:"items"`
	Reference    string           `json:"reference,omitempty"`
	IBAN         string           `json:"iban,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	Status       types.BillStatus `json:"status"`
	PDFData      []byte           `json:"-"`
	PDFCreatedAt *time.Time       `json:"pdf_created_at,omitempty"`
}

// Validate checks the fields the generation pipeline depends on.
func (b *Bill) Validate() error {
	if len(b.Items) == 0 {
		return ierr.NewError("bill has no items").
			WithHint("A bill needs at least one line item to be rendered").
			Mark(ierr.ErrValidation)
	}
	if b.Status != "" && !b.Status.Valid() {
		return ierr.NewError("invalid bill status").
			WithHintf("Status %q is not a known bill status", b.Status).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Total returns the sum of all line totals in insertion order.
func (b *Bill) Total() decimal.Decimal {
	return lo.Reduce(b.Items, func(sum decimal.Decimal, item BillItem, _ int) decimal.Decimal {
		return sum.Add(item.Total())
	}, decimal.Zero)
}
