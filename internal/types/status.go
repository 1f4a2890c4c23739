package types

// BillStatus tracks the lifecycle of a bill from draft to payment.
// The value is persisted verbatim by the caller's storage layer, so any
// change here requires a migration on their side.
type BillStatus string

const (
	BillStatusDraft   BillStatus = "draft"
	BillStatusSent    BillStatus = "sent"
	BillStatusPaid    BillStatus = "paid"
	BillStatusOverdue BillStatus = "overdue"
)

func (s BillStatus) String() string {
	return string(s)
}

func (s BillStatus) Valid() bool {
	switch s {
	case BillStatusDraft, BillStatusSent, BillStatusPaid, BillStatusOverdue:
		return true
	}
	return false
}
