package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status enumerates invoice lifecycle states.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// PaymentTerm is the code mapping to calendar days until the due date.
type PaymentTerm string

const (
	TermNet15 PaymentTerm = "NET15"
	TermNet30 PaymentTerm = "NET30"
	TermNet45 PaymentTerm = "NET45"
	TermNet60 PaymentTerm = "NET60"
)

// LineItem is one priced entry inside an invoice. Immutable once the
// invoice is priced; owned exclusively by its invoice.
type LineItem struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// Amount returns quantity * unit price.
func (li LineItem) Amount() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}

// Totals holds the computed financial outputs of an invoice.
// total = subtotal - discount + tax, all amounts non-negative Rupiah.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// Invoice is the aggregate root for a workspace-rental invoice.
type Invoice struct {
	ID      uuid.UUID
	Number  string
	OrderID string

	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	// Free-text grouping dimensions used by financial reports.
	ServiceName string
	CityName    string

	Items               []LineItem
	TaxRatePercent      decimal.Decimal
	DiscountRatePercent decimal.Decimal
	Totals              Totals

	IssueDate   time.Time
	PaymentTerm PaymentTerm
	DueDate     time.Time

	Status     Status
	PaidAt     *time.Time
	PaidAmount decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Outstanding reports whether the invoice still counts toward receivables.
func (inv Invoice) Outstanding() bool {
	return inv.Status != StatusPaid && inv.Status != StatusCancelled
}
