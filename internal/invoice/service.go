package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound indicates the invoice does not exist.
	ErrNotFound = errors.New("invoice: not found")
	// ErrInvalidStatus indicates a lifecycle transition not allowed from the
	// current status.
	ErrInvalidStatus = errors.New("invoice: invalid status transition")
)

// RepositoryPort defines data access methods for invoices.
type RepositoryPort interface {
	CreateInvoice(ctx context.Context, inv Invoice) (*Invoice, error)
	UpdateInvoice(ctx context.Context, inv Invoice) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time, paidAmount decimal.Decimal) error
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	ListInvoices(ctx context.Context, filter ListFilter) ([]Invoice, error)
	MarkOverdueBefore(ctx context.Context, asOf time.Time) (int64, error)
	NextInvoiceNumber(ctx context.Context, issueDate time.Time) (string, error)
}

// CacheBumper invalidates derived report caches after invoice writes.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// ListFilter narrows invoice listings.
type ListFilter struct {
	Status       Status
	CustomerName string
	Limit        int
	Offset       int
}

// LineItemInput describes one line of a draft invoice.
type LineItemInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// DraftInvoiceInput groups fields required to create or re-price an invoice.
type DraftInvoiceInput struct {
	OrderID             string
	CustomerName        string
	CustomerEmail       string
	CustomerPhone       string
	ServiceName         string
	CityName            string
	Items               []LineItemInput
	TaxRatePercent      decimal.Decimal
	DiscountRatePercent decimal.Decimal
	IssueDate           time.Time
	PaymentTerm         PaymentTerm
}

// Validate ensures draft input meets minimum criteria before pricing.
func (in DraftInvoiceInput) Validate() error {
	if in.CustomerName == "" {
		return fmt.Errorf("%w: customer name required", ErrValidation)
	}
	if in.IssueDate.IsZero() {
		return fmt.Errorf("%w: issue date required", ErrValidation)
	}
	if _, err := TermDays(in.PaymentTerm); err != nil {
		return err
	}
	return nil
}

// Service handles invoice business logic.
type Service struct {
	repo   RepositoryPort
	cache  CacheBumper
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, cache CacheBumper) *Service {
	return &Service{repo: repo, cache: cache}
}

// WithLogger attaches a logger for cache bump failures.
func (s *Service) WithLogger(logger *slog.Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// CreateDraft prices the draft and persists it. Pricing failures abort
// before anything is written.
func (s *Service) CreateDraft(ctx context.Context, input DraftInvoiceInput) (*Invoice, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	inv, err := buildInvoice(input)
	if err != nil {
		return nil, err
	}

	number, err := s.repo.NextInvoiceNumber(ctx, input.IssueDate)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	inv.ID = uuid.New()
	inv.Number = number
	inv.Status = StatusDraft
	inv.CreatedAt = now
	inv.UpdatedAt = now

	created, err := s.repo.CreateInvoice(ctx, inv)
	if err != nil {
		return nil, err
	}
	s.bump(ctx)
	return created, nil
}

// UpdateDraft replaces the inputs of a draft invoice and fully re-prices it.
// Totals are never patched incrementally.
func (s *Service) UpdateDraft(ctx context.Context, id uuid.UUID, input DraftInvoiceInput) (*Invoice, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status != StatusDraft {
		return nil, ErrInvalidStatus
	}

	inv, err := buildInvoice(input)
	if err != nil {
		return nil, err
	}
	inv.ID = existing.ID
	inv.Number = existing.Number
	inv.Status = existing.Status
	inv.CreatedAt = existing.CreatedAt
	inv.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateInvoice(ctx, inv); err != nil {
		return nil, err
	}
	s.bump(ctx)
	return &inv, nil
}

// Send transitions a draft invoice to sent.
func (s *Service) Send(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, StatusSent, StatusDraft)
}

// Cancel voids an invoice that has not been paid.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, StatusCancelled, StatusDraft, StatusSent, StatusOverdue)
}

// MarkPaid records payment against a sent or overdue invoice. A zero paid
// amount defaults to the invoice total.
func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time, paidAmount decimal.Decimal) error {
	inv, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if inv.Status != StatusSent && inv.Status != StatusOverdue {
		return ErrInvalidStatus
	}
	if paidAt.IsZero() {
		paidAt = time.Now().UTC()
	}
	if paidAmount.IsZero() {
		paidAmount = inv.Totals.Total
	}
	if paidAmount.IsNegative() {
		return fmt.Errorf("%w: paid amount must not be negative", ErrValidation)
	}
	if err := s.repo.MarkPaid(ctx, id, paidAt, paidAmount); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// Get returns one invoice by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.get(ctx, id)
}

// List returns invoices matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Invoice, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.ListInvoices(ctx, filter)
}

// RefreshOverdue flips sent invoices past their due date to overdue and
// returns how many changed.
func (s *Service) RefreshOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	updated, err := s.repo.MarkOverdueBefore(ctx, asOf)
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		s.bump(ctx)
	}
	return updated, nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, target Status, allowed ...Status) error {
	inv, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	ok := false
	for _, status := range allowed {
		if inv.Status == status {
			ok = true
			break
		}
	}
	if !ok {
		return ErrInvalidStatus
	}
	if err := s.repo.UpdateStatus(ctx, id, target); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrNotFound
	}
	return inv, nil
}

func (s *Service) bump(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		logger := s.logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("bump report cache", slog.Any("error", err))
	}
}

func buildInvoice(input DraftInvoiceInput) (Invoice, error) {
	items := make([]LineItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	totals, err := PriceInvoice(items, input.TaxRatePercent, input.DiscountRatePercent)
	if err != nil {
		return Invoice{}, err
	}
	dueDate, err := ComputeDueDate(input.IssueDate, input.PaymentTerm)
	if err != nil {
		return Invoice{}, err
	}
	return Invoice{
		OrderID:             input.OrderID,
		CustomerName:        input.CustomerName,
		CustomerEmail:       input.CustomerEmail,
		CustomerPhone:       input.CustomerPhone,
		ServiceName:         input.ServiceName,
		CityName:            input.CityName,
		Items:               items,
		TaxRatePercent:      input.TaxRatePercent,
		DiscountRatePercent: input.DiscountRatePercent,
		Totals:              totals,
		IssueDate:           input.IssueDate,
		PaymentTerm:         input.PaymentTerm,
		DueDate:             dueDate,
	}, nil
}
