package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/spaceworks-id/spaceworks/internal/platform/db"
)

// ErrDuplicateNumber indicates an invoice number collision.
var ErrDuplicateNumber = errors.New("invoice: duplicate number")

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const invoiceColumns = `id, number, order_id, customer_name, customer_email, customer_phone,
service_name, city_name, tax_rate::text, discount_rate::text,
subtotal::text, discount_amount::text, tax_amount::text, total::text,
issue_date, payment_term, due_date, status, paid_at, paid_amount::text, created_at, updated_at`

// CreateInvoice persists the invoice and its line items in one transaction.
func (r *Repository) CreateInvoice(ctx context.Context, inv Invoice) (*Invoice, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO invoices
(id, number, order_id, customer_name, customer_email, customer_phone, service_name, city_name,
 tax_rate, discount_rate, subtotal, discount_amount, tax_amount, total,
 issue_date, payment_term, due_date, status, paid_amount, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`,
			inv.ID, inv.Number, inv.OrderID, inv.CustomerName, inv.CustomerEmail, inv.CustomerPhone,
			inv.ServiceName, inv.CityName,
			inv.TaxRatePercent.String(), inv.DiscountRatePercent.String(),
			inv.Totals.Subtotal.String(), inv.Totals.DiscountAmount.String(),
			inv.Totals.TaxAmount.String(), inv.Totals.Total.String(),
			inv.IssueDate, inv.PaymentTerm, inv.DueDate, inv.Status,
			inv.PaidAmount.String(), inv.CreatedAt, inv.UpdatedAt)
		if err != nil {
			return mapPgError(err)
		}
		return insertItems(ctx, tx, inv.ID, inv.Items)
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// UpdateInvoice rewrites the invoice row and replaces its line items.
func (r *Repository) UpdateInvoice(ctx context.Context, inv Invoice) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE invoices SET
order_id=$2, customer_name=$3, customer_email=$4, customer_phone=$5, service_name=$6, city_name=$7,
tax_rate=$8, discount_rate=$9, subtotal=$10, discount_amount=$11, tax_amount=$12, total=$13,
issue_date=$14, payment_term=$15, due_date=$16, updated_at=$17
WHERE id=$1`,
			inv.ID, inv.OrderID, inv.CustomerName, inv.CustomerEmail, inv.CustomerPhone,
			inv.ServiceName, inv.CityName,
			inv.TaxRatePercent.String(), inv.DiscountRatePercent.String(),
			inv.Totals.Subtotal.String(), inv.Totals.DiscountAmount.String(),
			inv.Totals.TaxAmount.String(), inv.Totals.Total.String(),
			inv.IssueDate, inv.PaymentTerm, inv.DueDate, inv.UpdatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id=$1`, inv.ID); err != nil {
			return err
		}
		return insertItems(ctx, tx, inv.ID, inv.Items)
	})
}

// UpdateStatus sets a new lifecycle status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE invoices SET status=$2, updated_at=now() WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkPaid transitions the invoice to paid with its payment details.
func (r *Repository) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time, paidAmount decimal.Decimal) error {
	tag, err := r.pool.Exec(ctx, `UPDATE invoices SET status=$2, paid_at=$3, paid_amount=$4, updated_at=now() WHERE id=$1`,
		id, StatusPaid, paidAt, paidAmount.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetInvoice loads one invoice with its line items, nil when absent.
func (r *Repository) GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id=$1`, id)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return inv, nil
}

// ListInvoices returns invoices matching the filter, newest first. Line
// items are loaded per invoice; listings stay small through pagination.
func (r *Repository) ListInvoices(ctx context.Context, filter ListFilter) ([]Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status=$%d", len(args))
	}
	if filter.CustomerName != "" {
		args = append(args, filter.CustomerName)
		query += fmt.Sprintf(" AND customer_name=$%d", len(args))
	}
	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY issue_date DESC, number DESC LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for idx := range invoices {
		items, err := r.listItems(ctx, invoices[idx].ID)
		if err != nil {
			return nil, err
		}
		invoices[idx].Items = items
	}
	return invoices, nil
}

// ListAll returns the full invoice collection for report aggregation.
func (r *Repository) ListAll(ctx context.Context) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices ORDER BY issue_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

// MarkOverdueBefore flips sent invoices whose due date passed to overdue.
func (r *Repository) MarkOverdueBefore(ctx context.Context, asOf time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE invoices SET status=$1, updated_at=now() WHERE status=$2 AND due_date < $3`,
		StatusOverdue, StatusSent, asOf)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// NextInvoiceNumber allocates the next number in the issue month sequence.
func (r *Repository) NextInvoiceNumber(ctx context.Context, issueDate time.Time) (string, error) {
	yearMonth := issueDate.Format("200601")
	var counter int64
	err := r.pool.QueryRow(ctx, `INSERT INTO invoice_counters (year_month, counter) VALUES ($1, 1)
ON CONFLICT (year_month) DO UPDATE SET counter = invoice_counters.counter + 1
RETURNING counter`, yearMonth).Scan(&counter)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%s-%04d", yearMonth, counter), nil
}

func (r *Repository) listItems(ctx context.Context, invoiceID uuid.UUID) ([]LineItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT description, quantity::text, unit_price::text
FROM invoice_items WHERE invoice_id=$1 ORDER BY position`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []LineItem
	for rows.Next() {
		var item LineItem
		var quantity, unitPrice string
		if err := rows.Scan(&item.Description, &quantity, &unitPrice); err != nil {
			return nil, err
		}
		if item.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, err
		}
		if item.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func insertItems(ctx context.Context, tx pgx.Tx, invoiceID uuid.UUID, items []LineItem) error {
	for position, item := range items {
		_, err := tx.Exec(ctx, `INSERT INTO invoice_items (invoice_id, position, description, quantity, unit_price)
VALUES ($1, $2, $3, $4, $5)`, invoiceID, position, item.Description, item.Quantity.String(), item.UnitPrice.String())
		if err != nil {
			return err
		}
	}
	return nil
}

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	var taxRate, discountRate, subtotal, discountAmount, taxAmount, total, paidAmount string
	err := row.Scan(&inv.ID, &inv.Number, &inv.OrderID, &inv.CustomerName, &inv.CustomerEmail, &inv.CustomerPhone,
		&inv.ServiceName, &inv.CityName, &taxRate, &discountRate,
		&subtotal, &discountAmount, &taxAmount, &total,
		&inv.IssueDate, &inv.PaymentTerm, &inv.DueDate, &inv.Status, &inv.PaidAt, &paidAmount,
		&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	fields := []struct {
		raw  string
		dest *decimal.Decimal
	}{
		{taxRate, &inv.TaxRatePercent},
		{discountRate, &inv.DiscountRatePercent},
		{subtotal, &inv.Totals.Subtotal},
		{discountAmount, &inv.Totals.DiscountAmount},
		{taxAmount, &inv.Totals.TaxAmount},
		{total, &inv.Totals.Total},
		{paidAmount, &inv.PaidAmount},
	}
	for _, field := range fields {
		value, err := decimal.NewFromString(field.raw)
		if err != nil {
			return nil, fmt.Errorf("invoice: scan amount: %w", err)
		}
		*field.dest = value
	}
	return &inv, nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateNumber
	}
	return err
}
