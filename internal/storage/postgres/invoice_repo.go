package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shuttlesync/internal/domain/bookings"
	"shuttlesync/internal/domain/pricing"

	"github.com/jackc/pgx/v5"
)

// InvoiceRepository implements bookings.Repository using PostgreSQL
type InvoiceRepository struct {
	db *DB
}

var _ bookings.Repository = (*InvoiceRepository)(nil)

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

const invoiceColumns = `
	id, booking_id, backend_booking_id, user_id, court_id,
	slot_start, slot_end, court_price, service_lines, voucher_code,
	original_amount, discount_amount, final_amount,
	status, payment_method, created_at, updated_at, paid_at`

func (r *InvoiceRepository) CreateInvoice(ctx context.Context, inv *bookings.Invoice) error {
	lines, err := json.Marshal(nonNilLines(inv.Lines))
	if err != nil {
		return fmt.Errorf("failed to marshal service lines: %w", err)
	}

	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10::text, ''), $11, $12, $13, $14, NULLIF($15::text, ''), $16, $17, $18)
	`
	_, err = r.db.Pool.Exec(ctx, query,
		inv.ID,
		inv.BookingID,
		inv.BackendBookingID,
		inv.UserID,
		inv.CourtID,
		inv.SlotStart,
		inv.SlotEnd,
		inv.CourtPrice,
		lines,
		inv.VoucherCode,
		inv.OriginalAmount,
		inv.DiscountAmount,
		inv.FinalAmount,
		string(inv.Status),
		string(inv.PaymentMethod),
		inv.CreatedAt,
		inv.UpdatedAt,
		inv.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepository) GetInvoiceByID(ctx context.Context, invoiceID string) (*bookings.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.db.Pool.QueryRow(ctx, query, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query invoice: %w", err)
	}
	return inv, nil
}

// GetInvoiceByBookingID looks up by the client booking id (idempotency key).
func (r *InvoiceRepository) GetInvoiceByBookingID(ctx context.Context, bookingID string) (*bookings.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE booking_id = $1`
	inv, err := scanInvoice(r.db.Pool.QueryRow(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query invoice by booking_id: %w", err)
	}
	return inv, nil
}

func (r *InvoiceRepository) UpdateInvoiceStatus(ctx context.Context, invoiceID string, status bookings.InvoiceStatus, method bookings.PaymentMethod, paidAt *time.Time) error {
	query := `
		UPDATE invoices
		SET status = $2,
			payment_method = COALESCE(NULLIF($3::text, ''), payment_method),
			paid_at = COALESCE($4, paid_at),
			updated_at = $5
		WHERE id = $1
	`
	tag, err := r.db.Pool.Exec(ctx, query, invoiceID, string(status), string(method), paidAt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invoice %s not found", invoiceID)
	}
	return nil
}

func (r *InvoiceRepository) ListInvoices(ctx context.Context, filter bookings.ListFilter) ([]*bookings.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE ($1::text = '' OR status = $1::text)
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Pool.Query(ctx, query, string(filter.Status), filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()
	return collectInvoices(rows)
}

// GetOldInvoices returns PAID and CANCELLED invoices untouched for longer
// than olderThan.
func (r *InvoiceRepository) GetOldInvoices(ctx context.Context, olderThan time.Duration) ([]*bookings.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE status IN ('PAID', 'CANCELLED') AND updated_at < $1
		ORDER BY updated_at
		LIMIT 1000
	`
	rows, err := r.db.Pool.Query(ctx, query, time.Now().Add(-olderThan))
	if err != nil {
		return nil, fmt.Errorf("failed to query old invoices: %w", err)
	}
	defer rows.Close()
	return collectInvoices(rows)
}

func (r *InvoiceRepository) DeleteInvoices(ctx context.Context, invoiceIDs []string) error {
	if len(invoiceIDs) == 0 {
		return nil
	}
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM invoices WHERE id = ANY($1)`, invoiceIDs); err != nil {
		return fmt.Errorf("failed to delete invoices: %w", err)
	}
	return nil
}

func collectInvoices(rows pgx.Rows) ([]*bookings.Invoice, error) {
	var out []*bookings.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanInvoice(row pgx.Row) (*bookings.Invoice, error) {
	var inv bookings.Invoice
	var lines []byte
	var voucherCode, method *string
	var status string

	err := row.Scan(
		&inv.ID,
		&inv.BookingID,
		&inv.BackendBookingID,
		&inv.UserID,
		&inv.CourtID,
		&inv.SlotStart,
		&inv.SlotEnd,
		&inv.CourtPrice,
		&lines,
		&voucherCode,
		&inv.OriginalAmount,
		&inv.DiscountAmount,
		&inv.FinalAmount,
		&status,
		&method,
		&inv.CreatedAt,
		&inv.UpdatedAt,
		&inv.PaidAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(lines, &inv.Lines); err != nil {
		return nil, fmt.Errorf("failed to unmarshal service lines: %w", err)
	}
	inv.Status = bookings.InvoiceStatus(status)
	if voucherCode != nil {
		inv.VoucherCode = *voucherCode
	}
	if method != nil {
		inv.PaymentMethod = bookings.PaymentMethod(*method)
	}
	return &inv, nil
}

func nonNilLines(lines []pricing.ServiceLine) []pricing.ServiceLine {
	if lines == nil {
		return []pricing.ServiceLine{}
	}
	return lines
}
