package bookings

import (
	"context"
	"time"
)

type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error

	// GetInvoiceByID returns nil, nil when there is no such invoice.
	GetInvoiceByID(ctx context.Context, invoiceID string) (*Invoice, error)

	GetInvoiceByBookingID(ctx context.Context, bookingID string) (*Invoice, error)

	UpdateInvoiceStatus(ctx context.Context, invoiceID string, status InvoiceStatus, method PaymentMethod, paidAt *time.Time) error

	ListInvoices(ctx context.Context, filter ListFilter) ([]*Invoice, error)

	// GetOldInvoices returns closed invoices last updated before the cutoff.
	GetOldInvoices(ctx context.Context, olderThan time.Duration) ([]*Invoice, error)

	DeleteInvoices(ctx context.Context, invoiceIDs []string) error
}
