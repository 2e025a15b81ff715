package jobs

import (
	"context"
	"encoding/json"
	"time"

	"shuttlesync/internal/domain/bookings"
)

// CleanupRepository is the part of bookings.Repository the job needs.
type CleanupRepository interface {
	GetOldInvoices(ctx context.Context, olderThan time.Duration) ([]*bookings.Invoice, error)
	DeleteInvoices(ctx context.Context, invoiceIDs []string) error
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context, invoiceID string) error
}

// InvoiceCleanupJob deletes local snapshots of paid and cancelled invoices
// once they are past the retention window. The backend keeps the records.
type InvoiceCleanupJob struct {
	repo      CleanupRepository
	cache     CacheInvalidator
	olderThan time.Duration
}

func NewInvoiceCleanupJob(repo CleanupRepository, cache CacheInvalidator, olderThan time.Duration) *InvoiceCleanupJob {
	return &InvoiceCleanupJob{
		repo:      repo,
		cache:     cache,
		olderThan: olderThan,
	}
}

// Run implements cron.Job.
func (j *InvoiceCleanupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	j.cleanup(ctx)
}

func (j *InvoiceCleanupJob) cleanup(ctx context.Context) {
	startTime := time.Now()

	cleanupLogger.Info().
		Str("event", "cleanup_started").
		Dur("older_than", j.olderThan).
		Msg("Starting invoice cleanup")

	old, err := j.repo.GetOldInvoices(ctx, j.olderThan)
	if err != nil {
		cleanupLogger.Error().
			Str("event", "cleanup_error").
			Err(err).
			Msg("Failed to get old invoices")
		return
	}

	if len(old) == 0 {
		cleanupLogger.Info().
			Str("event", "cleanup_completed").
			Int("invoices_deleted", 0).
			Dur("duration_ms", time.Since(startTime)).
			Msg("No old invoices to delete")
		return
	}

	j.logInvoices(old)

	ids := make([]string, 0, len(old))
	for _, inv := range old {
		ids = append(ids, inv.ID)
	}

	if err := j.repo.DeleteInvoices(ctx, ids); err != nil {
		cleanupLogger.Error().
			Str("event", "cleanup_error").
			Err(err).
			Int("invoices_count", len(ids)).
			Msg("Failed to delete invoices")
		return
	}

	if j.cache != nil {
		for _, id := range ids {
			_ = j.cache.Invalidate(ctx, id)
		}
	}

	cleanupLogger.Info().
		Str("event", "cleanup_completed").
		Int("invoices_deleted", len(ids)).
		Dur("duration_ms", time.Since(startTime)).
		Msg("Invoice cleanup completed")
}

func (j *InvoiceCleanupJob) logInvoices(invoices []*bookings.Invoice) {
	for _, inv := range invoices {
		data, err := json.Marshal(inv)
		if err != nil {
			cleanupLogger.Warn().
				Str("event", "cleanup_log_error").
				Str("invoice_id", inv.ID).
				Err(err).
				Msg("Failed to marshal invoice for logging")
			continue
		}

		cleanupLogger.Info().
			Str("event", "invoice_deleted").
			Str("invoice_id", inv.ID).
			Str("user_id", inv.UserID).
			Str("status", string(inv.Status)).
			RawJSON("invoice_data", data).
			Msg("Deleting old invoice")
	}
}
