package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"shuttlesync/internal/domain/bookings"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

type mockCleanupRepository struct {
	getOldInvoicesFunc   func(ctx context.Context, olderThan time.Duration) ([]*bookings.Invoice, error)
	deleteInvoicesFunc   func(ctx context.Context, invoiceIDs []string) error
	getOldInvoicesCalled bool
	deleteInvoicesCalled bool
	getOldInvoicesParam  time.Duration
	deleteInvoicesParam  []string
}

func (m *mockCleanupRepository) GetOldInvoices(ctx context.Context, olderThan time.Duration) ([]*bookings.Invoice, error) {
	m.getOldInvoicesCalled = true
	m.getOldInvoicesParam = olderThan
	if m.getOldInvoicesFunc != nil {
		return m.getOldInvoicesFunc(ctx, olderThan)
	}
	return nil, nil
}

func (m *mockCleanupRepository) DeleteInvoices(ctx context.Context, invoiceIDs []string) error {
	m.deleteInvoicesCalled = true
	m.deleteInvoicesParam = invoiceIDs
	if m.deleteInvoicesFunc != nil {
		return m.deleteInvoicesFunc(ctx, invoiceIDs)
	}
	return nil
}

type mockInvalidator struct {
	invalidated []string
}

func (m *mockInvalidator) Invalidate(ctx context.Context, invoiceID string) error {
	m.invalidated = append(m.invalidated, invoiceID)
	return nil
}

func createTestInvoice(id, userID string, status bookings.InvoiceStatus, updatedAt time.Time) *bookings.Invoice {
	return &bookings.Invoice{
		ID:             id,
		BookingID:      "bk-" + id,
		UserID:         userID,
		CourtID:        "court-1",
		OriginalAmount: decimal.NewFromInt(260000),
		DiscountAmount: decimal.NewFromInt(50000),
		FinalAmount:    decimal.NewFromInt(210000),
		Status:         status,
		CreatedAt:      updatedAt,
		UpdatedAt:      updatedAt,
	}
}

func TestInvoiceCleanupJob_Cleanup_Success(t *testing.T) {
	old := time.Now().Add(-100 * 24 * time.Hour)
	mockRepo := &mockCleanupRepository{
		getOldInvoicesFunc: func(ctx context.Context, olderThan time.Duration) ([]*bookings.Invoice, error) {
			return []*bookings.Invoice{
				createTestInvoice("inv-1", "user-1", bookings.StatusPaid, old),
				createTestInvoice("inv-2", "user-2", bookings.StatusCancelled, old),
			}, nil
		},
	}
	cache := &mockInvalidator{}

	job := NewInvoiceCleanupJob(mockRepo, cache, 90*24*time.Hour)
	job.cleanup(context.Background())

	if !mockRepo.getOldInvoicesCalled {
		t.Fatal("GetOldInvoices was not called")
	}
	if mockRepo.getOldInvoicesParam != 90*24*time.Hour {
		t.Errorf("expected retention 90 days, got %v", mockRepo.getOldInvoicesParam)
	}
	if !mockRepo.deleteInvoicesCalled {
		t.Fatal("DeleteInvoices was not called")
	}
	if len(mockRepo.deleteInvoicesParam) != 2 || mockRepo.deleteInvoicesParam[0] != "inv-1" || mockRepo.deleteInvoicesParam[1] != "inv-2" {
		t.Errorf("unexpected ids %v", mockRepo.deleteInvoicesParam)
	}
	if len(cache.invalidated) != 2 {
		t.Errorf("expected 2 cache invalidations, got %d", len(cache.invalidated))
	}
}

func TestInvoiceCleanupJob_Cleanup_NoInvoices(t *testing.T) {
	mockRepo := &mockCleanupRepository{}

	job := NewInvoiceCleanupJob(mockRepo, nil, time.Hour)
	job.cleanup(context.Background())

	if !mockRepo.getOldInvoicesCalled {
		t.Fatal("GetOldInvoices was not called")
	}
	if mockRepo.deleteInvoicesCalled {
		t.Error("DeleteInvoices should not be called when nothing is old")
	}
}

func TestInvoiceCleanupJob_Cleanup_GetError(t *testing.T) {
	mockRepo := &mockCleanupRepository{
		getOldInvoicesFunc: func(ctx context.Context, olderThan time.Duration) ([]*bookings.Invoice, error) {
			return nil, errors.New("database error")
		},
	}

	job := NewInvoiceCleanupJob(mockRepo, nil, time.Hour)
	job.cleanup(context.Background())

	if mockRepo.deleteInvoicesCalled {
		t.Error("DeleteInvoices should not be called after a query error")
	}
}

func TestInvoiceCleanupJob_Cleanup_DeleteError(t *testing.T) {
	mockRepo := &mockCleanupRepository{
		getOldInvoicesFunc: func(ctx context.Context, olderThan time.Duration) ([]*bookings.Invoice, error) {
			return []*bookings.Invoice{createTestInvoice("inv-1", "user-1", bookings.StatusPaid, time.Now())}, nil
		},
		deleteInvoicesFunc: func(ctx context.Context, invoiceIDs []string) error {
			return errors.New("delete failed")
		},
	}
	cache := &mockInvalidator{}

	job := NewInvoiceCleanupJob(mockRepo, cache, time.Hour)
	job.cleanup(context.Background())

	if len(cache.invalidated) != 0 {
		t.Error("cache must not be invalidated when delete fails")
	}
}

type countingJob struct {
	runs atomic.Int32
}

func (c *countingJob) Run() {
	c.runs.Add(1)
}

func TestScheduler_RunsJob(t *testing.T) {
	s := NewScheduler()
	job := &countingJob{}
	if err := s.Add("@every 1s", job); err != nil {
		t.Fatalf("Add: %v", err)
	}
	s.Start()

	deadline := time.Now().Add(3 * time.Second)
	for job.runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)

	if job.runs.Load() == 0 {
		t.Error("job never ran")
	}
}

func TestScheduler_BadSpec(t *testing.T) {
	s := NewScheduler()
	if err := s.Add("every now and then", cron.FuncJob(func() {})); err == nil {
		t.Error("expected error for invalid schedule")
	}
}

func TestScheduler_RunsJobAtStart(t *testing.T) {
	s := NewScheduler()
	job := &countingJob{}
	if err := s.AddAndRunAtStart("@every 1h", job); err != nil {
		t.Fatalf("AddAndRunAtStart: %v", err)
	}
	s.Start()

	deadline := time.Now().Add(time.Second)
	for job.runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)

	if got := job.runs.Load(); got != 1 {
		t.Errorf("expected 1 run at start, got %d", got)
	}
}

func TestScheduler_StartupRunRecoversPanic(t *testing.T) {
	s := NewScheduler()
	done := make(chan struct{})
	job := cron.FuncJob(func() {
		defer close(done)
		panic("boom")
	})
	if err := s.AddAndRunAtStart("@every 1h", job); err != nil {
		t.Fatalf("AddAndRunAtStart: %v", err)
	}
	s.Start()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("startup run never happened")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestScheduler_StartupRunSkipsOverlappingTick(t *testing.T) {
	s := NewScheduler()
	var runs atomic.Int32
	release := make(chan struct{})
	job := cron.FuncJob(func() {
		runs.Add(1)
		<-release
	})
	if err := s.AddAndRunAtStart("@every 1s", job); err != nil {
		t.Fatalf("AddAndRunAtStart: %v", err)
	}
	s.Start()

	// at least one tick fires while the startup run is still blocked
	time.Sleep(2200 * time.Millisecond)
	got := runs.Load()
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.Stop(ctx)

	if got != 1 {
		t.Errorf("expected ticks to be skipped while running, got %d runs", got)
	}
}
