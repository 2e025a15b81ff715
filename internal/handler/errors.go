package handler

import (
	"errors"
	"net/http"
	"os"

	"shuttlesync/internal/domain/bookings"
	"shuttlesync/internal/domain/catalog"
	"shuttlesync/internal/domain/discount"
	"shuttlesync/internal/domain/drafts"
	"shuttlesync/internal/domain/pricing"
	"shuttlesync/internal/domain/quotes"
	"shuttlesync/internal/domain/vouchers"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "handler").Logger()
}

var errorStatus = []struct {
	err    error
	status int
}{
	{drafts.ErrDraftNotFound, http.StatusNotFound},
	{drafts.ErrDraftExpired, http.StatusNotFound},
	{bookings.ErrNoSuchInvoice, http.StatusNotFound},
	{catalog.ErrServiceNotFound, http.StatusNotFound},

	{drafts.ErrForbidden, http.StatusForbidden},
	{bookings.ErrForbidden, http.StatusForbidden},

	{drafts.ErrInvalidSlot, http.StatusBadRequest},
	{pricing.ErrInvalidQuantity, http.StatusBadRequest},
	{bookings.ErrInvalidPaymentMethod, http.StatusBadRequest},
	{quotes.ErrInvalidRequest, http.StatusBadRequest},

	{drafts.ErrSlotUnavailable, http.StatusConflict},
	{bookings.ErrDraftAlreadyUsed, http.StatusConflict},
	{bookings.ErrInvoiceNotPayable, http.StatusConflict},
	{bookings.ErrInvoiceNotCancellable, http.StatusConflict},

	{drafts.ErrBackend, http.StatusServiceUnavailable},
	{bookings.ErrBackend, http.StatusServiceUnavailable},
	{catalog.ErrCatalogUnavailable, http.StatusServiceUnavailable},
	{vouchers.ErrVouchersUnavailable, http.StatusServiceUnavailable},
}

// writeServiceError maps a domain error to its HTTP answer. Voucher
// rejections get their own body; anything unknown is a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	if rej, ok := discount.AsRejection(err); ok {
		writeRejection(w, rej)
		return
	}
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			writeError(w, e.status, err.Error())
			return
		}
	}
	logger.Error().Err(err).Msg("unhandled service error")
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
