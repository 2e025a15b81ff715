package handler

import (
	"errors"
	"net/http"

	"shuttlesync/api"
	"shuttlesync/internal/domain/bookings"
)

// BookingsHandler serves booking confirmation and the invoice endpoints.
type BookingsHandler struct {
	bookings bookings.ServiceInterface
}

func NewBookingsHandler(bookingsService bookings.ServiceInterface) *BookingsHandler {
	return &BookingsHandler{bookings: bookingsService}
}

// PostBookings handles POST /bookings. booking_id is generated by the
// client; replaying it returns the invoice of the first confirmation.
func (h *BookingsHandler) PostBookings(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	var body api.PostBookingsJSONRequestBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.BookingId == "" {
		writeError(w, http.StatusBadRequest, "booking_id is required")
		return
	}
	if body.DraftId == "" {
		writeError(w, http.StatusBadRequest, "draft_id is required")
		return
	}

	inv, err := h.bookings.ConfirmBooking(r.Context(), sess, &bookings.ConfirmBookingRequest{
		BookingID: body.BookingId,
		DraftID:   body.DraftId,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAPIInvoice(inv))
}

func (h *BookingsHandler) GetInvoicesInvoiceId(w http.ResponseWriter, r *http.Request, invoiceId string) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	inv, err := h.bookings.GetInvoice(r.Context(), sess, invoiceId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAPIInvoice(inv))
}

// PostInvoicesInvoiceIdPayments answers 200 for both outcomes of a payment
// attempt; the invoice status says whether it went through.
func (h *BookingsHandler) PostInvoicesInvoiceIdPayments(w http.ResponseWriter, r *http.Request, invoiceId string) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	var body api.PostInvoicesInvoiceIdPaymentsJSONRequestBody
	if !decodeBody(w, r, &body) {
		return
	}

	inv, err := h.bookings.PayInvoice(r.Context(), sess, invoiceId, bookings.PaymentMethod(body.Method))
	if err != nil {
		if errors.Is(err, bookings.ErrInvoiceNotPayable) && inv != nil {
			writeError(w, http.StatusConflict, "Invoice is "+string(inv.Status)+" and cannot be paid")
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAPIInvoice(inv))
}

func (h *BookingsHandler) PostInvoicesInvoiceIdCancel(w http.ResponseWriter, r *http.Request, invoiceId string) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	inv, err := h.bookings.CancelBooking(r.Context(), sess, invoiceId)
	if err != nil {
		if errors.Is(err, bookings.ErrInvoiceNotCancellable) && inv != nil {
			writeError(w, http.StatusConflict, "Invoice is "+string(inv.Status)+" and cannot be cancelled")
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAPIInvoice(inv))
}

// GetAdminInvoices lists invoices for the admin portal, newest first.
func (h *BookingsHandler) GetAdminInvoices(w http.ResponseWriter, r *http.Request, params api.GetAdminInvoicesParams) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	var filter bookings.ListFilter
	if params.Status != nil {
		filter.Status = bookings.InvoiceStatus(*params.Status)
	}
	if params.Limit != nil {
		filter.Limit = *params.Limit
	}

	invoices, err := h.bookings.ListInvoices(r.Context(), sess, filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAPIInvoices(invoices))
}
