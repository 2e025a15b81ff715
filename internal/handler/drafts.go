package handler

import (
	"net/http"
	"strings"

	"shuttlesync/api"
	"shuttlesync/internal/domain/drafts"
)

// DraftsHandler serves the draft endpoints of the customer portal.
type DraftsHandler struct {
	drafts drafts.ServiceInterface
}

func NewDraftsHandler(draftsService drafts.ServiceInterface) *DraftsHandler {
	return &DraftsHandler{drafts: draftsService}
}

// PostDrafts handles POST /drafts. Asking again for the same slot returns
// the live draft instead of a new one.
func (h *DraftsHandler) PostDrafts(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	var body api.PostDraftsJSONRequestBody
	if !decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.CourtId) == "" {
		writeError(w, http.StatusBadRequest, "court_id is required")
		return
	}

	view, err := h.drafts.CreateDraft(r.Context(), sess, &drafts.CreateDraftRequest{
		CourtID:   body.CourtId,
		SlotStart: body.SlotStart,
		SlotEnd:   body.SlotEnd,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAPIDraft(view))
}

func (h *DraftsHandler) GetDraftsDraftId(w http.ResponseWriter, r *http.Request, draftId string) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	view, err := h.drafts.GetDraft(r.Context(), sess, draftId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAPIDraft(view))
}

// PutDraftsDraftIdServicesServiceId sets a line's quantity. Zero removes
// the line.
func (h *DraftsHandler) PutDraftsDraftIdServicesServiceId(w http.ResponseWriter, r *http.Request, draftId string, serviceId string) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	var body api.PutDraftsDraftIdServicesServiceIdJSONRequestBody
	if !decodeBody(w, r, &body) {
		return
	}

	view, err := h.drafts.SetServiceQuantity(r.Context(), sess, draftId, serviceId, body.Quantity)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAPIDraft(view))
}

func (h *DraftsHandler) PutDraftsDraftIdVoucher(w http.ResponseWriter, r *http.Request, draftId string) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	var body api.PutDraftsDraftIdVoucherJSONRequestBody
	if !decodeBody(w, r, &body) {
		return
	}

	view, err := h.drafts.ApplyVoucher(r.Context(), sess, draftId, body.Code)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAPIDraft(view))
}

func (h *DraftsHandler) DeleteDraftsDraftIdVoucher(w http.ResponseWriter, r *http.Request, draftId string) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	view, err := h.drafts.RemoveVoucher(r.Context(), sess, draftId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAPIDraft(view))
}
