package handler

import (
	"net/http"

	"shuttlesync/api"
	"shuttlesync/internal/domain/catalog"
	"shuttlesync/internal/domain/quotes"
	"shuttlesync/internal/domain/vouchers"

	"github.com/shopspring/decimal"
)

// CatalogHandler serves the read-only pricing endpoints: the service
// catalog, voucher search and stateless quotes.
type CatalogHandler struct {
	catalog  catalog.ServiceInterface
	vouchers vouchers.ServiceInterface
	quotes   quotes.ServiceInterface
}

func NewCatalogHandler(catalogService catalog.ServiceInterface, vouchersService vouchers.ServiceInterface, quotesService quotes.ServiceInterface) *CatalogHandler {
	return &CatalogHandler{
		catalog:  catalogService,
		vouchers: vouchersService,
		quotes:   quotesService,
	}
}

func (h *CatalogHandler) GetServices(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAPICatalog(items))
}

// GetVouchers searches vouchers and previews each against subtotal, which
// defaults to zero.
func (h *CatalogHandler) GetVouchers(w http.ResponseWriter, r *http.Request, params api.GetVouchersParams) {
	var query string
	if params.Q != nil {
		query = *params.Q
	}
	subtotal := decimal.Zero
	if params.Subtotal != nil {
		if *params.Subtotal < 0 {
			writeError(w, http.StatusBadRequest, "subtotal must not be negative")
			return
		}
		subtotal = decimal.NewFromInt(*params.Subtotal)
	}

	previews, err := h.vouchers.Preview(r.Context(), query, subtotal)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAPIPreviews(previews))
}

// PostQuotes prices an order without storing it. A voucher that does not
// apply is reported next to the undiscounted quote, not as an error.
func (h *CatalogHandler) PostQuotes(w http.ResponseWriter, r *http.Request) {
	var body api.PostQuotesJSONRequestBody
	if !decodeBody(w, r, &body) {
		return
	}

	req := &quotes.Request{CourtPrice: body.CourtPrice}
	if body.VoucherCode != nil {
		req.VoucherCode = *body.VoucherCode
	}
	if body.ServiceLines != nil {
		for _, l := range *body.ServiceLines {
			req.Lines = append(req.Lines, quotes.LineInput{
				ServiceID: l.ServiceId,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
			})
		}
	}

	res, err := h.quotes.Quote(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.QuoteResponse{
		ServiceLines:     toAPILines(res.Lines),
		Quote:            toAPIQuote(res.Quote),
		VoucherRejection: toAPIRejection(res.Rejection),
	})
}
