// Package api holds the HTTP contract of the booking service: the types and
// server interface for the operations in openapi.yaml and a chi router that
// binds their parameters. It follows the layout oapi-codegen uses for chi
// servers and is kept in step with openapi.yaml by hand.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

const (
	BearerAuthScopes = "bearerAuth.Scopes"
)

// Defines values for InvoiceStatus.
const (
	CANCELLED     InvoiceStatus = "CANCELLED"
	PAID          InvoiceStatus = "PAID"
	PAYMENTFAILED InvoiceStatus = "PAYMENT_FAILED"
	PENDING       InvoiceStatus = "PENDING"
)

// Defines values for PaymentMethod.
const (
	BankTransfer PaymentMethod = "bank_transfer"
	Card         PaymentMethod = "card"
	Cash         PaymentMethod = "cash"
	EWallet      PaymentMethod = "e_wallet"
)

// Defines values for VoucherStatus.
const (
	Active   VoucherStatus = "active"
	Expired  VoucherStatus = "expired"
	Inactive VoucherStatus = "inactive"
)

// Defines values for VoucherRejectionCode.
const (
	VoucherRejectionCodeExpired    VoucherRejectionCode = "expired"
	VoucherRejectionCodeIneligible VoucherRejectionCode = "ineligible"
	VoucherRejectionCodeNotFound   VoucherRejectionCode = "not_found"
)

// Defines values for VoucherType.
const (
	FIXED      VoucherType = "FIXED"
	PERCENTAGE VoucherType = "PERCENTAGE"
)

// ApplyVoucherRequest defines model for ApplyVoucherRequest.
type ApplyVoucherRequest struct {
	Code string `json:"code"`
}

// CatalogService defines model for CatalogService.
type CatalogService struct {
	Name      string `json:"name"`
	ServiceId string `json:"service_id"`
	UnitPrice Money  `json:"unit_price"`
}

// ConfirmBookingRequest defines model for ConfirmBookingRequest.
type ConfirmBookingRequest struct {
	BookingId string `json:"booking_id"`
	DraftId   string `json:"draft_id"`
}

// CreateDraftRequest defines model for CreateDraftRequest.
type CreateDraftRequest struct {
	CourtId   string    `json:"court_id"`
	SlotEnd   time.Time `json:"slot_end"`
	SlotStart time.Time `json:"slot_start"`
}

// Draft defines model for Draft.
type Draft struct {
	CourtId          string            `json:"court_id"`
	CourtPrice       Money             `json:"court_price"`
	CreatedAt        time.Time         `json:"created_at"`
	ExpiresAt        time.Time         `json:"expires_at"`
	Id               string            `json:"id"`
	Quote            Quote             `json:"quote"`
	ServiceLines     []ServiceLine     `json:"service_lines"`
	SlotEnd          time.Time         `json:"slot_end"`
	SlotStart        time.Time         `json:"slot_start"`
	UserId           string            `json:"user_id"`
	VoucherCode      *string           `json:"voucher_code,omitempty"`
	VoucherRejection *VoucherRejection `json:"voucher_rejection,omitempty"`
}

// Error defines model for Error.
type Error struct {
	Error string `json:"error"`
}

// Invoice defines model for Invoice.
type Invoice struct {
	BookingId      string         `json:"booking_id"`
	CourtId        string         `json:"court_id"`
	CourtPrice     Money          `json:"court_price"`
	CreatedAt      time.Time      `json:"created_at"`
	DiscountAmount Money          `json:"discount_amount"`
	FinalAmount    Money          `json:"final_amount"`
	Id             string         `json:"id"`
	OriginalAmount Money          `json:"original_amount"`
	PaidAt         *time.Time     `json:"paid_at,omitempty"`
	PaymentMethod  *PaymentMethod `json:"payment_method,omitempty"`
	ServiceLines   []ServiceLine  `json:"service_lines"`
	SlotEnd        time.Time      `json:"slot_end"`
	SlotStart      time.Time      `json:"slot_start"`
	Status         InvoiceStatus  `json:"status"`
	UserId         string         `json:"user_id"`
	VoucherCode    *string        `json:"voucher_code,omitempty"`
}

// InvoiceStatus defines model for InvoiceStatus.
type InvoiceStatus string

// Money defines model for Money.
type Money = decimal.Decimal

// PaymentMethod defines model for PaymentMethod.
type PaymentMethod string

// PaymentRequest defines model for PaymentRequest.
type PaymentRequest struct {
	Method PaymentMethod `json:"method"`
}

// Quote defines model for Quote.
type Quote struct {
	DiscountAmount Money   `json:"discount_amount"`
	FinalAmount    Money   `json:"final_amount"`
	OriginalAmount Money   `json:"original_amount"`
	VoucherCode    *string `json:"voucher_code,omitempty"`
}

// QuoteRequest defines model for QuoteRequest.
type QuoteRequest struct {
	CourtPrice   Money               `json:"court_price"`
	ServiceLines *[]ServiceLineInput `json:"service_lines,omitempty"`
	VoucherCode  *string             `json:"voucher_code,omitempty"`
}

// QuoteResponse defines model for QuoteResponse.
type QuoteResponse struct {
	Quote            Quote             `json:"quote"`
	ServiceLines     []ServiceLine     `json:"service_lines"`
	VoucherRejection *VoucherRejection `json:"voucher_rejection,omitempty"`
}

// ServiceLine defines model for ServiceLine.
type ServiceLine struct {
	LineTotal Money  `json:"line_total"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	ServiceId string `json:"service_id"`
	UnitPrice Money  `json:"unit_price"`
}

// ServiceLineInput defines model for ServiceLineInput.
type ServiceLineInput struct {
	Quantity  int    `json:"quantity"`
	ServiceId string `json:"service_id"`
	UnitPrice *Money `json:"unit_price,omitempty"`
}

// SetServiceQuantityRequest defines model for SetServiceQuantityRequest.
type SetServiceQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// Voucher defines model for Voucher.
type Voucher struct {
	Code              string              `json:"code"`
	MaxDiscountAmount *Money              `json:"max_discount_amount,omitempty"`
	MinOrderAmount    Money               `json:"min_order_amount"`
	Status            VoucherStatus       `json:"status"`
	Type              VoucherType         `json:"type"`
	ValidFrom         *openapi_types.Date `json:"valid_from,omitempty"`
	ValidTo           *openapi_types.Date `json:"valid_to,omitempty"`
	Value             Money               `json:"value"`
}

// VoucherStatus defines model for Voucher.Status.
type VoucherStatus string

// VoucherPreview defines model for VoucherPreview.
type VoucherPreview struct {
	DiscountAmount Money             `json:"discount_amount"`
	Eligible       bool              `json:"eligible"`
	Rejection      *VoucherRejection `json:"rejection,omitempty"`
	Voucher        Voucher           `json:"voucher"`
}

// VoucherRejection defines model for VoucherRejection.
type VoucherRejection struct {
	Code      VoucherRejectionCode `json:"code"`
	Reason    string               `json:"reason"`
	Shortfall *Money               `json:"shortfall,omitempty"`
}

// VoucherRejectionCode defines model for VoucherRejection.Code.
type VoucherRejectionCode string

// VoucherType defines model for VoucherType.
type VoucherType string

// DraftId defines model for DraftId.
type DraftId = string

// InvoiceId defines model for InvoiceId.
type InvoiceId = string

// GetAdminInvoicesParams defines parameters for GetAdminInvoices.
type GetAdminInvoicesParams struct {
	Status *InvoiceStatus `form:"status,omitempty" json:"status,omitempty"`
	Limit  *int           `form:"limit,omitempty" json:"limit,omitempty"`
}

// GetVouchersParams defines parameters for GetVouchers.
type GetVouchersParams struct {
	Q        *string `form:"q,omitempty" json:"q,omitempty"`
	Subtotal *int64  `form:"subtotal,omitempty" json:"subtotal,omitempty"`
}

// PostBookingsJSONRequestBody defines body for PostBookings for application/json ContentType.
type PostBookingsJSONRequestBody = ConfirmBookingRequest

// PostDraftsJSONRequestBody defines body for PostDrafts for application/json ContentType.
type PostDraftsJSONRequestBody = CreateDraftRequest

// PutDraftsDraftIdServicesServiceIdJSONRequestBody defines body for PutDraftsDraftIdServicesServiceId for application/json ContentType.
type PutDraftsDraftIdServicesServiceIdJSONRequestBody = SetServiceQuantityRequest

// PutDraftsDraftIdVoucherJSONRequestBody defines body for PutDraftsDraftIdVoucher for application/json ContentType.
type PutDraftsDraftIdVoucherJSONRequestBody = ApplyVoucherRequest

// PostInvoicesInvoiceIdPaymentsJSONRequestBody defines body for PostInvoicesInvoiceIdPayments for application/json ContentType.
type PostInvoicesInvoiceIdPaymentsJSONRequestBody = PaymentRequest

// PostQuotesJSONRequestBody defines body for PostQuotes for application/json ContentType.
type PostQuotesJSONRequestBody = QuoteRequest

// ServerInterface represents all server handlers.
type ServerInterface interface {

	// (GET /admin/invoices)
	GetAdminInvoices(w http.ResponseWriter, r *http.Request, params GetAdminInvoicesParams)

	// (POST /bookings)
	PostBookings(w http.ResponseWriter, r *http.Request)

	// (POST /drafts)
	PostDrafts(w http.ResponseWriter, r *http.Request)

	// (GET /drafts/{draftId})
	GetDraftsDraftId(w http.ResponseWriter, r *http.Request, draftId DraftId)

	// (PUT /drafts/{draftId}/services/{serviceId})
	PutDraftsDraftIdServicesServiceId(w http.ResponseWriter, r *http.Request, draftId DraftId, serviceId string)

	// (DELETE /drafts/{draftId}/voucher)
	DeleteDraftsDraftIdVoucher(w http.ResponseWriter, r *http.Request, draftId DraftId)

	// (PUT /drafts/{draftId}/voucher)
	PutDraftsDraftIdVoucher(w http.ResponseWriter, r *http.Request, draftId DraftId)

	// (GET /health)
	GetHealth(w http.ResponseWriter, r *http.Request)

	// (GET /invoices/{invoiceId})
	GetInvoicesInvoiceId(w http.ResponseWriter, r *http.Request, invoiceId InvoiceId)

	// (POST /invoices/{invoiceId}/cancel)
	PostInvoicesInvoiceIdCancel(w http.ResponseWriter, r *http.Request, invoiceId InvoiceId)

	// (POST /invoices/{invoiceId}/payments)
	PostInvoicesInvoiceIdPayments(w http.ResponseWriter, r *http.Request, invoiceId InvoiceId)

	// (POST /quotes)
	PostQuotes(w http.ResponseWriter, r *http.Request)

	// (GET /services)
	GetServices(w http.ResponseWriter, r *http.Request)

	// (GET /vouchers)
	GetVouchers(w http.ResponseWriter, r *http.Request, params GetVouchersParams)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, secured bool, h http.HandlerFunc) {
	if secured {
		ctx := context.WithValue(r.Context(), BearerAuthScopes, []string{})
		r = r.WithContext(ctx)
	}

	handler := http.Handler(h)
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) bindPath(w http.ResponseWriter, r *http.Request, name string, dest *string) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}

// GetAdminInvoices operation middleware
func (siw *ServerInterfaceWrapper) GetAdminInvoices(w http.ResponseWriter, r *http.Request) {
	var err error

	// Parameter object where we will unmarshal all parameters from the context
	var params GetAdminInvoicesParams

	// ------------- Optional query parameter "status" -------------

	err = runtime.BindQueryParameter("form", true, false, "status", r.URL.Query(), &params.Status)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "status", Err: err})
		return
	}

	// ------------- Optional query parameter "limit" -------------

	err = runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}

	siw.serve(w, r, true, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetAdminInvoices(w, r, params)
	})
}

// PostBookings operation middleware
func (siw *ServerInterfaceWrapper) PostBookings(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, true, siw.Handler.PostBookings)
}

// PostDrafts operation middleware
func (siw *ServerInterfaceWrapper) PostDrafts(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, true, siw.Handler.PostDrafts)
}

// GetDraftsDraftId operation middleware
func (siw *ServerInterfaceWrapper) GetDraftsDraftId(w http.ResponseWriter, r *http.Request) {
	// ------------- Path parameter "draftId" -------------
	var draftId DraftId
	if !siw.bindPath(w, r, "draftId", &draftId) {
		return
	}

	siw.serve(w, r, true, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetDraftsDraftId(w, r, draftId)
	})
}

// PutDraftsDraftIdServicesServiceId operation middleware
func (siw *ServerInterfaceWrapper) PutDraftsDraftIdServicesServiceId(w http.ResponseWriter, r *http.Request) {
	// ------------- Path parameter "draftId" -------------
	var draftId DraftId
	if !siw.bindPath(w, r, "draftId", &draftId) {
		return
	}

	// ------------- Path parameter "serviceId" -------------
	var serviceId string
	if !siw.bindPath(w, r, "serviceId", &serviceId) {
		return
	}

	siw.serve(w, r, true, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.PutDraftsDraftIdServicesServiceId(w, r, draftId, serviceId)
	})
}

// DeleteDraftsDraftIdVoucher operation middleware
func (siw *ServerInterfaceWrapper) DeleteDraftsDraftIdVoucher(w http.ResponseWriter, r *http.Request) {
	// ------------- Path parameter "draftId" -------------
	var draftId DraftId
	if !siw.bindPath(w, r, "draftId", &draftId) {
		return
	}

	siw.serve(w, r, true, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.DeleteDraftsDraftIdVoucher(w, r, draftId)
	})
}

// PutDraftsDraftIdVoucher operation middleware
func (siw *ServerInterfaceWrapper) PutDraftsDraftIdVoucher(w http.ResponseWriter, r *http.Request) {
	// ------------- Path parameter "draftId" -------------
	var draftId DraftId
	if !siw.bindPath(w, r, "draftId", &draftId) {
		return
	}

	siw.serve(w, r, true, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.PutDraftsDraftIdVoucher(w, r, draftId)
	})
}

// GetHealth operation middleware
func (siw *ServerInterfaceWrapper) GetHealth(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, false, siw.Handler.GetHealth)
}

// GetInvoicesInvoiceId operation middleware
func (siw *ServerInterfaceWrapper) GetInvoicesInvoiceId(w http.ResponseWriter, r *http.Request) {
	// ------------- Path parameter "invoiceId" -------------
	var invoiceId InvoiceId
	if !siw.bindPath(w, r, "invoiceId", &invoiceId) {
		return
	}

	siw.serve(w, r, true, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetInvoicesInvoiceId(w, r, invoiceId)
	})
}

// PostInvoicesInvoiceIdCancel operation middleware
func (siw *ServerInterfaceWrapper) PostInvoicesInvoiceIdCancel(w http.ResponseWriter, r *http.Request) {
	// ------------- Path parameter "invoiceId" -------------
	var invoiceId InvoiceId
	if !siw.bindPath(w, r, "invoiceId", &invoiceId) {
		return
	}

	siw.serve(w, r, true, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.PostInvoicesInvoiceIdCancel(w, r, invoiceId)
	})
}

// PostInvoicesInvoiceIdPayments operation middleware
func (siw *ServerInterfaceWrapper) PostInvoicesInvoiceIdPayments(w http.ResponseWriter, r *http.Request) {
	// ------------- Path parameter "invoiceId" -------------
	var invoiceId InvoiceId
	if !siw.bindPath(w, r, "invoiceId", &invoiceId) {
		return
	}

	siw.serve(w, r, true, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.PostInvoicesInvoiceIdPayments(w, r, invoiceId)
	})
}

// PostQuotes operation middleware
func (siw *ServerInterfaceWrapper) PostQuotes(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, true, siw.Handler.PostQuotes)
}

// GetServices operation middleware
func (siw *ServerInterfaceWrapper) GetServices(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, true, siw.Handler.GetServices)
}

// GetVouchers operation middleware
func (siw *ServerInterfaceWrapper) GetVouchers(w http.ResponseWriter, r *http.Request) {
	var err error

	// Parameter object where we will unmarshal all parameters from the context
	var params GetVouchersParams

	// ------------- Optional query parameter "q" -------------

	err = runtime.BindQueryParameter("form", true, false, "q", r.URL.Query(), &params.Q)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "q", Err: err})
		return
	}

	// ------------- Optional query parameter "subtotal" -------------

	err = runtime.BindQueryParameter("form", true, false, "subtotal", r.URL.Query(), &params.Subtotal)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "subtotal", Err: err})
		return
	}

	siw.serve(w, r, true, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetVouchers(w, r, params)
	})
}

type UnescapedCookieParamError struct {
	ParamName string
	Err       error
}

func (e *UnescapedCookieParamError) Error() string {
	return fmt.Sprintf("error unescaping cookie parameter '%s'", e.ParamName)
}

func (e *UnescapedCookieParamError) Unwrap() error {
	return e.Err
}

type UnmarshalingParamError struct {
	ParamName string
	Err       error
}

func (e *UnmarshalingParamError) Error() string {
	return fmt.Sprintf("Error unmarshaling parameter %s as JSON: %s", e.ParamName, e.Err.Error())
}

func (e *UnmarshalingParamError) Unwrap() error {
	return e.Err
}

type RequiredParamError struct {
	ParamName string
}

func (e *RequiredParamError) Error() string {
	return fmt.Sprintf("Query argument %s is required, but not found", e.ParamName)
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// Handler creates http.Handler with routing matching OpenAPI spec.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerFromMux creates http.Handler with routing matching OpenAPI spec based on the provided mux.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseRouter: r,
	})
}

func HandlerFromMuxWithBaseURL(si ServerInterface, r chi.Router, baseURL string) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseURL:    baseURL,
		BaseRouter: r,
	})
}

// HandlerWithOptions creates http.Handler with additional options
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/admin/invoices", wrapper.GetAdminInvoices)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/bookings", wrapper.PostBookings)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/drafts", wrapper.PostDrafts)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/drafts/{draftId}", wrapper.GetDraftsDraftId)
	})
	r.Group(func(r chi.Router) {
		r.Put(options.BaseURL+"/drafts/{draftId}/services/{serviceId}", wrapper.PutDraftsDraftIdServicesServiceId)
	})
	r.Group(func(r chi.Router) {
		r.Delete(options.BaseURL+"/drafts/{draftId}/voucher", wrapper.DeleteDraftsDraftIdVoucher)
	})
	r.Group(func(r chi.Router) {
		r.Put(options.BaseURL+"/drafts/{draftId}/voucher", wrapper.PutDraftsDraftIdVoucher)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/health", wrapper.GetHealth)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/invoices/{invoiceId}", wrapper.GetInvoicesInvoiceId)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/invoices/{invoiceId}/cancel", wrapper.PostInvoicesInvoiceIdCancel)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/invoices/{invoiceId}/payments", wrapper.PostInvoicesInvoiceIdPayments)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/quotes", wrapper.PostQuotes)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/services", wrapper.GetServices)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/vouchers", wrapper.GetVouchers)
	})

	return r
}
