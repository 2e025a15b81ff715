package handler

import (
	"shuttlesync/api"
	"shuttlesync/internal/domain/bookings"
	"shuttlesync/internal/domain/discount"
	"shuttlesync/internal/domain/drafts"
	"shuttlesync/internal/domain/pricing"
	"shuttlesync/internal/domain/vouchers"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toAPILines(lines []pricing.ServiceLine) []api.ServiceLine {
	out := make([]api.ServiceLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, api.ServiceLine{
			ServiceId: l.ServiceID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.Total(),
		})
	}
	return out
}

func toAPIQuote(q discount.Quote) api.Quote {
	return api.Quote{
		OriginalAmount: q.OriginalAmount,
		DiscountAmount: q.DiscountAmount,
		FinalAmount:    q.FinalAmount,
		VoucherCode:    optString(q.VoucherCode),
	}
}

func toAPIRejection(rej *discount.Rejection) *api.VoucherRejection {
	if rej == nil {
		return nil
	}
	out := &api.VoucherRejection{
		Code:   api.VoucherRejectionCode(rej.Slug()),
		Reason: rej.Reason,
	}
	if rej.Shortfall.IsPositive() {
		shortfall := rej.Shortfall
		out.Shortfall = &shortfall
	}
	return out
}

func toAPIDraft(v *drafts.View) api.Draft {
	d := v.Draft
	return api.Draft{
		Id:               d.ID,
		UserId:           d.UserID,
		CourtId:          d.CourtID,
		SlotStart:        d.SlotStart,
		SlotEnd:          d.SlotEnd,
		CourtPrice:       d.CourtPrice,
		ServiceLines:     toAPILines(d.Lines),
		VoucherCode:      optString(d.VoucherCode),
		Quote:            toAPIQuote(v.Quote),
		VoucherRejection: toAPIRejection(v.Rejection),
		CreatedAt:        d.CreatedAt,
		ExpiresAt:        d.ExpiresAt,
	}
}

func toAPIInvoice(inv *bookings.Invoice) api.Invoice {
	out := api.Invoice{
		Id:             inv.ID,
		BookingId:      inv.BookingID,
		UserId:         inv.UserID,
		CourtId:        inv.CourtID,
		SlotStart:      inv.SlotStart,
		SlotEnd:        inv.SlotEnd,
		CourtPrice:     inv.CourtPrice,
		ServiceLines:   toAPILines(inv.Lines),
		VoucherCode:    optString(inv.VoucherCode),
		OriginalAmount: inv.OriginalAmount,
		DiscountAmount: inv.DiscountAmount,
		FinalAmount:    inv.FinalAmount,
		Status:         api.InvoiceStatus(inv.Status),
		CreatedAt:      inv.CreatedAt,
		PaidAt:         inv.PaidAt,
	}
	if inv.PaymentMethod != "" {
		m := api.PaymentMethod(inv.PaymentMethod)
		out.PaymentMethod = &m
	}
	return out
}

func toAPIInvoices(invoices []*bookings.Invoice) []api.Invoice {
	out := make([]api.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toAPIInvoice(inv))
	}
	return out
}

func toAPIVoucher(v *discount.Voucher) api.Voucher {
	out := api.Voucher{
		Code:              v.Code,
		Type:              api.VoucherType(v.Type),
		Value:             v.Value,
		MinOrderAmount:    v.MinOrderAmount,
		MaxDiscountAmount: v.MaxDiscountAmount,
		Status:            api.VoucherStatus(v.Status),
	}
	if !v.ValidFrom.IsZero() {
		out.ValidFrom = &openapi_types.Date{Time: v.ValidFrom}
	}
	if !v.ValidTo.IsZero() {
		out.ValidTo = &openapi_types.Date{Time: v.ValidTo}
	}
	return out
}

func toAPIPreviews(previews []vouchers.Preview) []api.VoucherPreview {
	out := make([]api.VoucherPreview, 0, len(previews))
	for _, p := range previews {
		out = append(out, api.VoucherPreview{
			Voucher:        toAPIVoucher(p.Voucher),
			Eligible:       p.Eligible,
			DiscountAmount: p.Discount,
			Rejection:      toAPIRejection(p.Rejection),
		})
	}
	return out
}

func toAPICatalog(items []pricing.CatalogItem) []api.CatalogService {
	out := make([]api.CatalogService, 0, len(items))
	for _, item := range items {
		out = append(out, api.CatalogService{
			ServiceId: item.ServiceID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
		})
	}
	return out
}
