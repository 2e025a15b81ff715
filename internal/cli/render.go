package cli

import (
	"fmt"
	"strings"

	"shuttlesync/internal/domain/discount"
	"shuttlesync/internal/domain/pricing"
	"shuttlesync/internal/domain/vouchers"
	"shuttlesync/internal/format"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var (
	accent  = lipgloss.Color("#10B981") // court green
	dim     = lipgloss.Color("#6B7280")
	success = lipgloss.Color("#22C55E")
	danger  = lipgloss.Color("#EF4444")
	warning = lipgloss.Color("#F59E0B")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	dimStyle   = lipgloss.NewStyle().Foreground(dim)
	passStyle  = lipgloss.NewStyle().Foreground(success)
	failStyle  = lipgloss.NewStyle().Foreground(danger)
	warnStyle  = lipgloss.NewStyle().Foreground(warning)
	totalStyle = lipgloss.NewStyle().Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2)

	labelStyle  = lipgloss.NewStyle().Width(28)
	amountStyle = lipgloss.NewStyle().Width(16).Align(lipgloss.Right)
)

func row(label, amount string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), amountStyle.Render(amount))
}

// renderQuote draws the order as a receipt.
func renderQuote(courtPrice decimal.Decimal, lines []pricing.ServiceLine, q discount.Quote, rej *discount.Rejection) string {
	var rows []string
	rows = append(rows, titleStyle.Render("Quote"), "")
	rows = append(rows, row("Court", format.VND(courtPrice)))
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		label := fmt.Sprintf("%s x%d", l.Name, l.Quantity)
		rows = append(rows, row(label, format.VND(l.Total())))
	}
	rows = append(rows, dimStyle.Render(strings.Repeat("─", 44)))
	rows = append(rows, row("Subtotal", format.VND(q.OriginalAmount)))
	if q.VoucherCode != "" {
		rows = append(rows, passStyle.Render(row("Voucher "+q.VoucherCode, "-"+format.VND(q.DiscountAmount))))
	}
	rows = append(rows, totalStyle.Render(row("Total", format.VND(q.FinalAmount))))

	var b strings.Builder
	b.WriteString(boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	b.WriteString("\n")
	if rej != nil {
		b.WriteString(warnStyle.Render(fmt.Sprintf("  voucher %s not applied (%s): %s", rej.Code, rej.Slug(), rej.Reason)))
		b.WriteString("\n")
	}
	return b.String()
}

func describeVoucher(v *discount.Voucher) string {
	switch v.Type {
	case discount.TypePercentage:
		s := format.Percent(v.Value) + " off"
		if v.MaxDiscountAmount != nil {
			s += ", up to " + format.VND(*v.MaxDiscountAmount)
		}
		return s
	case discount.TypeFixed:
		return format.VND(v.Value) + " off"
	}
	return string(v.Type)
}

// renderPreviews lists search results, usable vouchers first.
func renderPreviews(subtotal decimal.Decimal, previews []vouchers.Preview) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Vouchers for an order of %s", format.VND(subtotal))))
	b.WriteString("\n\n")

	if len(previews) == 0 {
		b.WriteString(dimStyle.Render("  no vouchers found"))
		b.WriteString("\n")
		return b.String()
	}

	codeStyle := lipgloss.NewStyle().Width(14).Bold(true)
	termsStyle := lipgloss.NewStyle().Width(30)
	for _, p := range previews {
		mark := passStyle.Render("✓")
		outcome := passStyle.Render("-" + format.VND(p.Discount))
		if !p.Eligible {
			mark = failStyle.Render("✗")
			outcome = dimStyle.Render("not applicable")
			if p.Rejection != nil {
				outcome = dimStyle.Render(p.Rejection.Reason)
			}
		}
		b.WriteString(fmt.Sprintf("  %s %s %s %s\n",
			mark,
			codeStyle.Render(p.Voucher.Code),
			termsStyle.Render(describeVoucher(p.Voucher)),
			outcome,
		))
	}
	return b.String()
}
