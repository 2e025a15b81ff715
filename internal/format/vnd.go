// Package format renders amounts for people. Nothing in here is used for
// arithmetic.
package format

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Vietnamese)

// VND formats an amount the way the portals show it: dot-grouped whole dong
// followed by the currency sign, e.g. "1.000.000 ₫".
func VND(amount decimal.Decimal) string {
	return printer.Sprintf("%d ₫", amount.Round(0).IntPart())
}

// Percent renders a voucher percentage without trailing zeros, e.g. "12,5%".
func Percent(value decimal.Decimal) string {
	f, _ := value.Float64()
	if value.Equal(value.Truncate(0)) {
		return printer.Sprintf("%d%%", value.IntPart())
	}
	return printer.Sprintf("%.1f%%", f)
}
