package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"shuttlesync/internal/domain/discount"
	"shuttlesync/internal/domain/pricing"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// money reads a YAML scalar such as 120000 or "12.5" without going through
// float64.
type money struct {
	decimal.Decimal
}

func (m *money) UnmarshalYAML(value *yaml.Node) error {
	d, err := decimal.NewFromString(strings.TrimSpace(value.Value))
	if err != nil {
		return fmt.Errorf("line %d: invalid amount %q", value.Line, value.Value)
	}
	m.Decimal = d
	return nil
}

// date reads a YYYY-MM-DD calendar date.
type date struct {
	time.Time
}

func (d *date) UnmarshalYAML(value *yaml.Node) error {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(value.Value))
	if err != nil {
		return fmt.Errorf("line %d: invalid date %q, want YYYY-MM-DD", value.Line, value.Value)
	}
	d.Time = t
	return nil
}

type orderLine struct {
	ServiceID string `yaml:"service_id"`
	Name      string `yaml:"name"`
	Quantity  int    `yaml:"quantity"`
	UnitPrice money  `yaml:"unit_price"`
}

type orderVoucher struct {
	Code              string `yaml:"code"`
	Type              string `yaml:"type"`
	Value             money  `yaml:"value"`
	MinOrderAmount    money  `yaml:"min_order_amount"`
	MaxDiscountAmount *money `yaml:"max_discount_amount"`
	ValidFrom         *date  `yaml:"valid_from"`
	ValidTo           *date  `yaml:"valid_to"`
	Status            string `yaml:"status"`
}

// orderFile is the YAML description of an order for `courtctl quote`.
type orderFile struct {
	CourtPrice money         `yaml:"court_price"`
	Date       *date         `yaml:"date"`
	Lines      []orderLine   `yaml:"lines"`
	Voucher    *orderVoucher `yaml:"voucher"`
}

func loadOrderFile(path string) (*orderFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading order file: %w", err)
	}
	var f orderFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing order file: %w", err)
	}
	return &f, nil
}

func (f *orderFile) serviceLines() []pricing.ServiceLine {
	out := make([]pricing.ServiceLine, 0, len(f.Lines))
	for _, l := range f.Lines {
		name := l.Name
		if name == "" {
			name = l.ServiceID
		}
		out = append(out, pricing.ServiceLine{
			ServiceID: l.ServiceID,
			Name:      name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.Decimal,
		})
	}
	return out
}

// hasTerms reports whether the file spells out the voucher, as opposed to
// naming a code to be looked up.
func (v *orderVoucher) hasTerms() bool {
	return v.Type != ""
}

func (v *orderVoucher) domain() *discount.Voucher {
	out := &discount.Voucher{
		Code:           v.Code,
		Type:           discount.VoucherType(strings.ToUpper(v.Type)),
		Value:          v.Value.Decimal,
		MinOrderAmount: v.MinOrderAmount.Decimal,
		Status:         discount.VoucherStatus(strings.ToLower(v.Status)),
	}
	if out.Status == "" {
		out.Status = discount.StatusActive
	}
	if v.MaxDiscountAmount != nil {
		maxDiscount := v.MaxDiscountAmount.Decimal
		out.MaxDiscountAmount = &maxDiscount
	}
	if v.ValidFrom != nil {
		out.ValidFrom = v.ValidFrom.Time
	}
	if v.ValidTo != nil {
		out.ValidTo = v.ValidTo.Time
	}
	return out
}
