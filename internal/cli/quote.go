package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"shuttlesync/internal/domain/discount"
	"shuttlesync/internal/domain/pricing"
	"shuttlesync/internal/domain/vouchers"
	"shuttlesync/internal/external"

	"github.com/spf13/cobra"
)

type quoteOutput struct {
	Lines     []pricing.ServiceLine `json:"service_lines"`
	Quote     quoteJSON             `json:"quote"`
	Rejection *rejectionJSON        `json:"voucher_rejection,omitempty"`
}

type quoteJSON struct {
	OriginalAmount string `json:"original_amount"`
	DiscountAmount string `json:"discount_amount"`
	FinalAmount    string `json:"final_amount"`
	VoucherCode    string `json:"voucher_code,omitempty"`
}

type rejectionJSON struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

func newQuoteCmd() *cobra.Command {
	var (
		file       string
		backendURL string
		timeout    time.Duration
		timezone   string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price an order described in a YAML file",
		Long: "Compute subtotal, discount and final amount for an order file. The voucher is " +
			"either spelled out in the file or, with --backend, looked up by code.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := time.LoadLocation(timezone)
			if err != nil {
				return fmt.Errorf("invalid timezone: %w", err)
			}
			order, err := loadOrderFile(file)
			if err != nil {
				return err
			}

			now := time.Now()
			if order.Date != nil {
				d := order.Date.Time
				now = time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, loc)
			}

			var (
				v   *discount.Voucher
				rej *discount.Rejection
			)
			if order.Voucher != nil {
				switch {
				case order.Voucher.hasTerms():
					v = order.Voucher.domain()
				case backendURL != "":
					svc := vouchers.NewService(external.NewClient(backendURL, timeout), nil, 0, loc)
					found, err := svc.Lookup(cmd.Context(), order.Voucher.Code)
					if r, ok := discount.AsRejection(err); ok {
						rej = r
					} else if err != nil {
						return fmt.Errorf("voucher lookup failed: %w", err)
					}
					v = found
				default:
					return fmt.Errorf("voucher %q has no terms in the file; pass --backend to look it up", order.Voucher.Code)
				}
			}

			lines := order.serviceLines()
			q, err := pricing.Quote(order.CourtPrice.Decimal, lines, v, now, loc)
			if r, ok := discount.AsRejection(err); ok {
				rej = r
			} else if err != nil {
				return err
			}

			if jsonOutput {
				out := quoteOutput{
					Lines: lines,
					Quote: quoteJSON{
						OriginalAmount: q.OriginalAmount.String(),
						DiscountAmount: q.DiscountAmount.String(),
						FinalAmount:    q.FinalAmount.String(),
						VoucherCode:    q.VoucherCode,
					},
				}
				if rej != nil {
					out.Rejection = &rejectionJSON{Code: rej.Slug(), Reason: rej.Reason}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			fmt.Fprint(cmd.OutOrStdout(), renderQuote(order.CourtPrice.Decimal, lines, q, rej))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "order file (YAML)")
	cmd.Flags().StringVar(&backendURL, "backend", "", "backend API URL for voucher lookup")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "backend request timeout")
	cmd.Flags().StringVar(&timezone, "timezone", defaultTimezone, "facility time zone for voucher dates")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output JSON")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
