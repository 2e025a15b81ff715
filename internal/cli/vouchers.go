package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"shuttlesync/internal/domain/vouchers"
	"shuttlesync/internal/external"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newVouchersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vouchers",
		Short: "Look up vouchers in the backend",
	}
	cmd.AddCommand(newVouchersSearchCmd())
	return cmd
}

type previewJSON struct {
	Code     string         `json:"code"`
	Type     string         `json:"type"`
	Value    string         `json:"value"`
	Eligible bool           `json:"eligible"`
	Discount string         `json:"discount_amount"`
	Rejected *rejectionJSON `json:"rejection,omitempty"`
}

func newVouchersSearchCmd() *cobra.Command {
	var (
		backendURL string
		timeout    time.Duration
		timezone   string
		subtotal   int64
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search vouchers and preview them against a subtotal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if subtotal < 0 {
				return fmt.Errorf("--subtotal must not be negative")
			}
			loc, err := time.LoadLocation(timezone)
			if err != nil {
				return fmt.Errorf("invalid timezone: %w", err)
			}
			query := ""
			if len(args) > 0 {
				query = args[0]
			}

			svc := vouchers.NewService(external.NewClient(backendURL, timeout), nil, 0, loc)
			previews, err := svc.Preview(cmd.Context(), query, decimal.NewFromInt(subtotal))
			if err != nil {
				return err
			}

			if jsonOutput {
				out := make([]previewJSON, 0, len(previews))
				for _, p := range previews {
					pj := previewJSON{
						Code:     p.Voucher.Code,
						Type:     string(p.Voucher.Type),
						Value:    p.Voucher.Value.String(),
						Eligible: p.Eligible,
						Discount: p.Discount.String(),
					}
					if p.Rejection != nil {
						pj.Rejected = &rejectionJSON{Code: p.Rejection.Slug(), Reason: p.Rejection.Reason}
					}
					out = append(out, pj)
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			fmt.Fprint(cmd.OutOrStdout(), renderPreviews(decimal.NewFromInt(subtotal), previews))
			return nil
		},
	}

	cmd.Flags().StringVar(&backendURL, "backend", "http://localhost:8081", "backend API URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "backend request timeout")
	cmd.Flags().StringVar(&timezone, "timezone", defaultTimezone, "facility time zone for voucher dates")
	cmd.Flags().Int64Var(&subtotal, "subtotal", 0, "order subtotal to preview against")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output JSON")
	return cmd
}
