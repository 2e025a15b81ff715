// Package cli implements courtctl, the support-desk tool for pricing
// orders and checking vouchers outside the portals.
package cli

import "github.com/spf13/cobra"

var (
	version = "dev"
	commit  = "none"
)

const defaultTimezone = "Asia/Ho_Chi_Minh"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "courtctl",
		Short:         "Court booking support tool",
		Long:          "courtctl prices badminton court orders, previews vouchers and issues test session tokens.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newQuoteCmd())
	cmd.AddCommand(newVouchersCmd())
	cmd.AddCommand(newTokenCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}
