package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/todochain/internal/wire"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Inspect and authorize the bounty wallet",
}

var walletBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the token balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		balance, err := wire.WalletService().Balance(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("balance: %s USDT\n", balance)
		return nil
	},
}

var walletAllowanceCmd = &cobra.Command{
	Use:   "allowance",
	Short: "Show the allowance granted to the escrow registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		allowance, err := wire.WalletService().Allowance(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("allowance: %s USDT\n", allowance)
		return nil
	},
}

var walletApproveCmd = &cobra.Command{
	Use:   "approve [amount]",
	Short: "Grant the escrow registry an allowance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := wire.WalletService().Approve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if result.Confirmed {
			color.Green("approved, allowance now %s USDT", result.Observed)
		} else {
			color.Yellow("approval submitted (%s) but not observed yet, check again shortly", result.TxRef)
		}
		return nil
	},
}

var walletVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Probe the ledger for every tracked escrow",
	RunE: func(cmd *cobra.Command, args []string) error {
		statuses, err := wire.WalletService().VerifyAll(cmd.Context())
		if err != nil {
			return err
		}
		if len(statuses) == 0 {
			fmt.Println("No escrows tracked.")
			return nil
		}
		adapter := wire.TaskAdapter()
		for _, status := range statuses {
			adapter.RenderEscrowStatus(status)
		}
		return nil
	},
}

func init() {
	walletCmd.AddCommand(walletBalanceCmd)
	walletCmd.AddCommand(walletAllowanceCmd)
	walletCmd.AddCommand(walletApproveCmd)
	walletCmd.AddCommand(walletVerifyCmd)
}

// WalletCmd returns the wallet command tree.
func WalletCmd() *cobra.Command {
	return walletCmd
}
