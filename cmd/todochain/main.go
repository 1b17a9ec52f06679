package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/todochain/internal/cli"
	"github.com/example/todochain/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "todochain",
		Short:   "todochain - task tracking with bounties escrowed on a ledger",
		Version: version.String(),
		Long: `todochain is a personal task tracker that puts money where your plans
are: a task can carry a bounty that is escrowed on a distributed ledger
and released back to you when the task is completed.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.TaskCmd())
	rootCmd.AddCommand(cli.WalletCmd())
	rootCmd.AddCommand(cli.ChatCmd())
	rootCmd.AddCommand(cli.RegisterCmd())
	rootCmd.AddCommand(cli.LoginCmd())
	rootCmd.AddCommand(cli.LogoutCmd())
	rootCmd.AddCommand(cli.WhoamiCmd())
	rootCmd.AddCommand(cli.DoctorCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
