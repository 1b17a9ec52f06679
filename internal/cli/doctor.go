package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/todochain/internal/db"
	"github.com/example/todochain/internal/wire"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the environment: database, session, API and wallet bridge",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ok := color.New(color.FgGreen).SprintFunc()("ok")
		warn := color.New(color.FgYellow).SprintFunc()

		cfg := wire.Config()
		fmt.Printf("config:   %s (api %s)\n", ok, cfg.APIBaseURL)

		dbPath, err := db.GetDBPath()
		if err != nil {
			fmt.Printf("database: %s\n", warn(err.Error()))
		} else {
			fmt.Printf("database: %s (%s)\n", ok, dbPath)
		}

		session, err := wire.SessionService().Current(ctx)
		switch {
		case err != nil:
			fmt.Printf("session:  %s\n", warn(err.Error()))
		case session == nil:
			fmt.Printf("session:  %s\n", warn("not logged in, run 'todochain login'"))
		default:
			fmt.Printf("session:  %s (%s)\n", ok, session.Email)
		}

		// A balance read exercises bridge, account and token contract in
		// one call.
		if balance, err := wire.WalletService().Balance(ctx); err != nil {
			fmt.Printf("bridge:   %s\n", warn(err.Error()))
		} else {
			fmt.Printf("bridge:   %s (balance %s USDT)\n", ok, balance)
		}

		return nil
	},
}

// DoctorCmd returns the doctor command.
func DoctorCmd() *cobra.Command {
	return doctorCmd
}
