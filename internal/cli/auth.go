package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/todochain/internal/ports/primary"
	"github.com/example/todochain/internal/wire"
)

var registerCmd = &cobra.Command{
	Use:   "register [email]",
	Short: "Create an account and log in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		wallet, _ := cmd.Flags().GetString("wallet")

		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}

		session, err := wire.SessionService().Register(cmd.Context(), primary.RegisterRequest{
			Email:         args[0],
			Password:      password,
			DisplayName:   name,
			WalletAddress: wallet,
		})
		if err != nil {
			return err
		}
		color.Green("Registered and logged in as %s", session.Email)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Log in to the task API",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}

		session, err := wire.SessionService().Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		color.Green("Logged in as %s", session.Email)
		if session.WalletAddress != "" {
			fmt.Printf("wallet: %s\n", session.WalletAddress)
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the active session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.SessionService().Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the active session",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := wire.SessionService().Current(cmd.Context())
		if err != nil {
			return err
		}
		if session == nil {
			fmt.Println("Not logged in.")
			return nil
		}
		fmt.Printf("%s", session.Email)
		if session.DisplayName != "" {
			fmt.Printf(" (%s)", session.DisplayName)
		}
		fmt.Println()
		if session.WalletAddress != "" {
			fmt.Printf("wallet: %s\n", session.WalletAddress)
		}
		return nil
	},
}

// readPassword prompts and reads one line from stdin.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	registerCmd.Flags().String("name", "", "display name")
	registerCmd.Flags().String("wallet", "", "wallet address for bounty escrows")
}

// RegisterCmd returns the register command.
func RegisterCmd() *cobra.Command { return registerCmd }

// LoginCmd returns the login command.
func LoginCmd() *cobra.Command { return loginCmd }

// LogoutCmd returns the logout command.
func LogoutCmd() *cobra.Command { return logoutCmd }

// WhoamiCmd returns the whoami command.
func WhoamiCmd() *cobra.Command { return whoamiCmd }
