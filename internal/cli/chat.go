package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/todochain/internal/wire"
)

var chatCmd = &cobra.Command{
	Use:   "chat [input...]",
	Short: "Talk to the tracker in plain language",
	Long: `Resolve a free-text command against your tasks. With arguments it
answers once; without, it starts an interactive loop (quit with 'exit').`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return chatOnce(cmd, strings.Join(args, " "))
		}
		return chatLoop(cmd)
	},
}

func chatOnce(cmd *cobra.Command, input string) error {
	reply, err := wire.ChatService().Resolve(cmd.Context(), input)
	if err != nil {
		return err
	}
	fmt.Println(reply.Text)
	for _, candidate := range reply.Candidates {
		fmt.Printf("  %s\n", candidate)
	}
	return nil
}

func chatLoop(cmd *cobra.Command) error {
	scanner := bufio.NewScanner(os.Stdin)
	color.Cyan("todochain chat, 'help' lists commands, 'exit' leaves")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			return nil
		}
		if err := chatOnce(cmd, line); err != nil {
			color.Red("%v", err)
		}
	}
}

// ChatCmd returns the chat command.
func ChatCmd() *cobra.Command {
	return chatCmd
}
