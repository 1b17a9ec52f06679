// Package cli contains the cobra commands. Commands stay thin: they parse
// flags, call a primary port through wire, and hand the outcome to the
// presentation adapter.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/todochain/internal/ports/primary"
	"github.com/example/todochain/internal/wire"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks and their bounties",
}

var taskAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Create a task, escrowing its bounty when one is given",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		priority, _ := cmd.Flags().GetString("priority")
		due, _ := cmd.Flags().GetString("due")
		bounty, _ := cmd.Flags().GetString("bounty")

		result, err := wire.TaskService().CreateTask(cmd.Context(), primary.CreateTaskRequest{
			Title:    args[0],
			Category: category,
			Priority: priority,
			Due:      due,
			Bounty:   bounty,
		})
		if err != nil {
			return err
		}
		wire.TaskAdapter().RenderResult("task created", result)
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		priority, _ := cmd.Flags().GetString("priority")
		open, _ := cmd.Flags().GetBool("open")
		done, _ := cmd.Flags().GetBool("done")

		filters := primary.TaskFilters{Category: category, Priority: priority}
		if open != done {
			completed := done
			filters.Completed = &completed
		}

		tasks, err := wire.TaskService().ListTasks(cmd.Context(), filters)
		if err != nil {
			return err
		}
		wire.TaskAdapter().RenderTaskList(tasks)
		return nil
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show one task in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := wire.TaskService().GetTask(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		wire.TaskAdapter().RenderTaskDetail(task)
		return nil
	},
}

var taskEditCmd = &cobra.Command{
	Use:   "edit [task-id]",
	Short: "Edit a task (title, category or priority changes restart its escrow)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		category, _ := cmd.Flags().GetString("category")
		priority, _ := cmd.Flags().GetString("priority")
		due, _ := cmd.Flags().GetString("due")
		bounty, _ := cmd.Flags().GetString("bounty")

		result, err := wire.TaskService().UpdateTask(cmd.Context(), primary.UpdateTaskRequest{
			TaskID:   args[0],
			Title:    title,
			Category: category,
			Priority: priority,
			Due:      due,
			Bounty:   bounty,
		})
		if err != nil {
			return err
		}
		wire.TaskAdapter().RenderResult("task updated", result)
		return nil
	},
}

var taskDoneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Complete a task and claim its bounty",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := wire.TaskService().SetCompleted(cmd.Context(), args[0], true)
		if err != nil {
			return err
		}
		wire.TaskAdapter().RenderResult("task completed", result)
		return nil
	},
}

var taskReopenCmd = &cobra.Command{
	Use:   "reopen [task-id]",
	Short: "Mark a completed task as open again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := wire.TaskService().SetCompleted(cmd.Context(), args[0], false)
		if err != nil {
			return err
		}
		wire.TaskAdapter().RenderResult("task reopened", result)
		return nil
	},
}

var taskRmCmd = &cobra.Command{
	Use:   "rm [task-id]",
	Short: "Delete a task (an open escrow stays on the ledger)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := wire.TaskService().DeleteTask(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		wire.TaskAdapter().RenderResult("task deleted", result)
		return nil
	},
}

var taskClaimCmd = &cobra.Command{
	Use:   "claim [task-id]",
	Short: "Retry the bounty claim for a completed task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := wire.TaskService().RetryClaim(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		wire.TaskAdapter().RenderResult("claim retried", result)
		return nil
	},
}

var taskVerifyCmd = &cobra.Command{
	Use:   "verify [task-id]",
	Short: "Probe the ledger for a task's escrow record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := wire.TaskService().VerifyEscrow(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		wire.TaskAdapter().RenderEscrowStatus(status)
		return nil
	},
}

func init() {
	taskAddCmd.Flags().String("category", "", "task category (default General)")
	taskAddCmd.Flags().String("priority", "", "priority: high, medium or low (default medium)")
	taskAddCmd.Flags().String("due", "", "due date, YYYY-MM-DD (default today)")
	taskAddCmd.Flags().String("bounty", "", "bounty in tokens, e.g. 10 or 2.50")

	taskListCmd.Flags().String("category", "", "filter by category")
	taskListCmd.Flags().String("priority", "", "filter by priority")
	taskListCmd.Flags().Bool("open", false, "only open tasks")
	taskListCmd.Flags().Bool("done", false, "only completed tasks")

	taskEditCmd.Flags().String("title", "", "new title")
	taskEditCmd.Flags().String("category", "", "new category")
	taskEditCmd.Flags().String("priority", "", "new priority")
	taskEditCmd.Flags().String("due", "", "new due date, YYYY-MM-DD")
	taskEditCmd.Flags().String("bounty", "", "new bounty in tokens")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskEditCmd)
	taskCmd.AddCommand(taskDoneCmd)
	taskCmd.AddCommand(taskReopenCmd)
	taskCmd.AddCommand(taskRmCmd)
	taskCmd.AddCommand(taskClaimCmd)
	taskCmd.AddCommand(taskVerifyCmd)
}

// TaskCmd returns the task command tree.
func TaskCmd() *cobra.Command {
	return taskCmd
}
