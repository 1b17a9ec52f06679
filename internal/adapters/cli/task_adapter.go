// Package cli contains the presentation adapter: it turns facade views
// and leg outcomes into terminal output. Commands stay thin and delegate
// rendering here.
package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/todochain/internal/models"
	"github.com/example/todochain/internal/ports/primary"
)

// TaskAdapter renders task views and operation results.
type TaskAdapter struct {
	out io.Writer
}

// NewTaskAdapter creates a renderer writing to out.
func NewTaskAdapter(out io.Writer) *TaskAdapter {
	return &TaskAdapter{out: out}
}

var (
	greenText    = color.New(color.FgGreen).SprintFunc()
	hiGreenText  = color.New(color.FgHiGreen, color.Bold).SprintFunc()
	yellowText   = color.New(color.FgYellow).SprintFunc()
	redText      = color.New(color.FgRed).SprintFunc()
	faintText    = color.New(color.Faint).SprintFunc()
	boldText     = color.New(color.Bold).SprintFunc()
	priorityText = map[string]func(a ...interface{}) string{
		models.PriorityHigh:   color.New(color.FgRed).SprintFunc(),
		models.PriorityMedium: color.New(color.FgYellow).SprintFunc(),
		models.PriorityLow:    color.New(color.FgCyan).SprintFunc(),
	}
)

// escrowBadge maps an escrow state to a short colored badge.
func escrowBadge(state string) string {
	switch state {
	case "escrowed":
		return greenText("[escrowed]")
	case "claimed":
		return hiGreenText("[claimed]")
	case "authorized":
		return yellowText("[authorized]")
	case "authorization_required":
		return yellowText("[authorization required]")
	case "no_escrow", "":
		return ""
	default:
		return faintText("[" + state + "]")
	}
}

func syncBadge(state string) string {
	switch state {
	case "pending":
		return yellowText("[sync pending]")
	case "local_only":
		return faintText("[local only]")
	default:
		return ""
	}
}

func checkbox(completed bool) string {
	if completed {
		return greenText("[x]")
	}
	return "[ ]"
}

// RenderTask prints one task as a list row.
func (a *TaskAdapter) RenderTask(task *primary.Task) {
	p := task.Priority
	if colorize, ok := priorityText[p]; ok {
		p = colorize(p)
	}

	line := fmt.Sprintf("%s %s  %s", checkbox(task.Completed), boldText(task.ID), task.Title)
	if task.Bounty != "" && task.Bounty != "0.00" {
		line += "  " + greenText(task.Bounty+" USDT")
	}
	if badge := escrowBadge(task.EscrowState); badge != "" {
		line += " " + badge
	}
	if badge := syncBadge(task.SyncState); badge != "" {
		line += " " + badge
	}
	fmt.Fprintln(a.out, line)
	fmt.Fprintf(a.out, "    %s  %s  due %s\n", p, faintText(task.Category), task.Due)
}

// RenderTaskList prints tasks, or a hint when there are none.
func (a *TaskAdapter) RenderTaskList(tasks []*primary.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(a.out, "No tasks. Add one with: todochain task add \"title\"")
		return
	}
	for _, task := range tasks {
		a.RenderTask(task)
	}
}

// RenderTaskDetail prints the full view of a single task.
func (a *TaskAdapter) RenderTaskDetail(task *primary.Task) {
	fmt.Fprintf(a.out, "%s %s\n", boldText(task.ID), task.Title)
	if task.Description != "" {
		fmt.Fprintf(a.out, "  %s\n", task.Description)
	}
	fmt.Fprintf(a.out, "  category:  %s\n", task.Category)
	fmt.Fprintf(a.out, "  priority:  %s\n", task.Priority)
	fmt.Fprintf(a.out, "  due:       %s\n", task.Due)
	fmt.Fprintf(a.out, "  completed: %v\n", task.Completed)
	fmt.Fprintf(a.out, "  version:   %d\n", task.Version)
	if task.Bounty != "" && task.Bounty != "0.00" {
		fmt.Fprintf(a.out, "  bounty:    %s USDT %s\n", task.Bounty, escrowBadge(task.EscrowState))
	}
	if task.Fingerprint != "" {
		fmt.Fprintf(a.out, "  record:    %s\n", faintText(task.Fingerprint))
	}
	if badge := syncBadge(task.SyncState); badge != "" {
		fmt.Fprintf(a.out, "  sync:      %s\n", badge)
	}
	if task.LastFault != "" {
		fmt.Fprintf(a.out, "  last issue: %s\n", yellowText(task.LastFault))
	}
}

// RenderResult prints an operation outcome: the task row when available,
// then one line per fault so partial commits stay visible.
func (a *TaskAdapter) RenderResult(verb string, result *primary.TaskResult) {
	if result.Ok() {
		fmt.Fprintf(a.out, "%s %s\n", greenText("✓"), verb)
	} else {
		fmt.Fprintf(a.out, "%s %s (with issues)\n", yellowText("!"), verb)
	}
	if result.Task != nil {
		a.RenderTask(result.Task)
	}
	for _, fault := range result.Faults {
		a.RenderFault(fault)
	}
}

// RenderFault prints a single leg failure with a hint when one applies.
func (a *TaskAdapter) RenderFault(fault *models.Fault) {
	fmt.Fprintf(a.out, "  %s %s\n", redText("✗"), fault.Error())
	switch fault.Kind {
	case models.FaultLocalStorage:
		fmt.Fprintln(a.out, "    "+faintText("local database error, retry the command"))
	case models.FaultRemoteUnavailable:
		fmt.Fprintln(a.out, "    "+faintText("kept locally, will sync later"))
	case models.FaultLedgerUnavailable:
		fmt.Fprintln(a.out, "    "+faintText("start the wallet bridge and retry"))
	case models.FaultLedgerTimeout:
		fmt.Fprintln(a.out, "    "+faintText("the transaction may still confirm, verify before retrying"))
	}
}

// RenderEscrowStatus prints one verification probe result.
func (a *TaskAdapter) RenderEscrowStatus(status *primary.EscrowStatus) {
	if status.OnLedger == nil {
		fmt.Fprintf(a.out, "%s  no escrow record\n", boldText(status.TaskID))
		return
	}
	if !status.OnLedger.Exists {
		fmt.Fprintf(a.out, "%s  %s not found on ledger (local state %s)\n",
			boldText(status.TaskID), faintText(status.Fingerprint), status.LocalState)
		return
	}
	state := "open"
	if status.OnLedger.Completed {
		state = "completed"
	}
	fmt.Fprintf(a.out, "%s  %s on ledger: %s, %s USDT (local state %s)\n",
		boldText(status.TaskID), faintText(status.Fingerprint),
		state, status.OnLedger.Amount, status.LocalState)
}
