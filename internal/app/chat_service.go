package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/todochain/internal/models"
	"github.com/example/todochain/internal/ports/primary"
	"github.com/example/todochain/internal/ports/secondary"
)

const chatHelp = `I understand:
  add task: <title>        create a task
  complete <title>         mark a task done
  delete <title>           remove a task
  count                    how many open tasks
  summary                  what needs attention`

// ChatResolver turns free text into facade calls. It acts only on an
// unambiguous target: several matches produce a candidate list and no
// side effect.
type ChatResolver struct {
	tasks   secondary.TaskRepository
	service primary.TaskService
}

// NewChatResolver creates the resolver.
func NewChatResolver(tasks secondary.TaskRepository, service primary.TaskService) *ChatResolver {
	return &ChatResolver{tasks: tasks, service: service}
}

// Resolve interprets one line of input.
func (r *ChatResolver) Resolve(ctx context.Context, input string) (*primary.ChatReply, error) {
	text := strings.TrimSpace(input)
	lower := strings.ToLower(text)

	switch {
	case lower == "" || lower == "help":
		return &primary.ChatReply{Text: chatHelp}, nil

	case strings.HasPrefix(lower, "add task:"), strings.HasPrefix(lower, "create task:"):
		_, title, _ := strings.Cut(text, ":")
		return r.create(ctx, strings.TrimSpace(title))

	case strings.HasPrefix(lower, "complete "), strings.HasPrefix(lower, "finish "), strings.HasPrefix(lower, "done "):
		_, target, _ := strings.Cut(text, " ")
		return r.withTarget(ctx, target, r.complete)

	case strings.HasPrefix(lower, "delete "), strings.HasPrefix(lower, "remove "):
		_, target, _ := strings.Cut(text, " ")
		return r.withTarget(ctx, target, r.delete)

	case lower == "count", strings.Contains(lower, "how many"):
		return r.count(ctx)

	case lower == "summary", lower == "summarize", strings.Contains(lower, "attention"):
		return r.summary(ctx)

	default:
		return &primary.ChatReply{Text: "I did not catch that.\n" + chatHelp}, nil
	}
}

func (r *ChatResolver) create(ctx context.Context, title string) (*primary.ChatReply, error) {
	if title == "" {
		return &primary.ChatReply{Text: "A task needs a title, try: add task: water the plants"}, nil
	}
	result, err := r.service.CreateTask(ctx, primary.CreateTaskRequest{Title: title})
	if err != nil {
		return &primary.ChatReply{Text: err.Error()}, nil
	}
	reply := &primary.ChatReply{
		Text:      fmt.Sprintf("Created %s: %s", result.Task.ID, result.Task.Title),
		Performed: true,
	}
	if !result.Ok() {
		reply.Text += " (with sync issues, run 'todochain task show " + result.Task.ID + "')"
	}
	return reply, nil
}

// withTarget resolves a textual identifier to exactly one task and applies
// act to it. The identifier may be a TASK-### id or a title fragment.
func (r *ChatResolver) withTarget(ctx context.Context, target string, act func(context.Context, *secondary.TaskRecord) (*primary.ChatReply, error)) (*primary.ChatReply, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return &primary.ChatReply{Text: "Which task? Give me an id or part of the title."}, nil
	}

	if strings.HasPrefix(strings.ToUpper(target), "TASK-") {
		rec, err := r.tasks.GetByID(ctx, strings.ToUpper(target))
		if err != nil {
			return &primary.ChatReply{Text: fmt.Sprintf("I know no task %s.", strings.ToUpper(target))}, nil
		}
		return act(ctx, rec)
	}

	matches, err := r.tasks.FindByTitle(ctx, target)
	if err != nil {
		return nil, models.WrapFault(models.FaultValidation, "chat", err, "lookup failed")
	}
	switch len(matches) {
	case 0:
		return &primary.ChatReply{Text: fmt.Sprintf("No task matches %q.", target)}, nil
	case 1:
		return act(ctx, matches[0])
	default:
		candidates := make([]string, len(matches))
		for i, m := range matches {
			candidates[i] = fmt.Sprintf("%s %s", m.ID, m.Title)
		}
		return &primary.ChatReply{
			Text:       fmt.Sprintf("%d tasks match %q, which one did you mean?", len(matches), target),
			Candidates: candidates,
		}, nil
	}
}

func (r *ChatResolver) complete(ctx context.Context, rec *secondary.TaskRecord) (*primary.ChatReply, error) {
	result, err := r.service.SetCompleted(ctx, rec.ID, true)
	if err != nil {
		return &primary.ChatReply{Text: err.Error()}, nil
	}
	text := fmt.Sprintf("Completed %s: %s", rec.ID, rec.Title)
	if result.EscrowState == "claimed" {
		text += ", bounty claimed"
	}
	if !result.Ok() {
		text += " (with issues)"
	}
	return &primary.ChatReply{Text: text, Performed: true}, nil
}

func (r *ChatResolver) delete(ctx context.Context, rec *secondary.TaskRecord) (*primary.ChatReply, error) {
	result, err := r.service.DeleteTask(ctx, rec.ID)
	if err != nil {
		return &primary.ChatReply{Text: err.Error()}, nil
	}
	if !result.AppliedLocally {
		return &primary.ChatReply{
			Text: fmt.Sprintf("Could not delete %s, the remote copy refused; the task was kept.", rec.ID),
		}, nil
	}
	return &primary.ChatReply{Text: fmt.Sprintf("Deleted %s: %s", rec.ID, rec.Title), Performed: true}, nil
}

func (r *ChatResolver) count(ctx context.Context) (*primary.ChatReply, error) {
	open := false
	records, err := r.tasks.List(ctx, secondary.TaskFilters{Completed: &open})
	if err != nil {
		return nil, models.WrapFault(models.FaultValidation, "chat", err, "lookup failed")
	}
	switch len(records) {
	case 0:
		return &primary.ChatReply{Text: "Nothing open. Enjoy it."}, nil
	case 1:
		return &primary.ChatReply{Text: "One open task: " + records[0].Title}, nil
	default:
		return &primary.ChatReply{Text: fmt.Sprintf("%d open tasks.", len(records))}, nil
	}
}

func (r *ChatResolver) summary(ctx context.Context) (*primary.ChatReply, error) {
	open := false
	records, err := r.tasks.List(ctx, secondary.TaskFilters{Completed: &open})
	if err != nil {
		return nil, models.WrapFault(models.FaultValidation, "chat", err, "lookup failed")
	}
	if len(records) == 0 {
		return &primary.ChatReply{Text: "Nothing needs attention."}, nil
	}

	var b strings.Builder
	var urgent, pending int
	for _, rec := range records {
		if rec.Priority == models.PriorityHigh {
			urgent++
			fmt.Fprintf(&b, "  %s %s (high, due %s)\n", rec.ID, rec.Title, rec.Due)
		}
		if rec.SyncState == models.SyncStatePending {
			pending++
		}
	}

	head := fmt.Sprintf("%d open tasks, %d high priority.", len(records), urgent)
	if pending > 0 {
		head += fmt.Sprintf(" %d still waiting to sync.", pending)
	}
	text := head
	if b.Len() > 0 {
		text += "\n" + strings.TrimRight(b.String(), "\n")
	}
	return &primary.ChatReply{Text: text}, nil
}

var _ primary.ChatService = (*ChatResolver)(nil)
