// Package app implements the primary ports: the reconciliation
// coordinator behind the task facade, plus the session, wallet and chat
// services. Services hold no business rules of their own; guards and the
// rollback policy live in internal/core and stay pure.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/example/todochain/internal/core/escrow"
	"github.com/example/todochain/internal/core/fingerprint"
	"github.com/example/todochain/internal/core/money"
	"github.com/example/todochain/internal/core/reconcile"
	"github.com/example/todochain/internal/core/task"
	"github.com/example/todochain/internal/models"
	"github.com/example/todochain/internal/ports/primary"
	"github.com/example/todochain/internal/ports/secondary"
)

// TaskService coordinates the three legs of every task operation: the
// optimistic local store, the remote task API and the ledger. Leg failures
// are folded into the returned TaskResult; only validation failures come
// back as errors.
type TaskService struct {
	tasks    secondary.TaskRepository
	escrows  secondary.EscrowStateRepository
	remote   secondary.RemoteTaskStore
	ledger   secondary.Ledger
	describe secondary.DescriptionProvider
	runner   *EscrowRunner
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTaskService creates the coordinator.
func NewTaskService(
	tasks secondary.TaskRepository,
	escrows secondary.EscrowStateRepository,
	remote secondary.RemoteTaskStore,
	ledger secondary.Ledger,
	describe secondary.DescriptionProvider,
	runner *EscrowRunner,
) *TaskService {
	return &TaskService{
		tasks:    tasks,
		escrows:  escrows,
		remote:   remote,
		ledger:   ledger,
		describe: describe,
		runner:   runner,
		now:      time.Now,
		locks:    map[string]*sync.Mutex{},
	}
}

// lockTask serializes operations per task id so concurrent legs for the
// same task cannot interleave.
func (s *TaskService) lockTask(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// CreateTask creates a task, escrowing its bounty when positive.
func (s *TaskService) CreateTask(ctx context.Context, req primary.CreateTaskRequest) (*primary.TaskResult, error) {
	if req.Category == "" {
		req.Category = models.DefaultCategory
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if req.Due == "" {
		req.Due = s.now().Format("2006-01-02")
	}

	if guard := task.CanCreateTask(task.CreateTaskContext{
		Title:    req.Title,
		Priority: req.Priority,
		Due:      req.Due,
	}); !guard.Allowed {
		return nil, models.NewFault(models.FaultValidation, "create", "%s", guard.Reason)
	}

	bounty, err := money.Parse(req.Bounty)
	if err != nil {
		return nil, models.WrapFault(models.FaultValidation, "create", err, "invalid bounty")
	}

	id, err := s.tasks.GetNextID(ctx)
	if err != nil {
		return nil, models.WrapFault(models.FaultLocalStorage, "create", err, "failed to allocate task id")
	}
	unlock := s.lockTask(id)
	defer unlock()

	rec := &secondary.TaskRecord{
		ID:          id,
		Title:       req.Title,
		Description: s.describe.Describe(ctx, req.Title, req.Category, req.Priority),
		Category:    req.Category,
		Priority:    req.Priority,
		Due:         req.Due,
		BountyBase:  bounty.Base(),
		Version:     1,
		SyncState:   models.SyncStateLocalOnly,
	}
	if err := s.tasks.Create(ctx, rec); err != nil {
		return nil, models.WrapFault(models.FaultLocalStorage, "create", err, "failed to store task")
	}

	var faults []*models.Fault
	legs := reconcile.Legs{AppliedLocally: true, LedgerState: escrow.StateNone}

	// Ledger leg. A failure here never blocks the remote leg.
	if bounty.IsPositive() {
		fp := s.deriveFingerprint(rec)
		rec.Fingerprint = fp

		if _, err := s.runner.Begin(ctx, id, rec.Version, fp, bounty); err != nil {
			faults = append(faults, asFault(err, "escrow begin"))
		} else {
			state, fault := s.runner.Advance(ctx, fp)
			legs.LedgerState = state
			if fault != nil {
				legs.LedgerFault = fault.Kind
				faults = append(faults, fault)
			}
		}
	}

	// Remote leg.
	remoteFault := s.pushRemoteCreate(ctx, rec)
	if remoteFault != nil {
		faults = append(faults, remoteFault)
	}
	legs.CommittedRemote = remoteFault == nil

	decision := reconcile.Decide(reconcile.OpCreate, legs)
	if decision.ResetBounty {
		rec.BountyBase = 0
		rec.Fingerprint = ""
	}
	rec.SyncState = decision.SyncState
	rec.LastFault = firstFaultMessage(faults)
	if err := s.tasks.Update(ctx, rec); err != nil {
		faults = append(faults, models.WrapFault(models.FaultLocalStorage, "create", err, "failed to finalize task"))
	}

	return s.result(ctx, rec, legs, faults), nil
}

// UpdateTask edits a task. Substantive edits mint a new fingerprint and
// restart the escrow lifecycle; the superseded record stays on the ledger
// under its old key. A bounty-only edit keeps the fingerprint and version
// and re-enters the allowance comparison; once the bounty is escrowed the
// amount is locked and the edit is rejected. Any other edit resumes a
// lifecycle stalled by an earlier transient ledger fault.
func (s *TaskService) UpdateTask(ctx context.Context, req primary.UpdateTaskRequest) (*primary.TaskResult, error) {
	unlock := s.lockTask(req.TaskID)
	defer unlock()

	rec, err := s.tasks.GetByID(ctx, req.TaskID)
	exists := err == nil

	if guard := task.CanUpdateTask(task.UpdateTaskContext{
		TaskExists: exists,
		TaskID:     req.TaskID,
		Title:      req.Title,
		Priority:   req.Priority,
		Due:        req.Due,
	}); !guard.Allowed {
		return nil, models.NewFault(models.FaultValidation, "update", "%s", guard.Reason)
	}

	titleChanged := req.Title != "" && req.Title != rec.Title
	categoryChanged := req.Category != "" && req.Category != rec.Category
	priorityChanged := req.Priority != "" && req.Priority != rec.Priority

	if titleChanged {
		rec.Title = req.Title
	}
	if categoryChanged {
		rec.Category = req.Category
	}
	if priorityChanged {
		rec.Priority = req.Priority
	}
	if req.Due != "" {
		rec.Due = req.Due
	}

	bountyChanged := false
	if req.Bounty != "" {
		bounty, err := money.Parse(req.Bounty)
		if err != nil {
			return nil, models.WrapFault(models.FaultValidation, "update", err, "invalid bounty")
		}
		bountyChanged = bounty.Base() != rec.BountyBase
		rec.BountyBase = bounty.Base()
	}

	var faults []*models.Fault
	legs := reconcile.Legs{AppliedLocally: true, LedgerState: s.runner.State(ctx, rec.Fingerprint)}

	switch {
	case task.SubstantiveEdit(titleChanged, categoryChanged, priorityChanged):
		rec.Version++
		rec.Fingerprint = ""

		bounty := money.FromBase(rec.BountyBase)
		if bounty.IsPositive() {
			fp := s.deriveFingerprint(rec)
			rec.Fingerprint = fp

			if _, err := s.runner.Begin(ctx, rec.ID, rec.Version, fp, bounty); err != nil {
				faults = append(faults, asFault(err, "escrow begin"))
			} else {
				state, fault := s.runner.Advance(ctx, fp)
				legs.LedgerState = state
				if fault != nil {
					legs.LedgerFault = fault.Kind
					faults = append(faults, fault)
				}
			}
		} else {
			legs.LedgerState = escrow.StateNone
		}

	case bountyChanged:
		if legs.LedgerState == escrow.StateEscrowed || legs.LedgerState == escrow.StateClaimed {
			return nil, models.NewFault(models.FaultValidation, "update",
				"bounty for %s is already locked on the ledger", rec.ID)
		}

		bounty := money.FromBase(rec.BountyBase)
		if !bounty.IsPositive() {
			rec.Fingerprint = ""
			legs.LedgerState = escrow.StateNone
		} else {
			if fingerprint.IsZero(rec.Fingerprint) {
				rec.Fingerprint = s.deriveFingerprint(rec)
			}
			if _, err := s.runner.Begin(ctx, rec.ID, rec.Version, rec.Fingerprint, bounty); err != nil {
				faults = append(faults, asFault(err, "escrow begin"))
			} else {
				state, fault := s.runner.Advance(ctx, rec.Fingerprint)
				legs.LedgerState = state
				if fault != nil {
					legs.LedgerFault = fault.Kind
					faults = append(faults, fault)
				}
			}
		}

	default:
		s.resumeEscrow(ctx, rec, &legs, &faults)
	}

	if err := s.tasks.Update(ctx, rec); err != nil {
		return nil, models.WrapFault(models.FaultLocalStorage, "update", err, "failed to store task")
	}

	remoteFault := s.pushRemoteUpdate(ctx, rec)
	if remoteFault != nil {
		faults = append(faults, remoteFault)
	}
	legs.CommittedRemote = remoteFault == nil

	decision := reconcile.Decide(reconcile.OpUpdate, legs)
	rec.SyncState = decision.SyncState
	rec.LastFault = firstFaultMessage(faults)
	if err := s.tasks.Update(ctx, rec); err != nil {
		faults = append(faults, models.WrapFault(models.FaultLocalStorage, "update", err, "failed to finalize task"))
	}

	return s.result(ctx, rec, legs, faults), nil
}

// DeleteTask removes a task locally and remotely. Deletion is the only
// operation that rolls back: when the remote refuses, the local row is
// restored so the two sides never silently diverge. Open escrows are left
// untouched on the ledger.
func (s *TaskService) DeleteTask(ctx context.Context, taskID string) (*primary.TaskResult, error) {
	unlock := s.lockTask(taskID)
	defer unlock()

	rec, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, models.NewFault(models.FaultValidation, "delete", "task %s not found", taskID)
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return nil, models.WrapFault(models.FaultLocalStorage, "delete", err, "failed to delete task")
	}

	var faults []*models.Fault
	legs := reconcile.Legs{AppliedLocally: true}

	if rec.RemoteID == "" {
		legs.CommittedRemote = true
	} else if err := s.remote.Delete(ctx, rec.RemoteID); err != nil {
		faults = append(faults, asRemoteFault(err, "remote delete"))
	} else {
		legs.CommittedRemote = true
	}

	decision := reconcile.Decide(reconcile.OpDelete, legs)
	if decision.RevertLocal {
		rec.LastFault = firstFaultMessage(faults)
		if err := s.tasks.Create(ctx, rec); err != nil {
			faults = append(faults, models.WrapFault(models.FaultLocalStorage, "delete", err, "failed to restore task"))
		}
		legs.AppliedLocally = false
		return s.result(ctx, rec, legs, faults), nil
	}

	return &primary.TaskResult{
		AppliedLocally:  true,
		CommittedRemote: legs.CommittedRemote,
		Faults:          faults,
	}, nil
}

// SetCompleted toggles completion. Completing a task with an escrowed
// bounty also attempts the claim; a failed claim leaves the task completed
// and is reported as a fault.
func (s *TaskService) SetCompleted(ctx context.Context, taskID string, completed bool) (*primary.TaskResult, error) {
	unlock := s.lockTask(taskID)
	defer unlock()

	rec, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, models.NewFault(models.FaultValidation, "complete", "task %s not found", taskID)
	}

	rec.Completed = completed
	if err := s.tasks.Update(ctx, rec); err != nil {
		return nil, models.WrapFault(models.FaultLocalStorage, "complete", err, "failed to store task")
	}

	var faults []*models.Fault
	legs := reconcile.Legs{AppliedLocally: true, LedgerState: s.runner.State(ctx, rec.Fingerprint)}

	s.resumeEscrow(ctx, rec, &legs, &faults)
	if completed && !fingerprint.IsZero(rec.Fingerprint) && legs.LedgerState == escrow.StateEscrowed {
		state, fault := s.runner.Claim(ctx, rec.Fingerprint, true)
		legs.LedgerState = state
		if fault != nil {
			legs.LedgerFault = fault.Kind
			faults = append(faults, fault)
		}
	}

	remoteFault := s.pushRemoteUpdate(ctx, rec)
	if remoteFault != nil {
		faults = append(faults, remoteFault)
	}
	legs.CommittedRemote = remoteFault == nil

	decision := reconcile.Decide(reconcile.OpComplete, legs)
	rec.SyncState = decision.SyncState
	rec.LastFault = firstFaultMessage(faults)
	if err := s.tasks.Update(ctx, rec); err != nil {
		faults = append(faults, models.WrapFault(models.FaultLocalStorage, "complete", err, "failed to finalize task"))
	}

	return s.result(ctx, rec, legs, faults), nil
}

// RetryClaim retries the bounty claim for a completed task. The runner
// re-queries the ledger first and never re-submits against a record that
// already reports completed.
func (s *TaskService) RetryClaim(ctx context.Context, taskID string) (*primary.TaskResult, error) {
	unlock := s.lockTask(taskID)
	defer unlock()

	rec, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, models.NewFault(models.FaultValidation, "claim", "task %s not found", taskID)
	}
	if !rec.Completed {
		return nil, models.NewFault(models.FaultValidation, "claim", "task %s is not completed", taskID)
	}
	if fingerprint.IsZero(rec.Fingerprint) {
		return nil, models.NewFault(models.FaultValidation, "claim", "task %s has no escrow", taskID)
	}

	var faults []*models.Fault
	legs := reconcile.Legs{
		AppliedLocally:  true,
		CommittedRemote: true,
		LedgerState:     s.runner.State(ctx, rec.Fingerprint),
	}

	// A lifecycle stalled before escrowed is driven forward first, so a
	// claim retried after a bridge outage escrows and claims in one go.
	s.resumeEscrow(ctx, rec, &legs, &faults)
	if len(faults) == 0 {
		state, fault := s.runner.Claim(ctx, rec.Fingerprint, true)
		legs.LedgerState = state
		if fault != nil {
			legs.LedgerFault = fault.Kind
			faults = append(faults, fault)
		}
	}

	rec.LastFault = firstFaultMessage(faults)
	if err := s.tasks.Update(ctx, rec); err != nil {
		faults = append(faults, models.WrapFault(models.FaultLocalStorage, "claim", err, "failed to finalize task"))
	}

	return s.result(ctx, rec, legs, faults), nil
}

// GetTask retrieves a single task view.
func (s *TaskService) GetTask(ctx context.Context, taskID string) (*primary.Task, error) {
	rec, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, models.NewFault(models.FaultValidation, "get", "task %s not found", taskID)
	}
	return s.toView(ctx, rec), nil
}

// ListTasks lists task views with optional filters.
func (s *TaskService) ListTasks(ctx context.Context, filters primary.TaskFilters) ([]*primary.Task, error) {
	records, err := s.tasks.List(ctx, secondary.TaskFilters{
		Category:  filters.Category,
		Priority:  filters.Priority,
		Completed: filters.Completed,
	})
	if err != nil {
		return nil, models.WrapFault(models.FaultLocalStorage, "list", err, "failed to list tasks")
	}

	views := make([]*primary.Task, len(records))
	for i, rec := range records {
		views[i] = s.toView(ctx, rec)
	}
	return views, nil
}

// VerifyEscrow probes the ledger for a task's current escrow record.
func (s *TaskService) VerifyEscrow(ctx context.Context, taskID string) (*primary.EscrowStatus, error) {
	rec, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, models.NewFault(models.FaultValidation, "verify", "task %s not found", taskID)
	}

	status := &primary.EscrowStatus{
		TaskID:      rec.ID,
		Fingerprint: rec.Fingerprint,
		LocalState:  string(s.runner.State(ctx, rec.Fingerprint)),
	}
	if fingerprint.IsZero(rec.Fingerprint) {
		return status, nil
	}

	onLedger, err := s.ledger.QueryEscrow(ctx, rec.Fingerprint)
	if err != nil {
		return nil, asFault(err, "verify")
	}
	status.OnLedger = onLedger
	return status, nil
}

func (s *TaskService) deriveFingerprint(rec *secondary.TaskRecord) string {
	return fingerprint.Derive(fingerprint.Input{
		TaskID:    rec.ID,
		Version:   rec.Version,
		Title:     rec.Title,
		Category:  rec.Category,
		Priority:  rec.Priority,
		Due:       rec.Due,
		Timestamp: s.now().UnixNano(),
	})
}

// resumeEscrow advances a lifecycle stalled before escrowed, so a transient
// ledger fault on an earlier operation heals on the next touch instead of
// leaving the escrow stuck until a substantive edit.
func (s *TaskService) resumeEscrow(ctx context.Context, rec *secondary.TaskRecord, legs *reconcile.Legs, faults *[]*models.Fault) {
	if fingerprint.IsZero(rec.Fingerprint) || !money.FromBase(rec.BountyBase).IsPositive() {
		return
	}
	switch legs.LedgerState {
	case escrow.StateAuthorizationRequired, escrow.StateAuthorized:
	default:
		return
	}

	state, fault := s.runner.Advance(ctx, rec.Fingerprint)
	legs.LedgerState = state
	if fault != nil {
		legs.LedgerFault = fault.Kind
		*faults = append(*faults, fault)
	}
}

// pushRemoteCreate mirrors a new task to the remote API and stores the
// durable id on success.
func (s *TaskService) pushRemoteCreate(ctx context.Context, rec *secondary.TaskRecord) *models.Fault {
	hash := rec.Fingerprint
	if hash == "" {
		hash = fingerprint.Zero
	}
	created, err := s.remote.Create(ctx, &secondary.RemoteTaskRecord{
		Name:           rec.Title,
		Description:    rec.Description,
		Status:         remoteStatus(rec.Completed),
		Priority:       rec.Priority,
		Category:       rec.Category,
		DueDate:        rec.Due,
		BlockchainHash: hash,
	})
	if err != nil {
		return asRemoteFault(err, "remote create")
	}
	rec.RemoteID = created.TaskID
	return nil
}

// pushRemoteUpdate mirrors task state to the remote API. A task that was
// never synced is created instead, healing an earlier pending sync.
func (s *TaskService) pushRemoteUpdate(ctx context.Context, rec *secondary.TaskRecord) *models.Fault {
	if rec.RemoteID == "" {
		return s.pushRemoteCreate(ctx, rec)
	}
	hash := rec.Fingerprint
	if hash == "" {
		hash = fingerprint.Zero
	}

	// An incomplete task keeps a remote in-progress status across edits;
	// only todo and done are ever set from here.
	status := remoteStatus(rec.Completed)
	if !rec.Completed {
		if current, err := s.remote.Get(ctx, rec.RemoteID); err == nil && current.Status == secondary.RemoteStatusInProgress {
			status = secondary.RemoteStatusInProgress
		}
	}

	_, err := s.remote.Update(ctx, rec.RemoteID, &secondary.RemoteTaskRecord{
		Name:           rec.Title,
		Description:    rec.Description,
		Status:         status,
		Priority:       rec.Priority,
		Category:       rec.Category,
		DueDate:        rec.Due,
		BlockchainHash: hash,
	})
	if err != nil {
		return asRemoteFault(err, "remote update")
	}
	return nil
}

func remoteStatus(completed bool) string {
	if completed {
		return secondary.RemoteStatusDone
	}
	return secondary.RemoteStatusTodo
}

func (s *TaskService) result(ctx context.Context, rec *secondary.TaskRecord, legs reconcile.Legs, faults []*models.Fault) *primary.TaskResult {
	return &primary.TaskResult{
		Task:            s.toView(ctx, rec),
		AppliedLocally:  legs.AppliedLocally,
		CommittedRemote: legs.CommittedRemote,
		EscrowState:     string(legs.LedgerState),
		Faults:          faults,
	}
}

func (s *TaskService) toView(ctx context.Context, rec *secondary.TaskRecord) *primary.Task {
	view := &primary.Task{
		ID:          rec.ID,
		RemoteID:    rec.RemoteID,
		Title:       rec.Title,
		Description: rec.Description,
		Category:    rec.Category,
		Priority:    rec.Priority,
		Due:         rec.Due,
		Completed:   rec.Completed,
		Bounty:      money.FromBase(rec.BountyBase).String(),
		Fingerprint: rec.Fingerprint,
		Version:     rec.Version,
		SyncState:   rec.SyncState,
		LastFault:   rec.LastFault,
	}
	if !fingerprint.IsZero(rec.Fingerprint) {
		view.EscrowState = string(s.runner.State(ctx, rec.Fingerprint))
	}
	return view
}

func firstFaultMessage(faults []*models.Fault) string {
	if len(faults) == 0 {
		return ""
	}
	return faults[0].Error()
}

// asRemoteFault keeps remote adapter faults as they are and wraps anything
// else as remote_unavailable.
func asRemoteFault(err error, op string) *models.Fault {
	if f, ok := err.(*models.Fault); ok {
		return f
	}
	return models.WrapFault(models.FaultRemoteUnavailable, op, err, "remote call failed")
}

var _ primary.TaskService = (*TaskService)(nil)
