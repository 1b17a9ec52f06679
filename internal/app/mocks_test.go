package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/todochain/internal/core/money"
	"github.com/example/todochain/internal/models"
	"github.com/example/todochain/internal/ports/secondary"
)

// instantSleep removes delays from polling loops under test.
func instantSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// memTaskRepo is an in-memory secondary.TaskRepository.
type memTaskRepo struct {
	tasks  map[string]*secondary.TaskRecord
	nextID int

	errCreate error
	errUpdate error
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: map[string]*secondary.TaskRecord{}}
}

func (r *memTaskRepo) Create(_ context.Context, rec *secondary.TaskRecord) error {
	if r.errCreate != nil {
		return r.errCreate
	}
	if _, ok := r.tasks[rec.ID]; ok {
		return fmt.Errorf("task %s already exists", rec.ID)
	}
	cp := *rec
	r.tasks[rec.ID] = &cp
	return nil
}

func (r *memTaskRepo) GetByID(_ context.Context, id string) (*secondary.TaskRecord, error) {
	rec, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s not found", id)
	}
	cp := *rec
	return &cp, nil
}

func (r *memTaskRepo) Update(_ context.Context, rec *secondary.TaskRecord) error {
	if r.errUpdate != nil {
		return r.errUpdate
	}
	if _, ok := r.tasks[rec.ID]; !ok {
		return fmt.Errorf("task %s not found", rec.ID)
	}
	cp := *rec
	r.tasks[rec.ID] = &cp
	return nil
}

func (r *memTaskRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tasks[id]; !ok {
		return fmt.Errorf("task %s not found", id)
	}
	delete(r.tasks, id)
	return nil
}

func (r *memTaskRepo) List(_ context.Context, filters secondary.TaskFilters) ([]*secondary.TaskRecord, error) {
	var out []*secondary.TaskRecord
	for _, rec := range r.tasks {
		if filters.Category != "" && rec.Category != filters.Category {
			continue
		}
		if filters.Priority != "" && rec.Priority != filters.Priority {
			continue
		}
		if filters.Completed != nil && rec.Completed != *filters.Completed {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memTaskRepo) FindByTitle(_ context.Context, query string) ([]*secondary.TaskRecord, error) {
	var out []*secondary.TaskRecord
	for _, rec := range r.tasks {
		if strings.Contains(strings.ToLower(rec.Title), strings.ToLower(query)) {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memTaskRepo) GetNextID(context.Context) (string, error) {
	r.nextID++
	return fmt.Sprintf("TASK-%03d", r.nextID), nil
}

// memEscrowRepo is an in-memory secondary.EscrowStateRepository.
type memEscrowRepo struct {
	rows map[string]*secondary.EscrowStateRecord
}

func newMemEscrowRepo() *memEscrowRepo {
	return &memEscrowRepo{rows: map[string]*secondary.EscrowStateRecord{}}
}

func (r *memEscrowRepo) Upsert(_ context.Context, rec *secondary.EscrowStateRecord) error {
	cp := *rec
	r.rows[rec.Fingerprint] = &cp
	return nil
}

func (r *memEscrowRepo) GetByFingerprint(_ context.Context, fp string) (*secondary.EscrowStateRecord, error) {
	rec, ok := r.rows[fp]
	if !ok {
		return nil, fmt.Errorf("escrow %s not found", fp)
	}
	cp := *rec
	return &cp, nil
}

func (r *memEscrowRepo) ListByTask(_ context.Context, taskID string) ([]*secondary.EscrowStateRecord, error) {
	var out []*secondary.EscrowStateRecord
	for _, rec := range r.rows {
		if rec.TaskID == taskID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

func (r *memEscrowRepo) ListActive(context.Context) ([]*secondary.EscrowStateRecord, error) {
	var out []*secondary.EscrowStateRecord
	for _, rec := range r.rows {
		if rec.State != "claimed" {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fingerprint < out[j].Fingerprint })
	return out, nil
}

func (r *memEscrowRepo) SetState(_ context.Context, fp, state, txRef string) error {
	rec, ok := r.rows[fp]
	if !ok {
		return fmt.Errorf("escrow %s not found", fp)
	}
	rec.State = state
	if txRef != "" {
		rec.TxRef = txRef
	}
	return nil
}

// memSessionRepo is an in-memory secondary.SessionRepository.
type memSessionRepo struct {
	session *secondary.SessionRecord
}

func (r *memSessionRepo) Get(context.Context) (*secondary.SessionRecord, error) {
	if r.session == nil {
		return nil, nil
	}
	cp := *r.session
	return &cp, nil
}

func (r *memSessionRepo) Save(_ context.Context, rec *secondary.SessionRecord) error {
	cp := *rec
	r.session = &cp
	return nil
}

func (r *memSessionRepo) Clear(context.Context) error {
	r.session = nil
	return nil
}

// fakeLedger is a scriptable secondary.Ledger. Per-method errors simulate
// outage, rejection and timeout; successful submits mutate the fake chain
// state the way the real contracts would.
type fakeLedger struct {
	owner     string
	balance   money.Amount
	allowance money.Amount
	escrowed  map[string]*models.EscrowRecord

	errCheck error
	errGrant error
	errOpen  error
	errClose error
	errQuery error

	// grantLands controls whether a grant becomes observable immediately.
	grantLands bool

	opens  int
	closes int
	grants int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		owner:      "0xowner",
		balance:    money.MustParse("100"),
		allowance:  money.MustParse("0"),
		escrowed:   map[string]*models.EscrowRecord{},
		grantLands: true,
	}
}

func (l *fakeLedger) Owner(context.Context) (string, error) {
	return l.owner, nil
}

func (l *fakeLedger) Balance(context.Context) (money.Amount, error) {
	return l.balance, nil
}

func (l *fakeLedger) CheckAuthorization(context.Context) (money.Amount, error) {
	if l.errCheck != nil {
		return 0, l.errCheck
	}
	return l.allowance, nil
}

func (l *fakeLedger) GrantAuthorization(_ context.Context, amount money.Amount) (secondary.TxRef, error) {
	if l.errGrant != nil {
		return "", l.errGrant
	}
	l.grants++
	if l.grantLands {
		l.allowance = amount
	}
	return "0xgrant", nil
}

func (l *fakeLedger) OpenEscrow(_ context.Context, fp string, amount money.Amount) (secondary.TxRef, error) {
	if l.errOpen != nil {
		return "", l.errOpen
	}
	l.opens++
	l.escrowed[fp] = &models.EscrowRecord{Owner: l.owner, Amount: amount, Exists: true}
	return "0xopen", nil
}

func (l *fakeLedger) CloseEscrow(_ context.Context, fp string) (secondary.TxRef, error) {
	if l.errClose != nil {
		return "", l.errClose
	}
	rec, ok := l.escrowed[fp]
	if !ok {
		return "", models.NewFault(models.FaultLedgerRejected, "closeEscrow", "unknown record")
	}
	if rec.Completed {
		return "", models.NewFault(models.FaultLedgerRejected, "closeEscrow", "already completed")
	}
	l.closes++
	rec.Completed = true
	return "0xclose", nil
}

func (l *fakeLedger) QueryEscrow(_ context.Context, fp string) (*models.EscrowRecord, error) {
	if l.errQuery != nil {
		return nil, l.errQuery
	}
	rec, ok := l.escrowed[fp]
	if !ok {
		return &models.EscrowRecord{}, nil
	}
	cp := *rec
	return &cp, nil
}

// fakeRemote is a scriptable secondary.RemoteTaskStore.
type fakeRemote struct {
	tasks  map[string]*secondary.RemoteTaskRecord
	nextID int

	errCreate error
	errUpdate error
	errDelete error

	creates int
	updates int
	deletes int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{tasks: map[string]*secondary.RemoteTaskRecord{}}
}

func (r *fakeRemote) Create(_ context.Context, rec *secondary.RemoteTaskRecord) (*secondary.RemoteTaskRecord, error) {
	if r.errCreate != nil {
		return nil, r.errCreate
	}
	r.creates++
	r.nextID++
	cp := *rec
	cp.TaskID = fmt.Sprintf("uuid-%d", r.nextID)
	r.tasks[cp.TaskID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeRemote) Update(_ context.Context, remoteID string, rec *secondary.RemoteTaskRecord) (*secondary.RemoteTaskRecord, error) {
	if r.errUpdate != nil {
		return nil, r.errUpdate
	}
	if _, ok := r.tasks[remoteID]; !ok {
		return nil, models.NewFault(models.FaultRemoteRejected, "remote update", "unknown task")
	}
	r.updates++
	cp := *rec
	cp.TaskID = remoteID
	r.tasks[remoteID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeRemote) Delete(_ context.Context, remoteID string) error {
	if r.errDelete != nil {
		return r.errDelete
	}
	if _, ok := r.tasks[remoteID]; !ok {
		return models.NewFault(models.FaultRemoteRejected, "remote delete", "unknown task")
	}
	r.deletes++
	delete(r.tasks, remoteID)
	return nil
}

func (r *fakeRemote) Get(_ context.Context, remoteID string) (*secondary.RemoteTaskRecord, error) {
	rec, ok := r.tasks[remoteID]
	if !ok {
		return nil, models.NewFault(models.FaultRemoteRejected, "remote get", "unknown task")
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeRemote) List(context.Context) ([]*secondary.RemoteTaskRecord, error) {
	var out []*secondary.RemoteTaskRecord
	for _, rec := range r.tasks {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

// fakeDescriber returns a canned description.
type fakeDescriber struct{}

func (fakeDescriber) Describe(_ context.Context, title, _, _ string) string {
	return "About: " + title
}

// fakeAuth is a scriptable secondary.RemoteAuthenticator.
type fakeAuth struct {
	err error
}

func (a *fakeAuth) Register(_ context.Context, req secondary.RegisterRequest) (*secondary.AuthResult, error) {
	if a.err != nil {
		return nil, a.err
	}
	return &secondary.AuthResult{
		UserID: "u-1", Email: req.Email,
		DisplayName: req.DisplayName, WalletAddress: req.WalletAddress,
		Token: "jwt-registered",
	}, nil
}

func (a *fakeAuth) Login(_ context.Context, email, _ string) (*secondary.AuthResult, error) {
	if a.err != nil {
		return nil, a.err
	}
	return &secondary.AuthResult{UserID: "u-1", Email: email, Token: "jwt-login"}, nil
}

// fixture bundles a fully wired coordinator over fakes.
type fixture struct {
	tasks   *memTaskRepo
	escrows *memEscrowRepo
	remote  *fakeRemote
	ledger  *fakeLedger
	runner  *EscrowRunner
	service *TaskService
}

func newFixture() *fixture {
	tasks := newMemTaskRepo()
	escrows := newMemEscrowRepo()
	remote := newFakeRemote()
	ledger := newFakeLedger()

	runner := NewEscrowRunner(escrows, ledger, 3, time.Millisecond)
	runner.sleep = instantSleep

	service := NewTaskService(tasks, escrows, remote, ledger, fakeDescriber{}, runner)
	service.now = func() time.Time {
		return time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	}

	return &fixture{
		tasks:   tasks,
		escrows: escrows,
		remote:  remote,
		ledger:  ledger,
		runner:  runner,
		service: service,
	}
}
