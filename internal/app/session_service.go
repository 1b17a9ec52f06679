package app

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/example/todochain/internal/models"
	"github.com/example/todochain/internal/ports/primary"
	"github.com/example/todochain/internal/ports/secondary"
)

// SessionService manages the single active session.
type SessionService struct {
	sessions secondary.SessionRepository
	auth     secondary.RemoteAuthenticator
}

// NewSessionService creates the session service.
func NewSessionService(sessions secondary.SessionRepository, auth secondary.RemoteAuthenticator) *SessionService {
	return &SessionService{sessions: sessions, auth: auth}
}

// Register creates an account and opens a session.
func (s *SessionService) Register(ctx context.Context, req primary.RegisterRequest) (*primary.Session, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, models.NewFault(models.FaultValidation, "register", "email and password are required")
	}

	result, err := s.auth.Register(ctx, secondary.RegisterRequest{
		Email:         req.Email,
		Password:      req.Password,
		DisplayName:   req.DisplayName,
		WalletAddress: req.WalletAddress,
	})
	if err != nil {
		return nil, err
	}
	return s.open(ctx, result)
}

// Login opens a session for existing credentials.
func (s *SessionService) Login(ctx context.Context, email, password string) (*primary.Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, models.NewFault(models.FaultValidation, "login", "email and password are required")
	}

	result, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, result)
}

func (s *SessionService) open(ctx context.Context, auth *secondary.AuthResult) (*primary.Session, error) {
	rec := &secondary.SessionRecord{
		ID:            uuid.NewString(),
		UserID:        auth.UserID,
		Email:         auth.Email,
		DisplayName:   auth.DisplayName,
		WalletAddress: auth.WalletAddress,
		Token:         auth.Token,
	}
	if err := s.sessions.Save(ctx, rec); err != nil {
		return nil, models.WrapFault(models.FaultLocalStorage, "login", err, "failed to store session")
	}
	return toSessionView(rec), nil
}

// Logout clears the active session.
func (s *SessionService) Logout(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

// Current returns the active session, or nil when logged out.
func (s *SessionService) Current(ctx context.Context) (*primary.Session, error) {
	rec, err := s.sessions.Get(ctx)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return toSessionView(rec), nil
}

func toSessionView(rec *secondary.SessionRecord) *primary.Session {
	return &primary.Session{
		ID:            rec.ID,
		UserID:        rec.UserID,
		Email:         rec.Email,
		DisplayName:   rec.DisplayName,
		WalletAddress: rec.WalletAddress,
	}
}

var _ primary.SessionService = (*SessionService)(nil)
