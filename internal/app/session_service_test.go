package app

import (
	"context"
	"testing"

	"github.com/example/todochain/internal/models"
	"github.com/example/todochain/internal/ports/primary"
)

func TestSessionLoginAndCurrent(t *testing.T) {
	repo := &memSessionRepo{}
	svc := NewSessionService(repo, &fakeAuth{})
	ctx := context.Background()

	session, err := svc.Login(ctx, "a@b.c", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if session.Email != "a@b.c" || session.ID == "" {
		t.Errorf("unexpected session: %+v", session)
	}
	if repo.session.Token != "jwt-login" {
		t.Error("token must be persisted with the session")
	}

	current, err := svc.Current(ctx)
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if current == nil || current.Email != "a@b.c" {
		t.Errorf("unexpected current session: %+v", current)
	}
}

func TestSessionLoginValidation(t *testing.T) {
	svc := NewSessionService(&memSessionRepo{}, &fakeAuth{})

	if _, err := svc.Login(context.Background(), "", "secret"); err == nil {
		t.Error("empty email must be rejected")
	}
	if _, err := svc.Login(context.Background(), "a@b.c", ""); err == nil {
		t.Error("empty password must be rejected")
	}
}

func TestSessionLoginRejected(t *testing.T) {
	auth := &fakeAuth{err: models.NewFault(models.FaultRemoteRejected, "login", "invalid credentials")}
	svc := NewSessionService(&memSessionRepo{}, auth)

	if _, err := svc.Login(context.Background(), "a@b.c", "wrong"); models.KindOf(err) != models.FaultRemoteRejected {
		t.Errorf("expected remote_rejected, got %v", err)
	}
}

func TestSessionRegisterOpensSession(t *testing.T) {
	repo := &memSessionRepo{}
	svc := NewSessionService(repo, &fakeAuth{})

	session, err := svc.Register(context.Background(), primary.RegisterRequest{
		Email:         "a@b.c",
		Password:      "secret",
		WalletAddress: "0xdead",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if session.WalletAddress != "0xdead" {
		t.Errorf("unexpected session: %+v", session)
	}
	if repo.session == nil {
		t.Error("register must open a session")
	}
}

func TestSessionLogout(t *testing.T) {
	repo := &memSessionRepo{}
	svc := NewSessionService(repo, &fakeAuth{})
	ctx := context.Background()

	if _, err := svc.Login(ctx, "a@b.c", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	current, err := svc.Current(ctx)
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if current != nil {
		t.Error("logout must clear the session")
	}
}
