package remote_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/todochain/internal/adapters/remote"
	"github.com/example/todochain/internal/models"
	"github.com/example/todochain/internal/ports/secondary"
)

func TestClientCreate(t *testing.T) {
	var gotAuth, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/tasks" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if _, ok := body["bounty"]; ok {
			t.Error("bounty must never travel to the remote API")
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"message": "Task created",
			"task": map[string]any{
				"task_id":     "uuid-1",
				"task_name":   body["task_name"],
				"task_status": "todo",
			},
		})
	}))
	defer server.Close()

	client := remote.NewClient(server.URL, "token-abc")
	got, err := client.Create(context.Background(), &secondary.RemoteTaskRecord{
		Name:   "Deploy contract",
		Status: secondary.RemoteStatusTodo,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if got.TaskID != "uuid-1" || got.Name != "Deploy contract" {
		t.Errorf("unexpected record: %+v", got)
	}
	if gotAuth != "Bearer token-abc" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestClientMissingToken(t *testing.T) {
	client := remote.NewClient("http://localhost:0", "")

	_, err := client.List(context.Background())
	if err == nil {
		t.Fatal("expected credential precondition failure")
	}
	if models.KindOf(err) != models.FaultRemoteRejected {
		t.Errorf("fault kind = %s, want %s", models.KindOf(err), models.FaultRemoteRejected)
	}
}

func TestClientServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := remote.NewClient(server.URL, "token")
	_, err := client.List(context.Background())
	if models.KindOf(err) != models.FaultRemoteUnavailable {
		t.Errorf("fault kind = %s, want %s", models.KindOf(err), models.FaultRemoteUnavailable)
	}
}

func TestClientRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "task_name is required"})
	}))
	defer server.Close()

	client := remote.NewClient(server.URL, "token")
	_, err := client.Create(context.Background(), &secondary.RemoteTaskRecord{})
	if models.KindOf(err) != models.FaultRemoteRejected {
		t.Fatalf("fault kind = %s, want %s", models.KindOf(err), models.FaultRemoteRejected)
	}

	var fault *models.Fault
	if !errors.As(err, &fault) || fault.Message != "task_name is required" {
		t.Errorf("expected API message carried through, got %v", err)
	}
}

func TestClientUnreachable(t *testing.T) {
	// Closed server gives a connection error, not an HTTP status.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := remote.NewClient(server.URL, "token")
	_, err := client.List(context.Background())
	if models.KindOf(err) != models.FaultRemoteUnavailable {
		t.Errorf("fault kind = %s, want %s", models.KindOf(err), models.FaultRemoteUnavailable)
	}
}

func TestClientDeleteAndGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete && r.URL.Path == "/api/v1/tasks/uuid-9":
			json.NewEncoder(w).Encode(map[string]string{"message": "Task deleted"})
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/tasks/uuid-9":
			json.NewEncoder(w).Encode(map[string]any{
				"task": map[string]any{"task_id": "uuid-9", "task_name": "Found", "task_status": "done"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := remote.NewClient(server.URL, "token")
	if err := client.Delete(context.Background(), "uuid-9"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, err := client.Get(context.Background(), "uuid-9")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "Found" || got.Status != secondary.RemoteStatusDone {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestAuthClientLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/auth/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not carry a bearer credential")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token": "jwt-1",
			"user": map[string]string{
				"id": "u-1", "email": "a@b.c", "wallet_address": "0xdead",
			},
		})
	}))
	defer server.Close()

	auth := remote.NewAuthClient(server.URL)
	got, err := auth.Login(context.Background(), "a@b.c", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if got.Token != "jwt-1" || got.UserID != "u-1" || got.WalletAddress != "0xdead" {
		t.Errorf("unexpected auth result: %+v", got)
	}
}

func TestAuthClientBadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "invalid credentials"})
	}))
	defer server.Close()

	auth := remote.NewAuthClient(server.URL)
	_, err := auth.Login(context.Background(), "a@b.c", "wrong")
	if models.KindOf(err) != models.FaultRemoteRejected {
		t.Errorf("fault kind = %s, want %s", models.KindOf(err), models.FaultRemoteRejected)
	}
}
