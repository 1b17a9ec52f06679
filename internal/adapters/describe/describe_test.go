package describe_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/todochain/internal/adapters/describe"
)

func TestTemplateFallback(t *testing.T) {
	p, err := describe.NewProvider("", "")
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	ctx := context.Background()

	got := p.Describe(ctx, "Buy groceries", "Shopping", "high")
	if !strings.Contains(got, "Buy groceries") {
		t.Errorf("description should contain the title, got %q", got)
	}
	if !strings.Contains(got, "Urgent") {
		t.Errorf("high priority should add the urgency suffix, got %q", got)
	}

	// Deterministic for the same inputs.
	if again := p.Describe(ctx, "Buy groceries", "Shopping", "high"); again != got {
		t.Errorf("description changed between calls: %q vs %q", got, again)
	}
}

func TestUnknownCategoryUsesGeneral(t *testing.T) {
	p, err := describe.NewProvider("", "")
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	got := p.Describe(context.Background(), "Fix the roof", "NoSuchCategory", "low")
	if !strings.Contains(got, "Fix the roof") {
		t.Errorf("description should contain the title, got %q", got)
	}
}

func TestOverrideFileReplacesTemplates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	override := "categories:\n  Shopping:\n    - \"Pick up {title} on the way home.\"\npriorities:\n  high: \"Do it today.\"\n"
	if err := os.WriteFile(path, []byte(override), 0o600); err != nil {
		t.Fatalf("failed to write override: %v", err)
	}

	p, err := describe.NewProvider("", path)
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	got := p.Describe(context.Background(), "milk", "Shopping", "high")
	if got != "Pick up milk on the way home. Do it today." {
		t.Errorf("override not applied, got %q", got)
	}

	// Categories not named in the override keep the embedded templates.
	if got := p.Describe(context.Background(), "Stretch", "Health", "low"); !strings.Contains(got, "Stretch") {
		t.Errorf("embedded template lost, got %q", got)
	}
}

func TestServicePreferred(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"description": "Generated remotely."})
	}))
	defer server.Close()

	p, err := describe.NewProvider(server.URL, "")
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	got := p.Describe(context.Background(), "Anything", "General", "medium")
	if got != "Generated remotely." {
		t.Errorf("got %q, want the service response", got)
	}
}

func TestServiceFailureFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	p, err := describe.NewProvider(server.URL, "")
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	got := p.Describe(context.Background(), "Water the plants", "Personal", "low")
	if !strings.Contains(got, "Water the plants") {
		t.Errorf("fallback description should contain the title, got %q", got)
	}
}
