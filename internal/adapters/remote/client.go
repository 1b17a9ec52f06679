// Package remote contains the HTTP adapter for the durable task API. The
// API is a bearer-authenticated REST service; its failures map onto the
// remote_* fault kinds so the coordinator can degrade to pending sync
// instead of aborting.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/example/todochain/internal/models"
	"github.com/example/todochain/internal/ports/secondary"
)

// Client implements secondary.RemoteTaskStore over HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a task API client carrying the session's bearer
// credential. An empty token produces a client whose calls fail the
// credential precondition without touching the network.
func NewClient(baseURL, token string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}

	if token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
		c.httpClient = oauth2.NewClient(context.Background(), src)
		c.httpClient.Timeout = 15 * time.Second
	} else {
		c.httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return c
}

// apiTask is the wire representation of a task. The bounty never travels
// here: it lives on the ledger only.
type apiTask struct {
	TaskID         string `json:"task_id,omitempty"`
	Name           string `json:"task_name"`
	Description    string `json:"task_description"`
	Status         string `json:"task_status"`
	Priority       string `json:"task_priority"`
	Category       string `json:"task_category"`
	DueDate        string `json:"task_due_date"`
	BlockchainHash string `json:"task_blockchain_hash"`
	CreatedAt      string `json:"createdAt,omitempty"`
	UpdatedAt      string `json:"updatedAt,omitempty"`
}

type taskEnvelope struct {
	Message string   `json:"message,omitempty"`
	Task    *apiTask `json:"task,omitempty"`
}

type listEnvelope struct {
	Tasks []*apiTask `json:"tasks"`
}

type errorEnvelope struct {
	Message string `json:"message"`
}

func toAPI(rec *secondary.RemoteTaskRecord) *apiTask {
	return &apiTask{
		Name:           rec.Name,
		Description:    rec.Description,
		Status:         rec.Status,
		Priority:       rec.Priority,
		Category:       rec.Category,
		DueDate:        rec.DueDate,
		BlockchainHash: rec.BlockchainHash,
	}
}

func fromAPI(t *apiTask) *secondary.RemoteTaskRecord {
	return &secondary.RemoteTaskRecord{
		TaskID:         t.TaskID,
		Name:           t.Name,
		Description:    t.Description,
		Status:         t.Status,
		Priority:       t.Priority,
		Category:       t.Category,
		DueDate:        t.DueDate,
		BlockchainHash: t.BlockchainHash,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// do runs one API request and decodes the response into out (when out is
// non-nil). All transport and status failures come back as *models.Fault.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	if c.token == "" {
		return models.NewFault(models.FaultRemoteRejected, op, "no bearer credential, login required")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return models.WrapFault(models.FaultRemoteRejected, op, err, "failed to encode request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return models.WrapFault(models.FaultRemoteRejected, op, err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.WrapFault(models.FaultRemoteUnavailable, op, err, "task API unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return models.NewFault(models.FaultRemoteUnavailable, op, "task API returned %s", resp.Status)
	}
	if resp.StatusCode >= 400 {
		var apiErr errorEnvelope
		msg := resp.Status
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			msg = apiErr.Message
		}
		return models.NewFault(models.FaultRemoteRejected, op, "%s", msg)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return models.WrapFault(models.FaultRemoteUnavailable, op, err, "invalid task API response")
		}
	}
	return nil
}

// Create persists a new task remotely.
func (c *Client) Create(ctx context.Context, task *secondary.RemoteTaskRecord) (*secondary.RemoteTaskRecord, error) {
	var env taskEnvelope
	if err := c.do(ctx, "remote create", http.MethodPost, "/api/v1/tasks", toAPI(task), &env); err != nil {
		return nil, err
	}
	if env.Task == nil {
		return nil, models.NewFault(models.FaultRemoteUnavailable, "remote create", "response missing task data")
	}
	return fromAPI(env.Task), nil
}

// Update replaces a task by its durable id.
func (c *Client) Update(ctx context.Context, remoteID string, task *secondary.RemoteTaskRecord) (*secondary.RemoteTaskRecord, error) {
	var env taskEnvelope
	path := fmt.Sprintf("/api/v1/tasks/%s", remoteID)
	if err := c.do(ctx, "remote update", http.MethodPut, path, toAPI(task), &env); err != nil {
		return nil, err
	}
	if env.Task == nil {
		return nil, models.NewFault(models.FaultRemoteUnavailable, "remote update", "response missing task data")
	}
	return fromAPI(env.Task), nil
}

// Delete removes a task by its durable id.
func (c *Client) Delete(ctx context.Context, remoteID string) error {
	path := fmt.Sprintf("/api/v1/tasks/%s", remoteID)
	return c.do(ctx, "remote delete", http.MethodDelete, path, nil, nil)
}

// Get retrieves a task by its durable id.
func (c *Client) Get(ctx context.Context, remoteID string) (*secondary.RemoteTaskRecord, error) {
	var env taskEnvelope
	path := fmt.Sprintf("/api/v1/tasks/%s", remoteID)
	if err := c.do(ctx, "remote get", http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	if env.Task == nil {
		return nil, models.NewFault(models.FaultRemoteUnavailable, "remote get", "response missing task data")
	}
	return fromAPI(env.Task), nil
}

// List retrieves all of the session user's tasks.
func (c *Client) List(ctx context.Context) ([]*secondary.RemoteTaskRecord, error) {
	var env listEnvelope
	if err := c.do(ctx, "remote list", http.MethodGet, "/api/v1/tasks", nil, &env); err != nil {
		return nil, err
	}

	records := make([]*secondary.RemoteTaskRecord, len(env.Tasks))
	for i, t := range env.Tasks {
		records[i] = fromAPI(t)
	}
	return records, nil
}
