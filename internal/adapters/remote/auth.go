package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/todochain/internal/models"
	"github.com/example/todochain/internal/ports/secondary"
)

// AuthClient implements secondary.RemoteAuthenticator. Register and login
// are the only remote calls made without a bearer credential.
type AuthClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAuthClient creates an auth client for the task API.
func NewAuthClient(baseURL string) *AuthClient {
	return &AuthClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type authRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	DisplayName   string `json:"display_name,omitempty"`
	WalletAddress string `json:"wallet_address,omitempty"`
}

type authEnvelope struct {
	Message string `json:"message,omitempty"`
	Token   string `json:"token"`
	User    struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		DisplayName   string `json:"display_name"`
		WalletAddress string `json:"wallet_address"`
	} `json:"user"`
}

func (c *AuthClient) post(ctx context.Context, op, path string, body authRequest) (*secondary.AuthResult, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, models.WrapFault(models.FaultRemoteRejected, op, err, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, models.WrapFault(models.FaultRemoteRejected, op, err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, models.WrapFault(models.FaultRemoteUnavailable, op, err, "task API unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, models.NewFault(models.FaultRemoteUnavailable, op, "task API returned %s", resp.Status)
	}
	if resp.StatusCode >= 400 {
		var apiErr errorEnvelope
		msg := resp.Status
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			msg = apiErr.Message
		}
		return nil, models.NewFault(models.FaultRemoteRejected, op, "%s", msg)
	}

	var env authEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, models.WrapFault(models.FaultRemoteUnavailable, op, err, "invalid auth response")
	}
	if env.Token == "" {
		return nil, models.NewFault(models.FaultRemoteRejected, op, "auth response missing token")
	}

	return &secondary.AuthResult{
		UserID:        env.User.ID,
		Email:         env.User.Email,
		DisplayName:   env.User.DisplayName,
		WalletAddress: env.User.WalletAddress,
		Token:         env.Token,
	}, nil
}

// Register creates an account and returns the authenticated identity.
func (c *AuthClient) Register(ctx context.Context, req secondary.RegisterRequest) (*secondary.AuthResult, error) {
	return c.post(ctx, "register", "/api/v1/auth/register", authRequest{
		Email:         req.Email,
		Password:      req.Password,
		DisplayName:   req.DisplayName,
		WalletAddress: req.WalletAddress,
	})
}

// Login exchanges credentials for a bearer token.
func (c *AuthClient) Login(ctx context.Context, email, password string) (*secondary.AuthResult, error) {
	return c.post(ctx, "login", "/api/v1/auth/login", authRequest{
		Email:    email,
		Password: password,
	})
}
