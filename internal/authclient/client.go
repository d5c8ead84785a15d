package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/perspectra/portal/internal/model"
)

// Errors normalized from the auth service. A role mismatch on login is
// indistinguishable from a wrong password; the backend folds both into
// the same 401 and so do we.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already exists")
	ErrMissingFields      = errors.New("email and password required")
	ErrRequestInFlight    = errors.New("auth request already in flight")
)

// RegisterRequest is the payload for the register endpoint
type RegisterRequest struct {
	Email    string     `json:"email"`
	Password string     `json:"password"`
	FullName string     `json:"fullName"`
	Role     model.Role `json:"role"`
}

// LoginRequest is the payload for the login endpoint. Role, when set,
// acts as an additional equality filter against the stored account role.
type LoginRequest struct {
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     model.Role `json:"role,omitempty"`
}

// Client calls the external authentication service and normalizes its
// responses. At most one register/login call may be in flight per email;
// a second submission for the same account before the first settles is
// refused rather than raced. Requests for different accounts proceed
// concurrently.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu      sync.Mutex
	pending map[string]struct{}
}

// New creates a new auth client
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		pending: make(map[string]struct{}),
	}
}

// Register creates an account on the auth service
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	key := model.NormalizeEmail(req.Email)
	if err := c.begin(key); err != nil {
		return err
	}
	defer c.settle(key)

	return c.post(ctx, "/api/register", req, nil)
}

// Login authenticates credentials and returns the account record
func (c *Client) Login(ctx context.Context, req LoginRequest) (*model.Account, error) {
	key := model.NormalizeEmail(req.Email)
	if err := c.begin(key); err != nil {
		return nil, err
	}
	defer c.settle(key)

	var account model.Account
	if err := c.post(ctx, "/api/login", req, &account); err != nil {
		return nil, err
	}
	account.Email = model.NormalizeEmail(account.Email)
	return &account, nil
}

// begin transitions an email idle -> pending, refusing a second in-flight
// request for the same email
func (c *Client) begin(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pending[key]; ok {
		return ErrRequestInFlight
	}
	c.pending[key] = struct{}{}
	return nil
}

// settle transitions an email pending -> idle
func (c *Client) settle(key string) {
	c.mu.Lock()
	delete(c.pending, key)
	c.mu.Unlock()
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return normalizeError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// normalizeError maps an auth service error response to a typed error,
// falling back to a generic status message when the body is unreadable
func normalizeError(status int, body []byte) error {
	var errResp struct {
		Error string `json:"error"`
	}
	message := ""
	if err := json.Unmarshal(body, &errResp); err == nil {
		message = errResp.Error
	}
	if message == "" {
		return fmt.Errorf("request failed (%d)", status)
	}

	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, message)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrEmailTaken, message)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrMissingFields, message)
	default:
		return fmt.Errorf("request failed (%d): %s", status, message)
	}
}
