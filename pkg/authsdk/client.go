package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the CRM auth API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Register creates a company and its admin user.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/login", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Invite asks the server to create an invitation. The link is only logged
// server-side, so nothing but the message comes back.
func (c *Client) Invite(ctx context.Context, token string, req InviteRequest) error {
	return c.do(ctx, http.MethodPost, "/invite", token, req, nil)
}

// AcceptInvite registers the invited user.
func (c *Client) AcceptInvite(ctx context.Context, req AcceptInviteRequest) (*AcceptInviteResponse, error) {
	var out AcceptInviteResponse
	if err := c.do(ctx, http.MethodPost, "/accept-invite", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyToken returns the claims of token if the server accepts it.
func (c *Client) VerifyToken(ctx context.Context, token string) (*Claims, error) {
	var out ClaimsResponse
	if err := c.do(ctx, http.MethodPost, "/verify-token", "", VerifyTokenRequest{Token: token}, &out); err != nil {
		return nil, err
	}
	return &out.Claims, nil
}

// Logout revokes token where the server supports it.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/logout", token, nil, nil)
}

// Get calls a message-returning GET endpoint such as /protected or /admin.
func (c *Client) Get(ctx context.Context, path, token string) (string, error) {
	var out MessageResponse
	if err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{StatusCode: resp.StatusCode, Message: e.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
