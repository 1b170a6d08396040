package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// AuthData is the payload of a successful signup or login response.
type AuthData struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// envelope is the auth API's response shape for every endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []FieldError    `json:"errors"`
}

// Client talks to the auth API. It owns no session state; the Manager does.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client against the given base URL, e.g.
// "http://localhost:3001/api/auth".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Signup submits a registration. Server-side field errors come back as a
// *ValidationError; other rejections as *APIError; transport failures wrap
// ErrNetwork.
func (c *Client) Signup(ctx context.Context, form SignupForm) (*AuthData, error) {
	return c.submitAuth(ctx, "/signup", form)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login submits credentials. A 401 maps to ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthData, error) {
	data, err := c.submitAuth(ctx, "/login", loginRequest{Email: email, Password: password})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return data, nil
}

// Logout notifies the server that the token's session ended. Callers treat
// failure as non-fatal.
func (c *Client) Logout(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: "logout rejected"}
	}
	return nil
}

func (c *Client) submitAuth(ctx context.Context, path string, payload any) (*AuthData, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrNetwork, err)
	}

	if !env.Success {
		if len(env.Errors) > 0 {
			return nil, &ValidationError{Fields: env.Errors}
		}
		message := env.Message
		if message == "" {
			message = "request failed"
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	var data AuthData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: malformed response data: %v", ErrNetwork, err)
	}
	if data.Token == "" {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "response missing token"}
	}
	return &data, nil
}
