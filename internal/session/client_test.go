package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/api/auth")
}

func TestClient_Login_Success(t *testing.T) {
	client := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "vukile@example.com", req["email"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"token": "tok-1",
				"user": map[string]any{
					"id": "u-1", "email": "vukile@example.com",
					"name": "Vukile Ndlovu", "role": "buyer",
				},
			},
		})
	})

	data, err := client.Login(context.Background(), "vukile@example.com", "Sup3rSecret")

	require.NoError(t, err)
	assert.Equal(t, "tok-1", data.Token)
	assert.Equal(t, "buyer", data.User.Role)
	assert.Equal(t, "Vukile Ndlovu", data.User.Name)
}

func TestClient_Login_Unauthorized(t *testing.T) {
	client := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "Invalid email or password",
		})
	})

	_, err := client.Login(context.Background(), "bad@x.com", "wrongpass")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestClient_Signup_ServerFieldErrors(t *testing.T) {
	client := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "Validation failed",
			"errors": []map[string]string{
				{"field": "phone", "message": "Please provide a valid phone number"},
			},
		})
	})

	_, err := client.Signup(context.Background(), validForm())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "phone", verr.Fields[0].Field)
}

func TestClient_Signup_DuplicateEmail(t *testing.T) {
	client := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "An account with this email already exists",
		})
	})

	_, err := client.Signup(context.Background(), validForm())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "An account with this email already exists", apiErr.Message)
}

func TestClient_NetworkFailure(t *testing.T) {
	// Point at a closed server so the request cannot complete.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	client := NewClient(srv.URL + "/api/auth")

	_, err := client.Login(context.Background(), "a@b.com", "password")

	assert.ErrorIs(t, err, ErrNetwork)
}

func TestClient_Logout_SendsBearerToken(t *testing.T) {
	var gotAuth string
	client := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	})

	err := client.Logout(context.Background(), "tok-9")

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-9", gotAuth)
}

func TestClient_MalformedResponseBody(t *testing.T) {
	client := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	_, err := client.Login(context.Background(), "a@b.com", "password")

	assert.ErrorIs(t, err, ErrNetwork)
}
