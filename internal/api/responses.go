package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/example/homeware-storefront/internal/user"
)

// FieldError attributes a rejection message to one request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// response is the envelope every endpoint answers with.
type response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// UserResponse is the public view of a user record.
type UserResponse struct {
	ID            string     `json:"id"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Role          string     `json:"role"`
	DateOfBirth   string     `json:"dateOfBirth,omitempty"`
	Address       string     `json:"address,omitempty"`
	City          string     `json:"city,omitempty"`
	Province      string     `json:"province,omitempty"`
	PostalCode    string     `json:"postalCode,omitempty"`
	EmailVerified bool       `json:"emailVerified"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastLogin     *time.Time `json:"lastLogin,omitempty"`
}

func publicUser(u *user.User) UserResponse {
	resp := UserResponse{
		ID:            u.ID,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Name:          u.FullName(),
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          u.Role,
		DateOfBirth:   u.DateOfBirth,
		Address:       u.Address,
		City:          u.City,
		Province:      u.Province,
		PostalCode:    u.PostalCode,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
	if !u.LastLogin.IsZero() {
		lastLogin := u.LastLogin
		resp.LastLogin = &lastLogin
	}
	return resp
}

func respondSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, response{Success: true, Message: message, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, response{Success: false, Message: message})
}

func respondValidationErrors(w http.ResponseWriter, errors []FieldError) {
	writeJSON(w, http.StatusBadRequest, response{
		Success: false,
		Message: "Validation failed",
		Errors:  errors,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
