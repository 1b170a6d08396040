package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/homeware-storefront/internal/api/middleware"
	"github.com/example/homeware-storefront/internal/auth"
	"github.com/example/homeware-storefront/internal/user"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	users *user.Service
	jwt   *auth.JWTService
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(users *user.Service, jwt *auth.JWTService) *AuthHandlers {
	return &AuthHandlers{users: users, jwt: jwt}
}

// SignupRequest is the registration request body
type SignupRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	DateOfBirth     string `json:"dateOfBirth"`
	Address         string `json:"address"`
	City            string `json:"city"`
	Province        string `json:"province"`
	PostalCode      string `json:"postalCode"`
}

// LoginRequest is the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authData is the data portion of a successful signup or login response
type authData struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// Signup handles user registration
func (h *AuthHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validateSignup(req); len(errs) > 0 {
		respondValidationErrors(w, errs)
		return
	}

	newUser, err := h.users.Register(r.Context(), user.Registration{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Password:    req.Password,
		DateOfBirth: req.DateOfBirth,
		Address:     req.Address,
		City:        req.City,
		Province:    req.Province,
		PostalCode:  req.PostalCode,
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailExists) {
			respondError(w, http.StatusConflict, "An account with this email already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to create account. Please try again.")
		return
	}

	token, _, err := h.jwt.GenerateToken(newUser.ID, newUser.Email, newUser.Role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create account. Please try again.")
		return
	}

	respondSuccess(w, http.StatusCreated, "Account created successfully", authData{
		User:  publicUser(newUser),
		Token: token,
	})
}

// Login handles user login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password, r.RemoteAddr, r.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, user.ErrInvalidCredentials):
			// Never reveal whether the email exists
			respondError(w, http.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, user.ErrUserDeactivated):
			respondError(w, http.StatusForbidden, "Account is deactivated")
		default:
			respondError(w, http.StatusInternalServerError, "Login failed. Please try again.")
		}
		return
	}

	token, _, err := h.jwt.GenerateToken(u.ID, u.Email, u.Role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Login failed. Please try again.")
		return
	}

	respondSuccess(w, http.StatusOK, "Login successful", authData{
		User:  publicUser(u),
		Token: token,
	})
}

// Logout handles user logout. The token is stateless, so this only records
// the audit event; the client clears its own state regardless.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		h.users.RecordLogout(r.Context(), claims.UserID)
	}
	respondSuccess(w, http.StatusOK, "Logged out successfully", nil)
}

// Profile returns the authenticated user's record
func (h *AuthHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	u, err := h.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	respondSuccess(w, http.StatusOK, "", map[string]any{"user": publicUser(u)})
}

// ProfileUpdateRequest carries optional profile fields; absent fields stay
// unchanged.
type ProfileUpdateRequest struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Phone       *string `json:"phone"`
	DateOfBirth *string `json:"dateOfBirth"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	Province    *string `json:"province"`
	PostalCode  *string `json:"postalCode"`
}

// UpdateProfile applies a partial profile update
func (h *AuthHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validateProfileUpdate(req); len(errs) > 0 {
		respondValidationErrors(w, errs)
		return
	}

	u, err := h.users.UpdateProfile(r.Context(), claims.UserID, user.ProfileUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		Address:     req.Address,
		City:        req.City,
		Province:    req.Province,
		PostalCode:  req.PostalCode,
	})
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	respondSuccess(w, http.StatusOK, "Profile updated successfully", map[string]any{"user": publicUser(u)})
}

// ChangePasswordRequest is the change-password request body
type ChangePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

// ChangePassword handles password change requests
func (h *AuthHandlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var errs []FieldError
	if req.CurrentPassword == "" {
		errs = append(errs, FieldError{"currentPassword", "Current password is required"})
	}
	errs = append(errs, validatePassword("newPassword", req.NewPassword)...)
	if req.NewPassword != req.ConfirmNewPassword {
		errs = append(errs, FieldError{"confirmNewPassword", "New passwords do not match"})
	}
	if len(errs) > 0 {
		respondValidationErrors(w, errs)
		return
	}

	if err := h.users.ChangePassword(r.Context(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			respondError(w, http.StatusBadRequest, "Current password is incorrect")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to change password")
		return
	}

	respondSuccess(w, http.StatusOK, "Password changed successfully", nil)
}

func validateProfileUpdate(req ProfileUpdateRequest) []FieldError {
	var errs []FieldError

	if req.FirstName != nil && (*req.FirstName == "" || len(*req.FirstName) > maxNameLength) {
		errs = append(errs, FieldError{"firstName", "First name must be between 1 and 50 characters"})
	}
	if req.LastName != nil && (*req.LastName == "" || len(*req.LastName) > maxNameLength) {
		errs = append(errs, FieldError{"lastName", "Last name must be between 1 and 50 characters"})
	}
	if req.Phone != nil && !phonePattern.MatchString(*req.Phone) {
		errs = append(errs, FieldError{"phone", "Please provide a valid phone number"})
	}

	return errs
}
