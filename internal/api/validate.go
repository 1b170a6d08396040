package api

import "regexp"

// Server-side validation is intentionally stricter than the client's:
// bounded name lengths, a phone shape, and password complexity on top of the
// shared minimum length.
var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern    = regexp.MustCompile(`^[\+]?[0-9\-\(\)\s]+$`)
	hasLowerPattern = regexp.MustCompile(`[a-z]`)
	hasUpperPattern = regexp.MustCompile(`[A-Z]`)
	hasDigitPattern = regexp.MustCompile(`[0-9]`)
)

const maxNameLength = 50

func validateSignup(req SignupRequest) []FieldError {
	var errs []FieldError

	if req.FirstName == "" || len(req.FirstName) > maxNameLength {
		errs = append(errs, FieldError{"firstName", "First name is required and must be less than 50 characters"})
	}
	if req.LastName == "" || len(req.LastName) > maxNameLength {
		errs = append(errs, FieldError{"lastName", "Last name is required and must be less than 50 characters"})
	}
	if !emailPattern.MatchString(req.Email) {
		errs = append(errs, FieldError{"email", "Please provide a valid email address"})
	}
	if !phonePattern.MatchString(req.Phone) {
		errs = append(errs, FieldError{"phone", "Please provide a valid phone number"})
	}
	errs = append(errs, validatePassword("password", req.Password)...)
	if req.Password != req.ConfirmPassword {
		errs = append(errs, FieldError{"confirmPassword", "Passwords do not match"})
	}

	return errs
}

func validatePassword(field, password string) []FieldError {
	if len(password) < 8 {
		return []FieldError{{field, "Password must be at least 8 characters long"}}
	}
	if !hasLowerPattern.MatchString(password) ||
		!hasUpperPattern.MatchString(password) ||
		!hasDigitPattern.MatchString(password) {
		return []FieldError{{field, "Password must contain at least one uppercase letter, one lowercase letter, and one number"}}
	}
	return nil
}
