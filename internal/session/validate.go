package session

import "regexp"

const minPasswordLength = 8

var emailShape = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// SignupForm is the full signup payload. The last five fields are optional.
type SignupForm struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	DateOfBirth     string `json:"dateOfBirth,omitempty"`
	Address         string `json:"address,omitempty"`
	City            string `json:"city,omitempty"`
	Province        string `json:"province,omitempty"`
	PostalCode      string `json:"postalCode,omitempty"`
}

// ValidateSignup checks the form before any network call. It returns nil
// when the form is acceptable.
func ValidateSignup(form SignupForm) *ValidationError {
	var fields []FieldError

	if form.FirstName == "" {
		fields = append(fields, FieldError{"firstName", "First name is required"})
	}
	if form.LastName == "" {
		fields = append(fields, FieldError{"lastName", "Last name is required"})
	}
	if form.Email == "" {
		fields = append(fields, FieldError{"email", "Email is required"})
	} else if !emailShape.MatchString(form.Email) {
		fields = append(fields, FieldError{"email", "Please enter a valid email address"})
	}
	if form.Phone == "" {
		fields = append(fields, FieldError{"phone", "Phone number is required"})
	}
	if form.Password == "" {
		fields = append(fields, FieldError{"password", "Password is required"})
	} else if len(form.Password) < minPasswordLength {
		fields = append(fields, FieldError{"password", "Password must be at least 8 characters long"})
	}
	if form.Password != form.ConfirmPassword {
		fields = append(fields, FieldError{"confirmPassword", "Passwords do not match"})
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
