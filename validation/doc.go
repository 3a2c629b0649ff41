// Package validation checks caller input before it reaches the auth service.
//
// Struct tag validation backs the HTTP request bodies:
//
//	type registerRequest struct {
//	    Email    string `json:"email" validate:"required,email"`
//	    Password string `json:"password" validate:"required"`
//	}
//	err := validation.Validate(req)
//
// Programmatic validation backs the CLI prompts:
//
//	err := validation.New().Required("username", name).Email("email", email).Err()
//
// Both return an INVALID_INPUT AppError whose details list every field.
package validation
