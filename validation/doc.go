// Package validation checks request structs against `validate` tags with
// go-playground/validator and reports failures as INVALID_INPUT errors
// listing each offending field by its JSON name.
//
//	type RegisterRequest struct {
//	    Username string `json:"username" validate:"required,username"`
//	    Email    string `json:"email" validate:"required,email"`
//	}
//	if err := validation.Validate(req); err != nil { ... }
package validation
