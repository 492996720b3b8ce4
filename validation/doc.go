// Package validation runs struct-tag validation (go-playground/validator)
// over decoded payloads, so a response missing a required field is reported
// as a failure instead of yielding a half-filled value.
//
//	type User struct {
//	    ID   int    `json:"id" validate:"required"`
//	    Name string `json:"name" validate:"required"`
//	}
//	err := validation.Validate(user)
package validation
