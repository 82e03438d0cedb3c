// Package validation validates request payloads with struct tags
// (go-playground/validator) and path parameters programmatically. Failures
// are returned as *errors.AppError with per-field details.
//
//	type createRoom struct {
//	    Name     string `json:"name" validate:"required,max=100"`
//	    Capacity int    `json:"capacity" validate:"gte=0"`
//	}
//	if err := validation.Validate(req); err != nil { ... }
package validation
