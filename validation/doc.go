// Package validation checks request input and reports failures as
// errors.AppError values with per-field details.
//
// Request bodies use struct tags (go-playground/validator); field names in
// errors are the JSON names:
//
//	type sendRequest struct {
//	    RecipientID string `json:"recipientId" validate:"required,max=64"`
//	    Body        string `json:"body" validate:"notblank,max=4000"`
//	}
//	if err := validation.Validate(req); err != nil { ... }
//
// Query and path parameters use the collecting Validator:
//
//	v := validation.New().Required("with", with).Range("limit", limit, 1, 200)
//	if appErr := v.Validate(); appErr != nil { ... }
package validation
