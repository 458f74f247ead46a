package api

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
)

var (
	// api errors
	ErrInvalidParams     = errors.New("invalid params")
	ErrInvalidDocumentID = errors.New("invalid document id")
	ErrDocumentNotFound  = errors.New("document not found or expired")
	ErrDocumentExpanded  = errors.New("document is expanded, collapse it first")
	ErrUnknownSample     = errors.New("unknown sample")
)

// ErrorField describes the problem with a single request field.
type ErrorField struct {
	FieldName    string `json:"field_name"`
	ErrorMessage string `json:"error_message"`
}

type ErrorResponse struct {
	Error  string       `json:"error"`
	Fields []ErrorField `json:"fields,omitempty"`
}

func NewErrorResponse(err error, fields ...ErrorField) ErrorResponse {
	return ErrorResponse{Error: err.Error(), Fields: fields}
}

var tagMessages = map[string]string{
	"required": "this field is required",
	"min":      "value is too short",
	"max":      "value is too long",
	"len":      "invalid length",
	"gte":      "must be greater than or equal to the allowed minimum",
	"lte":      "must be less than or equal to the allowed maximum",
	"gt":       "must be greater than the allowed minimum",
	"lt":       "must be less than the allowed maximum",
	"oneof":    "must be one of the allowed values",
	"uuid":     "invalid UUID format",
	"unique":   "values must be unique",
}

// ExtractErrorFields converts validation errors into human-readable fields.
// Any other error yields no fields.
func ExtractErrorFields(err error) []ErrorField {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	fields := make([]ErrorField, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := tagMessages[fe.Tag()]
		if !ok {
			msg = "invalid input"
		}

		fields = append(fields, ErrorField{FieldName: fe.Field(), ErrorMessage: msg})
	}

	return fields
}

func extractErrorFromBuffer(buf *bytes.Buffer) (*ErrorResponse, error) {
	var resp ErrorResponse
	if err := json.NewDecoder(buf).Decode(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
