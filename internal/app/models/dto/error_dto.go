package dto

// ErrorCode represents standardized error codes
type ErrorCode string

// Standard error codes for the application
const (
	// Resource errors
	ErrorCodeResourceNotFound ErrorCode = "RES_001"
	ErrorCodeTableNotFound    ErrorCode = "RES_002"

	// Validation errors
	ErrorCodeValidationFailed ErrorCode = "VAL_001"
	ErrorCodeUnknownExamType  ErrorCode = "VAL_002"

	// Upstream errors
	ErrorCodeFetchFailed ErrorCode = "UPS_001"
	ErrorCodeParseFailed ErrorCode = "UPS_002"

	// Server errors
	ErrorCodeInternalServer ErrorCode = "SRV_001"
	ErrorCodeDatabaseError  ErrorCode = "SRV_002"
	ErrorCodeSchemaError    ErrorCode = "SRV_003"
)

// FieldError describes one invalid request field
type FieldError struct {
	Field   string `json:"field" example:"exam_type"`
	Message string `json:"message" example:"exam_type is required"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error  string       `json:"error" example:"exam table not found"`
	Code   ErrorCode    `json:"code" example:"RES_002"`
	Line   int          `json:"line,omitempty"`
	Fields []FieldError `json:"fields,omitempty"`
}

// NewErrorResponse creates an error body
func NewErrorResponse(code ErrorCode, message string) *ErrorResponse {
	return &ErrorResponse{Error: message, Code: code}
}

// WithFields attaches field level validation errors
func (e *ErrorResponse) WithFields(fields []FieldError) *ErrorResponse {
	e.Fields = fields
	return e
}

// WithLine attaches the offending line number of a parse failure
func (e *ErrorResponse) WithLine(line int) *ErrorResponse {
	e.Line = line
	return e
}
