// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Decree engine error codes.
const (
	// ConfigurationError: no template asset for a resolved classification.
	ErrCodeTemplateNotFound ErrorCode = "TEMPLATE_NOT_FOUND"
	// ParseError: tenure date unreadable. Degrades classification, never fatal.
	ErrCodeDateParseFailed ErrorCode = "DATE_PARSE_FAILED"
	// PersistenceError: decree record could not be written.
	ErrCodeDecreePersistFailed ErrorCode = "DECREE_PERSIST_FAILED"
	// RenderError: substitution, QR or packaging failed after persistence.
	ErrCodeDecreeRenderFailed ErrorCode = "DECREE_RENDER_FAILED"
	// BatchEmptyError: no candidate in the batch succeeded.
	ErrCodeBatchEmpty ErrorCode = "BATCH_EMPTY"

	ErrCodeInputValidationFailed    ErrorCode = "INPUT_VALIDATION_FAILED"
	ErrCodeArchiveUploadFailed      ErrorCode = "ARCHIVE_UPLOAD_FAILED"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeSequenceStoreFailed      ErrorCode = "SEQUENCE_STORE_FAILED"
	ErrCodeDecreeNotFound           ErrorCode = "DECREE_NOT_FOUND"
	ErrCodeWorkflowEngineFailed     ErrorCode = "WORKFLOW_ENGINE_FAILED"
	ErrCodeInternal                 ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error { return e.cause }

// Is matches another *StandardError by code, so sentinel values work with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	return ok && t.Code == e.Code
}

// Code extracts the ErrorCode from anywhere in err's chain.
func Code(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// Sentinels for errors.Is checks.
var (
	ErrTemplateNotFound    = &StandardError{Code: ErrCodeTemplateNotFound}
	ErrDecreePersistFailed = &StandardError{Code: ErrCodeDecreePersistFailed}
	ErrDecreeRenderFailed  = &StandardError{Code: ErrCodeDecreeRenderFailed}
	ErrBatchEmpty          = &StandardError{Code: ErrCodeBatchEmpty}
	ErrDecreeNotFound      = &StandardError{Code: ErrCodeDecreeNotFound}
)

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewTemplateNotFoundError names the template so an operator can upload it.
func NewTemplateNotFoundError(templateID string, cause error) *StandardError {
	details := fmt.Sprintf("templateId: %s", templateID)
	if cause != nil {
		details += ", error: " + cause.Error()
	}
	return &StandardError{
		Code:      ErrCodeTemplateNotFound,
		Message:   fmt.Sprintf("template %q is not available; upload it to the template store", templateID),
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"templateId": templateID},
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func NewDateParseFailedError(raw interface{}) *StandardError {
	return &StandardError{
		Code:      ErrCodeDateParseFailed,
		Message:   "date could not be parsed",
		Details:   fmt.Sprintf("value: %v", raw),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewDecreePersistFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDecreePersistFailed,
		Message:   "decree record could not be saved",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewDecreeRenderFailedError(step string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDecreeRenderFailed,
		Message:   fmt.Sprintf("document could not be produced (%s)", step),
		Details:   err.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"step": step},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewBatchEmptyError(attempted int) *StandardError {
	return &StandardError{
		Code:      ErrCodeBatchEmpty,
		Message:   "no decree in the batch was generated",
		Details:   fmt.Sprintf("attempted: %d", attempted),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInputValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputValidationFailed,
		Message:   "job input failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewArchiveUploadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeArchiveUploadFailed,
		Message:   "archive upload failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewSequenceStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSequenceStoreFailed,
		Message:   "decree sequence counter unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewWorkflowEngineError wraps a failed Zeebe command.
func NewWorkflowEngineError(operation string, retryable bool, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWorkflowEngineFailed,
		Message:   fmt.Sprintf("zeebe operation %q failed", operation),
		Details:   err.Error(),
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewDecreeNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDecreeNotFound,
		Message:   "decree not found",
		Details:   fmt.Sprintf("decreeId: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeWorkflowEngineFailed,
		ErrCodeArchiveUploadFailed,
		ErrCodeSequenceStoreFailed:
		return 3
	case ErrCodeDecreePersistFailed:
		return 1
	default:
		return 0 // business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"errorCategory":     GetErrorCategory(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "TEMPLATE"):
		return "CONFIGURATION"
	case strings.Contains(codeStr, "PARSE"):
		return "PARSE"
	case strings.Contains(codeStr, "PERSIST") || strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "SEQUENCE"):
		return "PERSISTENCE"
	case strings.Contains(codeStr, "RENDER") || strings.Contains(codeStr, "ARCHIVE"):
		return "RENDER"
	case strings.Contains(codeStr, "BATCH"):
		return "BATCH"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
