// internal/common/errors/errors.go

// Package errors provides the standardized error taxonomy shared by the HTTP
// intake and the workflow workers, plus its mapping to BPMN errors.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidFileType       ErrorCode = "INVALID_FILE_TYPE"
	ErrCodeFormValidationFailed  ErrorCode = "FORM_VALIDATION_FAILED"
	ErrCodeSubmissionInProgress  ErrorCode = "SUBMISSION_IN_PROGRESS"
	ErrCodeSubmissionFailed      ErrorCode = "SUBMISSION_FAILED"
	ErrCodeCSVReadFailed         ErrorCode = "CSV_READ_FAILED"
	ErrCodeDocumentCreateFailed  ErrorCode = "DOCUMENT_CREATE_FAILED"
	ErrCodeDuplicateDocument     ErrorCode = "DUPLICATE_DOCUMENT"
	ErrCodeProjectNotFound       ErrorCode = "PROJECT_NOT_FOUND"
	ErrCodeNotificationSendFail  ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInvalidJobVariables   ErrorCode = "INVALID_JOB_VARIABLES"
	ErrCodeInternal              ErrorCode = "INTERNAL_ERROR"
	ErrCodeExternalServiceFailed ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout               ErrorCode = "TIMEOUT_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the workflow engine.
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

// ToErrorVariables returns the variables attached to a failed or thrown job.
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

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidFileTypeError is raised when an attachment is not declared as text/csv.
func NewInvalidFileTypeError(contentType string) *StandardError {
	return newError(ErrCodeInvalidFileType, "Please upload a CSV file",
		fmt.Sprintf("contentType: %s", contentType), false)
}

// NewFormValidationFailedError reports failed form constraints.
func NewFormValidationFailedError(details string) *StandardError {
	return newError(ErrCodeFormValidationFailed, "Form validation failed", details, false)
}

// NewSubmissionInProgressError reports an overlapping submit from the same user.
func NewSubmissionInProgressError(userID string) *StandardError {
	return newError(ErrCodeSubmissionInProgress, "A submission is already in progress",
		fmt.Sprintf("userId: %s", userID), false)
}

// NewSubmissionFailedError collapses every submit failure into one message.
func NewSubmissionFailedError(err error) *StandardError {
	return newError(ErrCodeSubmissionFailed, "Failed to submit project", errDetails(err), false)
}

// NewCSVReadFailedError reports an unreadable attachment.
func NewCSVReadFailedError(err error) *StandardError {
	return newError(ErrCodeCSVReadFailed, "Failed to read historical data", errDetails(err), false)
}

// NewDocumentCreateFailedError is a retryable persistence failure.
func NewDocumentCreateFailedError(err error) *StandardError {
	return newError(ErrCodeDocumentCreateFailed, "Document store write failed", errDetails(err), true)
}

// NewDuplicateDocumentError reports an id collision in the document store.
func NewDuplicateDocumentError(documentID string) *StandardError {
	return newError(ErrCodeDuplicateDocument, "Document already exists",
		fmt.Sprintf("documentId: %s", documentID), false)
}

// NewProjectNotFoundError reports a missing project record.
func NewProjectNotFoundError(projectID string) *StandardError {
	return newError(ErrCodeProjectNotFound, "Project not found",
		fmt.Sprintf("projectId: %s", projectID), false)
}

// NewNotificationSendFailedError is a retryable notification failure.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFail, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, errDetails(err)), true)
}

// NewInvalidJobVariablesError reports job variables that do not decode.
func NewInvalidJobVariablesError(err error) *StandardError {
	return newError(ErrCodeInvalidJobVariables, "Invalid job variables", errDetails(err), false)
}

// NewExternalServiceError wraps a failing dependency.
func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalServiceFailed,
		fmt.Sprintf("External service '%s' error", service), errDetails(err), true)
}

// NewTimeoutError wraps a dependency timeout.
func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), errDetails(err), true)
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal codes to the codes modeled in the process.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidFileType:      "INVALID_FILE_TYPE",
	ErrCodeFormValidationFailed: "FORM_VALIDATION_FAILED",
	ErrCodeCSVReadFailed:        "CSV_READ_FAILED",
	ErrCodeDocumentCreateFailed: "DOCUMENT_CREATE_FAILED",
	ErrCodeDuplicateDocument:    "DUPLICATE_DOCUMENT",
	ErrCodeNotificationSendFail: "NOTIFICATION_SEND_FAILED",
	ErrCodeInvalidJobVariables:  "PARSE_ERROR",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDocumentCreateFailed,
		ErrCodeNotificationSendFail,
		ErrCodeExternalServiceFailed:
		return 3
	case ErrCodeTimeout:
		return 2
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError for the workflow engine.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
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
	case strings.Contains(codeStr, "FILE") || strings.Contains(codeStr, "CSV"):
		return "INGEST"
	case strings.Contains(codeStr, "DOCUMENT") || strings.Contains(codeStr, "NOT_FOUND"):
		return "STORAGE"
	case strings.Contains(codeStr, "SUBMISSION"):
		return "SUBMISSION"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
