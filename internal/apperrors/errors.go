package apperrors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AppError carries both the operator-facing description of a failure and the
// reply text shown to the sender in chat.
type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

func (e *AppError) Cause() error {
	return e.Unwrap()
}

// NewConflict reports a duplicate registration attempt. The registration gate
// should make this unreachable, so it surfaces as an internal failure.
func NewConflict(cause error) *AppError {
	return &AppError{
		Code:        "E409",
		Message:     fmt.Sprintf("conflict: %v", cause),
		UserMessage: "Maaf, terjadi kesalahan saat menyimpan data Anda.",
		Severity:    SeverityMedium,
		Retryable:   false,
		cause:       cause,
	}
}

// NewStoreUnavailable reports a persistence-layer failure.
func NewStoreUnavailable(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E200",
		Message:     fmt.Sprintf("store unavailable: %s", underlyingMsg),
		UserMessage: "❌ Terjadi kesalahan, coba beberapa saat lagi.",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

// NewExternalError reports a failure of an out-of-process collaborator such
// as the chart renderer or the outbound queue.
func NewExternalError(name string, cause error) *AppError {
	return &AppError{
		Code:        "E300",
		Message:     fmt.Sprintf("external collaborator error: %s", name),
		UserMessage: "❌ Layanan sedang sibuk, coba beberapa saat lagi.",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}
