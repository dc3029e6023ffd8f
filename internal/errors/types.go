package errors

import "errors"

var (
	ErrEngineUnreachable = errors.New("container engine unreachable")
	ErrEnumerationFailed = errors.New("engine enumeration failed")
	ErrStateFailed       = errors.New("state store operation failed")
	ErrConfigInvalid     = errors.New("configuration invalid")
	ErrDeleteFailed      = errors.New("deletion failed")
)

// ReaperError wraps a failure with user-facing context and a suggestion. The
// original error stays reachable through Unwrap for errors.Is checks.
type ReaperError struct {
	Type        error
	Context     string
	Cause       string
	Suggestion  string
	OriginalErr error
}

func (e *ReaperError) Error() string {
	return e.OriginalErr.Error()
}

func (e *ReaperError) Unwrap() error {
	return e.OriginalErr
}

func NewReaperError(errorType error, context, cause, suggestion string, originalErr error) *ReaperError {
	return &ReaperError{
		Type:        errorType,
		Context:     context,
		Cause:       cause,
		Suggestion:  suggestion,
		OriginalErr: originalErr,
	}
}

func NewEngineError(context, cause, suggestion string, originalErr error) *ReaperError {
	return NewReaperError(ErrEngineUnreachable, context, cause, suggestion, originalErr)
}

func NewEnumerationError(context, cause, suggestion string, originalErr error) *ReaperError {
	return NewReaperError(ErrEnumerationFailed, context, cause, suggestion, originalErr)
}

func NewStateError(context, cause, suggestion string, originalErr error) *ReaperError {
	return NewReaperError(ErrStateFailed, context, cause, suggestion, originalErr)
}

func NewConfigError(context, cause, suggestion string, originalErr error) *ReaperError {
	return NewReaperError(ErrConfigInvalid, context, cause, suggestion, originalErr)
}

func NewDeleteError(context, cause, suggestion string, originalErr error) *ReaperError {
	return NewReaperError(ErrDeleteFailed, context, cause, suggestion, originalErr)
}
