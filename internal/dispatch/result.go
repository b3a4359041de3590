package dispatch

import "fmt"

// Result is the uniform outcome handed back to the boundary layer. The
// boundary acknowledges the webhook regardless; Err only drives logging and,
// for view submissions, the field-error response.
type Result struct {
	OK  bool
	Err error
}

// Success returns an ok result.
func Success() Result {
	return Result{OK: true}
}

// Failure returns a failed result carrying the cause.
func Failure(err error) Result {
	return Result{OK: false, Err: err}
}

// FieldErrors is a modal validation failure keyed by block id. The boundary
// renders it as the platform's structured errors response.
type FieldErrors struct {
	Errors map[string]string
}

// Error implements the error interface.
func (e *FieldErrors) Error() string {
	return fmt.Sprintf("view submission rejected: %d field error(s)", len(e.Errors))
}
