// ABOUTME: Error types for journal reads and writes.
// ABOUTME: RemoteQueryError marks failed queries, RemoteMutationError marks failed transactions.
package journal

import (
	"errors"
	"fmt"

	"github.com/2389-research/chainjournal/internal/querycache"
)

// RemoteQueryError wraps a failed read. It is carried in Query.Err, never panicked.
type RemoteQueryError struct {
	Key querycache.Key
	Err error
}

func (e *RemoteQueryError) Error() string {
	return fmt.Sprintf("query %s failed: %v", e.Key, e.Err)
}

func (e *RemoteQueryError) Unwrap() error {
	return e.Err
}

// RemoteMutationError wraps a failed state-changing call.
type RemoteMutationError struct {
	Operation string
	Err       error
}

func (e *RemoteMutationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *RemoteMutationError) Unwrap() error {
	return e.Err
}

// FailureMessage returns the user-facing text for a failed mutation. It is the
// same text carried by the error notification.
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}
	var merr *RemoteMutationError
	if errors.As(err, &merr) {
		err = merr.Err
	}
	return errorPrefix + err.Error()
}
