package model

import (
	"errors"
	"fmt"
)

// Generic messages shown when the remote store gave no usable detail.
const (
	FetchFailedMessage  = "Failed to load records. Check token, HS_OBJECT, and scopes."
	CreateFailedMessage = "Failed to create record. Verify property names and token scopes."
)

// RemoteError is the structured error body returned by the remote object store.
type RemoteError struct {
	StatusCode    int
	Status        string
	Message       string
	Category      string
	CorrelationID string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote store returned HTTP %d", e.StatusCode)
	}
	if e.Category != "" {
		return fmt.Sprintf("remote store returned HTTP %d (%s): %s", e.StatusCode, e.Category, e.Message)
	}
	return fmt.Sprintf("remote store returned HTTP %d: %s", e.StatusCode, e.Message)
}

// FetchError reports a failed list operation. Remote is set when the remote store
// answered with a non-success status; Err holds the underlying cause.
type FetchError struct {
	ObjectType string
	Remote     *RemoteError
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s records: %v", e.ObjectType, e.cause())
}

func (e *FetchError) Unwrap() error { return e.cause() }

func (e *FetchError) cause() error {
	if e.Err != nil {
		return e.Err
	}
	if e.Remote != nil {
		return e.Remote
	}
	return errors.New("unknown failure")
}

// CreateError reports a failed create operation. Remote is set when the remote
// store answered with a non-success status; Err holds the underlying cause.
type CreateError struct {
	ObjectType string
	Remote     *RemoteError
	Err        error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("create %s record: %v", e.ObjectType, e.cause())
}

func (e *CreateError) Unwrap() error { return e.cause() }

func (e *CreateError) cause() error {
	if e.Err != nil {
		return e.Err
	}
	if e.Remote != nil {
		return e.Remote
	}
	return errors.New("unknown failure")
}

// RemoteOf returns the structured remote error carried by err, or nil when the
// failure happened before the remote store answered.
func RemoteOf(err error) *RemoteError {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote
	}
	return nil
}

// UserMessage converts an adapter error into the text shown to the user: the
// remote store's message when it supplied one, otherwise a generic message for
// the failed operation. It returns "" for a nil error.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		if fetchErr.Remote != nil && fetchErr.Remote.Message != "" {
			return fetchErr.Remote.Message
		}
		return FetchFailedMessage
	}

	var createErr *CreateError
	if errors.As(err, &createErr) {
		if createErr.Remote != nil && createErr.Remote.Message != "" {
			return createErr.Remote.Message
		}
		return CreateFailedMessage
	}

	return "Unexpected error. Please try again."
}
