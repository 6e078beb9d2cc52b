package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrUploadCancelled  = errors.New("upload cancelled")
	ErrSessionBusy      = errors.New("upload session already in flight")
	ErrSessionCompleted = errors.New("upload session already completed")
)

// ValidationError is a caller input that fails a pre-condition. It is raised before any I/O.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// TransferError is a failed network call during an upload.
// Message is what the operator sees; File is set when the failing file is known.
type TransferError struct {
	Phase   UploadPhase
	File    string
	Message string
	Err     error
}

func (e *TransferError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s %s: %s", e.Phase, e.File, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Phase, e.Message)
}

func (e *TransferError) Unwrap() error { return e.Err }

// ServerMessager is implemented by errors that carry a message supplied by the remote server.
type ServerMessager interface {
	ServerMessage() string
}

// ServerMessage extracts a server-supplied message from err's chain.
func ServerMessage(err error) (string, bool) {
	var sm ServerMessager
	if errors.As(err, &sm) {
		if msg := sm.ServerMessage(); msg != "" {
			return msg, true
		}
	}
	return "", false
}
