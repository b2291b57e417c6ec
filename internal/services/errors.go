package services

import (
	"errors"
	"strings"
)

var (
	// ErrDuplicateEmail signals that the email already belongs to an identity.
	ErrDuplicateEmail = errors.New("identity: email already registered")
	// ErrInvalidRequest signals that no identity holds the supplied recovery id.
	ErrInvalidRequest = errors.New("identity: unknown recovery id")
	// errRecoveryConsumed marks a recovery token whose embedded recovery id is
	// no longer current, typically because a completed reset rotated it.
	errRecoveryConsumed = errors.New("identity: recovery id no longer current")
)

// ValidationError is a user-correctable failure. It carries one message per
// failed rule and echoes the submitted non-secret fields so the caller can
// redisplay the form. Passwords are never captured here.
type ValidationError struct {
	Messages []string
	Name     string
	Email    string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Messages) == 0 {
		return "validation failed"
	}
	return strings.Join(e.Messages, "; ")
}

// TokenRejectedError wraps the codec-level reason a token was refused. The
// reason is available to logs and tests via Unwrap; user-facing layers must
// render only a generic message.
type TokenRejectedError struct {
	Reason error
}

func (e *TokenRejectedError) Error() string {
	if e == nil || e.Reason == nil {
		return "token rejected"
	}
	return "token rejected: " + e.Reason.Error()
}

func (e *TokenRejectedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Reason
}

// NotificationError reports that the outbound mail collaborator failed. The
// workflow state is unchanged; retrying is the caller's decision.
type NotificationError struct {
	Err error
}

func (e *NotificationError) Error() string {
	if e == nil || e.Err == nil {
		return "notification failed"
	}
	return "notification failed: " + e.Err.Error()
}

func (e *NotificationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// PartialFailureError reports that a multi-step completion committed its first
// step but not the rest. The caller must be told to retry; treating this as
// success would leave an updated password bound to a stale recovery id.
type PartialFailureError struct {
	Err error
}

func (e *PartialFailureError) Error() string {
	if e == nil || e.Err == nil {
		return "partial failure"
	}
	return "partial failure: " + e.Err.Error()
}

func (e *PartialFailureError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
