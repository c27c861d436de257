// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"fmt"
)

// Errors.
var (
	// ErrContractViolation marks a caller error: wrong-thread invocation,
	// rendering before the init handshake completed, or re-running a
	// completed init phase. Contract violations are raised immediately
	// and never retried or swallowed.
	ErrContractViolation = errors.New("render: contract violation")
)

// WrongThreadError reports a thread-affined operation invoked with a
// token asserting the wrong role.
type WrongThreadError struct {
	Op   string
	Want Role
	Got  Role
}

func (e *WrongThreadError) Error() string {
	return fmt.Sprintf("render: %s requires the %s thread, called from %s", e.Op, e.Want, e.Got)
}

// Unwrap makes the error match ErrContractViolation.
func (e *WrongThreadError) Unwrap() error { return ErrContractViolation }

// NotReadyError reports an operation invoked before the init phase it
// requires has completed.
type NotReadyError struct {
	Op    string
	State InitState
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("render: %s called in state %s", e.Op, e.State)
}

// Unwrap makes the error match ErrContractViolation.
func (e *NotReadyError) Unwrap() error { return ErrContractViolation }
