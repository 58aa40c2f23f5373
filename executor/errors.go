package executor

import (
	"errors"
	"fmt"
)

// ErrInvalidTask marks a task the engine refuses before doing any work.
var ErrInvalidTask = errors.New("invalid judge task")

// InfrastructureError reports a failure of the judging machinery itself
// (workspace, toolchain, container runtime), as opposed to a verdict about
// the submission.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("judge infrastructure failure: %s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}

func infraErr(op string, err error) error {
	return &InfrastructureError{Op: op, Err: err}
}
