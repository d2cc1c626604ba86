package api

import (
	"errors"
	"fmt"
)

type (
	// Step is one ordered stage of a workflow
	Step struct {
		Code StepCode `json:"code"`
		Name string   `json:"name,omitempty"`
	}

	// Workflow is an ordered definition of steps a workorder passes through
	Workflow struct {
		ID    WorkflowID `json:"id"`
		Name  string     `json:"name,omitempty"`
		Steps []*Step    `json:"steps"`
	}
)

var (
	ErrStepCodeRequired  = errors.New("step code is required")
	ErrDuplicateStepCode = errors.New("duplicate step code")
)

// Validate checks that every step has a code and that codes are unique
func (w *Workflow) Validate() error {
	seen := make(map[StepCode]bool, len(w.Steps))
	for _, s := range w.Steps {
		if s == nil || s.Code == "" {
			return ErrStepCodeRequired
		}
		if seen[s.Code] {
			return fmt.Errorf("%w: %s", ErrDuplicateStepCode, s.Code)
		}
		seen[s.Code] = true
	}
	return nil
}

// StepIndex returns the position of the step with the given code, or -1
func (w *Workflow) StepIndex(code StepCode) int {
	for i, s := range w.Steps {
		if s.Code == code {
			return i
		}
	}
	return -1
}
