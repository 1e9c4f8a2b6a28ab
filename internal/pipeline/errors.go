package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyWord           = errors.New("word is required")
	ErrEmptyInstructions   = errors.New("instructions are required")
	ErrBusy                = errors.New("another action is still in progress")
	ErrInvalidTransition   = errors.New("action is not available at this step")
	ErrIncompleteSelection = errors.New("every chunk needs exactly one selected anchor")
	ErrNoImage             = errors.New("no image has been generated yet")
	ErrUnknownChunk        = errors.New("unknown chunk")
	ErrUnknownCandidate    = errors.New("anchor is not a candidate for this chunk")
	ErrSessionNotFound     = errors.New("creation session not found")
	ErrEnhancementLimit    = errors.New("image prompt was rewritten too many times, try different instructions")
	ErrEmptyImageResult    = errors.New("image service returned neither an image nor a prompt")
)

// UpstreamError reports a failed call to an external collaborator. Its
// message is the collaborator's own description, unchanged.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string { return e.Err.Error() }

func (e *UpstreamError) Unwrap() error { return e.Err }

// TransitionError names the action and step for a rejected transition.
type TransitionError struct {
	Action string
	Step   Step
	Err    error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s at step %s: %v", e.Action, e.Step, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }
