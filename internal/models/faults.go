package models

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure. Presentation surfaces receive the
// kind via OnError so that they can phrase the failure to the user.
type Kind string

const (
	// Busy means a new trigger was rejected since a run is already active.
	Busy Kind = "busy"
	// NoActiveWindow means there was no capturable display or window.
	NoActiveWindow Kind = "no_active_window"
	// ExtractionUnavailable means the OCR engine or its language data is
	// missing. A configuration error, not retried.
	ExtractionUnavailable Kind = "extraction_unavailable"
	// ConnectionFailed means the LLM endpoint could not be reached or the
	// stream broke before completing.
	ConnectionFailed Kind = "connection_failed"
	// AuthFailed means the endpoint rejected the configured API key.
	AuthFailed Kind = "auth_failed"
	// MalformedStream means a stream chunk could not be parsed. Text
	// accumulated up to that point is preserved for display.
	MalformedStream Kind = "malformed_stream"
	// Timeout means the per-request timeout expired mid-stream.
	Timeout Kind = "timeout"
	// VoiceUnavailable means text-to-speech failed. Never fails a run.
	VoiceUnavailable Kind = "voice_unavailable"
	// Cancelled is the user-initiated terminal state, not a true error.
	Cancelled Kind = "cancelled"
)

// Fault is a classified pipeline error. Collaborator failures are wrapped
// into a Fault at the package boundary so that the engine can surface the
// originating kind without inspecting collaborator internals.
type Fault struct {
	Kind    Kind
	Message string
	Err     error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%v: %v: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%v: %v", f.Kind, f.Message)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// NewFault wraps err into a classified Fault.
func NewFault(kind Kind, message string, err error) *Fault {
	return &Fault{Kind: kind, Message: message, Err: err}
}

// Faultf creates a Fault with a formatted message and no cause.
func Faultf(kind Kind, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from err, unwrapping as needed. Returns false
// when err carries no Fault.
func KindOf(err error) (Kind, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind, true
	}
	return "", false
}
