// Package stt holds the transcription boundary: one synchronous request
// per finalized recording, optionally biased by a vocabulary hint.
package stt

import (
	"context"
	"fmt"

	"github.com/voxtype/voxtype/snd"
)

// Result is the transcription of one clip.
type Result struct {
	Text     string
	Provider string
}

// Transcriber turns a finalized clip into text. Implementations serialize
// the audio to their provider's wire format and issue a single request; no
// retry logic lives at this boundary.
type Transcriber interface {
	Transcribe(ctx context.Context, clip snd.Clip, hint string) (Result, error)
}

// RequestError is a failed provider request: network, auth, or a
// provider-reported error. The session surfaces it and returns to idle;
// the user may simply re-trigger.
type RequestError struct {
	Provider string
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s transcription request failed: %v", e.Provider, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
