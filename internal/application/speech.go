package application

import (
	"context"
	"fmt"
)

type SpeechToText interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// NoopSTT is used with text-only sources (console, HTTP /text).
// It returns an error if called with actual audio data.
type NoopSTT struct{}

func (n *NoopSTT) Transcribe(ctx context.Context, audio []byte) (string, error) {
	return "", fmt.Errorf("speech-to-text not configured: set openai.api_key to enable audio transcription")
}

// Speaker reads a line aloud to the customer. Callers never abort the
// dialogue on a Speak error.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

type NoopSpeaker struct{}

func (n *NoopSpeaker) Speak(_ context.Context, _ string) error {
	return nil
}
