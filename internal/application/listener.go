package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"talk2order/internal/observe"
)

// DefaultListenTimeout bounds a single listen.
const DefaultListenTimeout = 15 * time.Second

// Transcription failures. The dialogue re-prompts on all of them; they only
// differ in the message shown to the customer.
var (
	ErrListenTimeout        = errors.New("listening timed out")
	ErrUnintelligible       = errors.New("speech not understood")
	ErrTranscriptionService = errors.New("speech recognition service error")
)

// Transcriber produces one transcript per call. A non-empty prompt is spoken
// and shown before listening.
type Transcriber interface {
	Transcribe(ctx context.Context, prompt string) (string, error)
}

// FailureMessage is the customer-facing text for a transcription failure.
func FailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrListenTimeout):
		return "Listening timed out. Please try again."
	case errors.Is(err, ErrUnintelligible):
		return "Sorry, I could not understand your speech."
	default:
		return "Could not request results from the speech recognition service."
	}
}

// retryable reports whether a failed attempt should be re-prompted.
func retryable(err error) bool {
	return errors.Is(err, ErrListenTimeout) ||
		errors.Is(err, ErrUnintelligible) ||
		errors.Is(err, ErrTranscriptionService) ||
		errors.Is(err, ErrNoIntentMatch)
}

func failureOutcome(err error) string {
	switch {
	case errors.Is(err, ErrListenTimeout):
		return observe.OutcomeTimeout
	case errors.Is(err, ErrUnintelligible):
		return observe.OutcomeUnintelligible
	default:
		return observe.OutcomeServiceError
	}
}

// VoiceListener turns the next capture from an AudioSource into text.
type VoiceListener struct {
	audio   AudioSource
	stt     SpeechToText
	speaker Speaker
	display Display
	timeout time.Duration
	metrics *observe.Metrics
	logger  *slog.Logger
}

func NewVoiceListener(
	audio AudioSource,
	stt SpeechToText,
	speaker Speaker,
	display Display,
	timeout time.Duration,
	metrics *observe.Metrics,
	logger *slog.Logger,
) *VoiceListener {
	if timeout <= 0 {
		timeout = DefaultListenTimeout
	}
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &VoiceListener{
		audio:   audio,
		stt:     stt,
		speaker: speaker,
		display: display,
		timeout: timeout,
		metrics: metrics,
		logger:  logger,
	}
}

func (l *VoiceListener) Transcribe(ctx context.Context, prompt string) (string, error) {
	if prompt != "" {
		l.display.Render(Message{Kind: MessageText, Text: prompt})
		if err := l.speaker.Speak(ctx, prompt); err != nil {
			l.logger.Warn("speaking prompt", "error", err)
		}
	}

	start := time.Now()
	text, err := l.listen(ctx)
	l.metrics.TranscriptionDuration.Record(ctx, time.Since(start).Seconds())
	return text, err
}

func (l *VoiceListener) listen(ctx context.Context) (string, error) {
	listenCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	capture, err := l.audio.NextCapture(listenCtx)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrListenTimeout
		}
		if errors.Is(err, ErrSourceClosed) {
			return "", err
		}
		return "", fmt.Errorf("%w: capturing audio: %v", ErrTranscriptionService, err)
	}

	if capture.Empty() {
		return "", ErrUnintelligible
	}

	if capture.IsText() {
		l.logger.Info("received text utterance", "text", capture.Text)
		return capture.Text, nil
	}

	l.logger.Debug("received audio", "bytes", len(capture.Audio))

	text, err := l.stt.Transcribe(ctx, capture.Audio)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrTranscriptionService, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrUnintelligible
	}

	l.logger.Info("transcribed", "text", text)
	return text, nil
}
