package application

import (
	"context"
	"errors"
	"fmt"

	"talk2order/internal/observe"
)

// ErrAttemptsExhausted is returned when Options.MaxAttempts is set and a step
// fails that many times in a row. With the default of zero the loop only
// ends on a decision or on context cancellation.
var ErrAttemptsExhausted = errors.New("capture attempts exhausted")

// matchFunc inspects a normalized utterance and returns the outcome label to
// record, or false when the utterance means nothing for the step.
type matchFunc func(utterance string) (outcome string, ok bool)

// captureStep names a step and the reprompt spoken after a failed attempt.
type captureStep struct {
	name     string
	reprompt string
	// repromptOnFailure also speaks the reprompt after transcription
	// failures. Otherwise those only show their failure message.
	repromptOnFailure bool
}

// capture listens until match accepts an utterance.
func (s *session) capture(ctx context.Context, cs captureStep, match matchFunc) error {
	step := cs.name
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		outcome, err := s.attempt(ctx, match)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.kiosk.metrics.RecordCaptureAttempt(ctx, step, outcome)

		if err == nil {
			s.logger.Info("step decided", "step", step, "attempt", attempt, "outcome", outcome)
			return nil
		}

		s.logger.Info("capture attempt failed",
			"step", step,
			"attempt", attempt,
			"outcome", outcome,
			"error", err,
		)

		if !retryable(err) {
			return fmt.Errorf("%s: %w", step, err)
		}

		unmatched := errors.Is(err, ErrNoIntentMatch)
		if !unmatched {
			s.show(MessageError, FailureMessage(err))
		}

		if limit := s.kiosk.opts.MaxAttempts; limit > 0 && attempt >= limit {
			return fmt.Errorf("%s: %w after %d attempts: %w", step, ErrAttemptsExhausted, attempt, err)
		}

		if unmatched || cs.repromptOnFailure {
			s.say(ctx, MessageWarning, cs.reprompt)
		}
	}
}

func (s *session) attempt(ctx context.Context, match matchFunc) (string, error) {
	raw, err := s.kiosk.listener.Transcribe(ctx, "")
	if err != nil {
		return failureOutcome(err), err
	}

	utterance, ok := Normalize(raw)
	if !ok {
		return observe.OutcomeUnintelligible, ErrUnintelligible
	}

	outcome, ok := match(utterance)
	if !ok {
		return observe.OutcomeNoMatch, fmt.Errorf("%w: %q", ErrNoIntentMatch, utterance)
	}
	return outcome, nil
}
