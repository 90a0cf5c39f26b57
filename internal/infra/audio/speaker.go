package audio

import (
	"context"
	"fmt"
)

// Synthesizer turns text into raw 16-bit mono PCM.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	SampleRate() int
}

// Player plays raw PCM samples on an output device.
type Player interface {
	Play(ctx context.Context, samples []int16, sampleRate int) error
}

// Speaker voices kiosk prompts by synthesizing and then playing them. It
// implements application.Speaker.
type Speaker struct {
	synth  Synthesizer
	player Player
}

func NewSpeaker(synth Synthesizer, player Player) *Speaker {
	return &Speaker{synth: synth, player: player}
}

func (s *Speaker) Speak(ctx context.Context, text string) error {
	pcm, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("synthesizing: %w", err)
	}
	if err := s.player.Play(ctx, DecodePCM16(pcm), s.synth.SampleRate()); err != nil {
		return fmt.Errorf("playing: %w", err)
	}
	return nil
}
