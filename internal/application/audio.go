package application

import (
	"context"
	"errors"
)

// ErrSourceClosed means the source will yield no more captures.
var ErrSourceClosed = errors.New("audio source closed")

// AudioSource yields one customer utterance per call, either as recorded
// audio or as text typed or relayed by the source.
type AudioSource interface {
	Start(ctx context.Context) error
	Stop() error
	NextCapture(ctx context.Context) (Capture, error)
	Name() string
}

type Capture struct {
	Audio []byte
	Text  string
}

func (c Capture) IsText() bool {
	return c.Text != ""
}

func (c Capture) Empty() bool {
	return c.Text == "" && len(c.Audio) == 0
}

// AudioFormat describes the PCM a source records. Microphone captures are
// encoded as WAV with this rate and channel count.
type AudioFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

func DefaultAudioFormat() AudioFormat {
	return AudioFormat{
		SampleRate: 16000,
		Channels:   1,
		BitDepth:   16,
	}
}
