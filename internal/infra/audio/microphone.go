//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gordonklaus/portaudio"

	"talk2order/internal/application"
)

const framesPerBuffer = 1024

type MicrophoneSource struct {
	stream *portaudio.Stream
	frame  []int16
	format application.AudioFormat
	logger *slog.Logger
}

func NewMicrophoneSource(format application.AudioFormat, logger *slog.Logger) *MicrophoneSource {
	format = pcm16(format)
	return &MicrophoneSource{
		format: format,
		logger: logger,
		frame:  make([]int16, framesPerBuffer*format.Channels),
	}
}

func (m *MicrophoneSource) Name() string {
	return "microphone"
}

// Start opens the input stream. The stream only runs inside NextCapture, so
// nothing is buffered while the kiosk is speaking.
func (m *MicrophoneSource) Start(_ context.Context) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(m.format.Channels, 0, float64(m.format.SampleRate), framesPerBuffer, m.frame)
	if err != nil {
		return fmt.Errorf("opening stream: %w", err)
	}
	m.stream = stream

	m.logger.Info("microphone ready", "sample_rate", m.format.SampleRate, "channels", m.format.Channels)
	return nil
}

func (m *MicrophoneSource) Stop() error {
	if m.stream != nil {
		_ = m.stream.Close()
	}
	return portaudio.Terminate()
}

// NextCapture records until the customer stops talking. Stream.Read blocks
// for one buffer, so cancellation is noticed between buffers.
func (m *MicrophoneSource) NextCapture(ctx context.Context) (application.Capture, error) {
	if err := m.stream.Start(); err != nil {
		return application.Capture{}, fmt.Errorf("starting stream: %w", err)
	}
	defer func() {
		if err := m.stream.Stop(); err != nil {
			m.logger.Warn("stopping stream", "error", err)
		}
	}()

	u := newUtterance(m.format.SampleRate * m.format.Channels)
	if err := record(ctx, m.stream.Read, m.frame, u, portaudio.InputOverflowed, m.logger); err != nil {
		return application.Capture{}, err
	}

	m.logger.Debug("utterance recorded", "samples", len(u.samples))
	return application.Capture{Audio: EncodeWAV(u.samples, m.format)}, nil
}
