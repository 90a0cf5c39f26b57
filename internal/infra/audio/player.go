//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// DevicePlayer writes PCM to the default output device.
type DevicePlayer struct{}

func NewDevicePlayer() *DevicePlayer {
	return &DevicePlayer{}
}

func (p *DevicePlayer) Play(ctx context.Context, samples []int16, sampleRate int) error {
	// Initialize and Terminate are reference counted by portaudio.
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}
	defer portaudio.Terminate()

	buffer := make([]int16, framesPerBuffer)

	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), len(buffer), buffer)
	if err != nil {
		return fmt.Errorf("opening output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("starting output stream: %w", err)
	}
	defer stream.Stop()

	for off := 0; off < len(samples); off += len(buffer) {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := copy(buffer, samples[off:])
		clear(buffer[n:])
		if err := stream.Write(); err != nil {
			return fmt.Errorf("writing output stream: %w", err)
		}
	}
	return nil
}
