//go:build !portaudio
// +build !portaudio

package audio

import "context"

type DevicePlayer struct{}

func NewDevicePlayer() *DevicePlayer {
	return &DevicePlayer{}
}

func (p *DevicePlayer) Play(_ context.Context, _ []int16, _ int) error {
	return errNoPortAudio
}
