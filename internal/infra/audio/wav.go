package audio

import (
	"bytes"
	"encoding/binary"

	"talk2order/internal/application"
)

// pcm16 fills in a format for 16-bit samples: mono unless stated and the
// default rate when unset.
func pcm16(format application.AudioFormat) application.AudioFormat {
	def := application.DefaultAudioFormat()
	if format.SampleRate <= 0 {
		format.SampleRate = def.SampleRate
	}
	if format.Channels <= 0 {
		format.Channels = def.Channels
	}
	format.BitDepth = 16
	return format
}

// EncodeWAV wraps interleaved 16-bit PCM samples in a RIFF/WAVE container.
// Only the rate and channel count are taken from format.
func EncodeWAV(samples []int16, format application.AudioFormat) []byte {
	format = pcm16(format)
	var buf bytes.Buffer

	blockAlign := format.Channels * 2
	dataSize := len(samples) * 2
	buf.Grow(44 + dataSize)

	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, int32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, int32(16))
	_ = binary.Write(&buf, binary.LittleEndian, int16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, int16(format.Channels))
	_ = binary.Write(&buf, binary.LittleEndian, int32(format.SampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, int32(format.SampleRate*blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, int16(blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, int16(format.BitDepth))

	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, int32(dataSize))
	_ = binary.Write(&buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

// DecodePCM16 converts little-endian 16-bit PCM bytes to samples. A trailing
// odd byte is dropped.
func DecodePCM16(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[2*i:]))
	}
	return samples
}

// silent reports whether every sample stays within threshold of zero.
func silent(frame []int16, threshold int16) bool {
	for _, s := range frame {
		if s > threshold || s < -threshold {
			return false
		}
	}
	return true
}

// utterance accumulates microphone frames and decides when the customer has
// finished speaking: after some speech followed by trailingSilence samples
// of quiet, or once maxSamples have been captured.
type utterance struct {
	threshold       int16
	trailingSilence int
	maxSamples      int

	samples []int16
	heard   bool
	quiet   int
}

func newUtterance(sampleRate int) *utterance {
	return &utterance{
		threshold:       500,
		trailingSilence: sampleRate,
		maxSamples:      sampleRate * 10,
	}
}

// add appends a frame and reports whether the utterance is complete.
func (u *utterance) add(frame []int16) bool {
	if silent(frame, u.threshold) {
		if !u.heard {
			// Leading silence is not recorded.
			return false
		}
		u.quiet += len(frame)
	} else {
		u.heard = true
		u.quiet = 0
	}
	u.samples = append(u.samples, frame...)

	return (u.heard && u.quiet >= u.trailingSilence) || len(u.samples) >= u.maxSamples
}
