package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"testing"

	"talk2order/internal/application"
)

func TestEncodeWAV(t *testing.T) {
	samples := []int16{0, 1000, -1000, 32767}
	wav := EncodeWAV(samples, application.DefaultAudioFormat())

	if len(wav) != 44+len(samples)*2 {
		t.Fatalf("length: got %d", len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" || string(wav[36:40]) != "data" {
		t.Errorf("bad header: %q", wav[:44])
	}
	if rate := binary.LittleEndian.Uint32(wav[24:28]); rate != 16000 {
		t.Errorf("sample rate: got %d", rate)
	}

	if ch := binary.LittleEndian.Uint16(wav[22:24]); ch != 1 {
		t.Errorf("channels: got %d", ch)
	}
	if bits := binary.LittleEndian.Uint16(wav[34:36]); bits != 16 {
		t.Errorf("bit depth: got %d", bits)
	}

	decoded := DecodePCM16(wav[44:])
	for i := range samples {
		if decoded[i] != samples[i] {
			t.Errorf("sample %d: got %d, want %d", i, decoded[i], samples[i])
		}
	}
}

func frameOf(n int, v int16) []int16 {
	f := make([]int16, n)
	for i := range f {
		f[i] = v
	}
	return f
}

func TestUtterance(t *testing.T) {
	const rate = 1000

	t.Run("ends after trailing silence", func(t *testing.T) {
		u := newUtterance(rate)
		if u.add(frameOf(500, 0)) {
			t.Fatal("leading silence must not end the utterance")
		}
		if u.add(frameOf(500, 4000)) {
			t.Fatal("speech must not end the utterance")
		}
		if u.add(frameOf(500, 10)) {
			t.Fatal("half the trailing silence is not enough")
		}
		if !u.add(frameOf(500, -10)) {
			t.Fatal("full trailing silence should end the utterance")
		}
		if len(u.samples) != 1500 {
			t.Errorf("recorded samples: got %d, want 1500", len(u.samples))
		}
	})

	t.Run("caps length", func(t *testing.T) {
		u := newUtterance(rate)
		done := false
		for i := 0; i < 20 && !done; i++ {
			done = u.add(frameOf(1000, 3000))
		}
		if !done || len(u.samples) != 10*rate {
			t.Errorf("done=%v samples=%d", done, len(u.samples))
		}
	})
}

func TestEncodeWAV_UsesFormat(t *testing.T) {
	tests := []struct {
		name      string
		format    application.AudioFormat
		rate      uint32
		channels  uint16
		byteRate  uint32
		blockSize uint16
	}{
		{"stereo 44.1k", application.AudioFormat{SampleRate: 44100, Channels: 2, BitDepth: 16}, 44100, 2, 176400, 4},
		{"zero value falls back to default", application.AudioFormat{}, 16000, 1, 32000, 2},
		{"bit depth pinned to samples", application.AudioFormat{SampleRate: 8000, Channels: 1, BitDepth: 24}, 8000, 1, 16000, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wav := EncodeWAV([]int16{1, 2, 3, 4}, tt.format)

			if got := binary.LittleEndian.Uint16(wav[22:24]); got != tt.channels {
				t.Errorf("channels: got %d, want %d", got, tt.channels)
			}
			if got := binary.LittleEndian.Uint32(wav[24:28]); got != tt.rate {
				t.Errorf("sample rate: got %d, want %d", got, tt.rate)
			}
			if got := binary.LittleEndian.Uint32(wav[28:32]); got != tt.byteRate {
				t.Errorf("byte rate: got %d, want %d", got, tt.byteRate)
			}
			if got := binary.LittleEndian.Uint16(wav[32:34]); got != tt.blockSize {
				t.Errorf("block align: got %d, want %d", got, tt.blockSize)
			}
			if got := binary.LittleEndian.Uint16(wav[34:36]); got != 16 {
				t.Errorf("bit depth: got %d", got)
			}
		})
	}
}

var errOverflow = errors.New("input overflowed")

func TestRecord_KeepsFrameOnOverflow(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	const rate = 1000

	// Speech arrives in the overflowed read, then a second of silence.
	reads := []struct {
		value int16
		err   error
	}{
		{4000, errOverflow},
		{0, nil},
		{0, nil},
	}
	frame := make([]int16, 500)
	i := 0
	read := func() error {
		r := reads[i]
		i++
		for j := range frame {
			frame[j] = r.value
		}
		return r.err
	}

	u := newUtterance(rate)
	if err := record(context.Background(), read, frame, u, errOverflow, logger); err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(u.samples) != 1500 {
		t.Fatalf("recorded samples: got %d, want 1500", len(u.samples))
	}
	if u.samples[0] != 4000 {
		t.Errorf("overflowed frame dropped: first sample %d", u.samples[0])
	}
}

func TestRecord_FailsOnOtherErrors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errDevice := errors.New("device unplugged")

	read := func() error { return errDevice }
	err := record(context.Background(), read, make([]int16, 10), newUtterance(1000), errOverflow, logger)
	if !errors.Is(err, errDevice) {
		t.Fatalf("expected device error, got %v", err)
	}
}

func TestRecord_StopsOnCancel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	read := func() error {
		t.Fatal("read after cancel")
		return nil
	}
	err := record(ctx, read, make([]int16, 10), newUtterance(1000), errOverflow, logger)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
