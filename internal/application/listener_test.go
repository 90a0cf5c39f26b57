package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"talk2order/internal/application"
)

type mockAudioSource struct {
	captures []application.Capture
	err      error
	block    bool
	index    int
}

func (m *mockAudioSource) Start(_ context.Context) error { return nil }
func (m *mockAudioSource) Stop() error                   { return nil }
func (m *mockAudioSource) Name() string                  { return "mock" }

func (m *mockAudioSource) NextCapture(ctx context.Context) (application.Capture, error) {
	if m.block {
		<-ctx.Done()
		return application.Capture{}, ctx.Err()
	}
	if m.err != nil {
		return application.Capture{}, m.err
	}
	c := m.captures[m.index]
	m.index++
	return c, nil
}

type mockSTT struct {
	text string
	err  error
	got  []byte
}

func (m *mockSTT) Transcribe(_ context.Context, audio []byte) (string, error) {
	m.got = audio
	return m.text, m.err
}

func newListener(src application.AudioSource, stt application.SpeechToText, speaker application.Speaker, display application.Display) *application.VoiceListener {
	return application.NewVoiceListener(
		src,
		stt,
		speaker,
		display,
		50*time.Millisecond,
		nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestVoiceListener_Transcribe(t *testing.T) {
	tests := []struct {
		name    string
		source  *mockAudioSource
		stt     *mockSTT
		want    string
		wantErr error
	}{
		{
			name:   "text capture skips stt",
			source: &mockAudioSource{captures: []application.Capture{{Text: "big mac"}}},
			stt:    &mockSTT{err: errors.New("must not be called")},
			want:   "big mac",
		},
		{
			name:   "audio capture is transcribed",
			source: &mockAudioSource{captures: []application.Capture{{Audio: []byte("wav")}}},
			stt:    &mockSTT{text: "a large fries"},
			want:   "a large fries",
		},
		{
			name:    "listen timeout",
			source:  &mockAudioSource{block: true},
			stt:     &mockSTT{},
			wantErr: application.ErrListenTimeout,
		},
		{
			name:    "empty capture",
			source:  &mockAudioSource{captures: []application.Capture{{}}},
			stt:     &mockSTT{},
			wantErr: application.ErrUnintelligible,
		},
		{
			name:    "blank transcript",
			source:  &mockAudioSource{captures: []application.Capture{{Audio: []byte("wav")}}},
			stt:     &mockSTT{text: "  "},
			wantErr: application.ErrUnintelligible,
		},
		{
			name:    "stt failure",
			source:  &mockAudioSource{captures: []application.Capture{{Audio: []byte("wav")}}},
			stt:     &mockSTT{err: errors.New("503")},
			wantErr: application.ErrTranscriptionService,
		},
		{
			name:    "source closed",
			source:  &mockAudioSource{err: application.ErrSourceClosed},
			stt:     &mockSTT{},
			wantErr: application.ErrSourceClosed,
		},
		{
			name:    "source failure",
			source:  &mockAudioSource{err: errors.New("audio channel closed")},
			stt:     &mockSTT{},
			wantErr: application.ErrTranscriptionService,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newListener(tt.source, tt.stt, &recordingSpeaker{}, &recordingDisplay{})

			got, err := l.Transcribe(context.Background(), "")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got error %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVoiceListener_PromptIsSpokenAndShown(t *testing.T) {
	speaker := &recordingSpeaker{}
	display := &recordingDisplay{}
	src := &mockAudioSource{captures: []application.Capture{{Text: "cash"}}}

	l := newListener(src, &mockSTT{}, speaker, display)
	if _, err := l.Transcribe(context.Background(), "Please say your payment method."); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	if len(speaker.lines) != 1 || speaker.lines[0] != "Please say your payment method." {
		t.Errorf("spoken: %v", speaker.lines)
	}
	if display.count(application.MessageText, "Please say your payment method.") != 1 {
		t.Errorf("prompt not rendered: %v", display.messages)
	}
}

func TestVoiceListener_CancelledContext(t *testing.T) {
	l := newListener(&mockAudioSource{block: true}, &mockSTT{}, &recordingSpeaker{}, &recordingDisplay{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Transcribe(ctx, "")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestFailureMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{application.ErrListenTimeout, "Listening timed out. Please try again."},
		{application.ErrUnintelligible, "Sorry, I could not understand your speech."},
		{application.ErrTranscriptionService, "Could not request results from the speech recognition service."},
	}
	for _, tt := range tests {
		if got := application.FailureMessage(tt.err); got != tt.want {
			t.Errorf("FailureMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
