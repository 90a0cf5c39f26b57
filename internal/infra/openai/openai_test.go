package openai_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"talk2order/internal/infra"
	"talk2order/internal/infra/openai"
)

func fastRetry() infra.RetryConfig {
	return infra.RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestTranscriptionClient_Transcribe(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header: %q", got)
		}
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text":"a big mac please"}`)
	}))
	defer srv.Close()

	client := openai.NewTranscriptionClient("test-key", "whisper-1", "en",
		openai.WithBaseURL(srv.URL+"/v1/"),
		openai.WithRetry(fastRetry()),
	)

	text, err := client.Transcribe(context.Background(), []byte("RIFF"))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "a big mac please" {
		t.Errorf("got %q", text)
	}
	if calls.Load() != 2 {
		t.Errorf("calls: got %d, want 2", calls.Load())
	}
}

func TestTranscriptionClient_UnauthorizedIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	client := openai.NewTranscriptionClient("bad-key", "", "",
		openai.WithBaseURL(srv.URL+"/v1/"),
		openai.WithRetry(fastRetry()),
	)

	if _, err := client.Transcribe(context.Background(), []byte("RIFF")); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls: got %d, want 1", calls.Load())
	}
}

func TestSpeechClient_Synthesize(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/speech") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"response_format":"pcm"`) {
			t.Errorf("request should ask for pcm: %s", body)
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(pcm)
	}))
	defer srv.Close()

	client := openai.NewSpeechClient("test-key", "tts-1", "alloy",
		openai.WithBaseURL(srv.URL+"/v1/"),
		openai.WithRetry(fastRetry()),
	)

	got, err := client.Synthesize(context.Background(), "Please say your burgers.")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(got) != string(pcm) {
		t.Errorf("got %v, want %v", got, pcm)
	}
	if client.SampleRate() != openai.SpeechSampleRate {
		t.Errorf("sample rate: %d", client.SampleRate())
	}
}
