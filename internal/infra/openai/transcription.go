package openai

import (
	"bytes"
	"context"
	"fmt"

	oai "github.com/openai/openai-go"

	"talk2order/internal/infra"
)

// TranscriptionClient implements application.SpeechToText.
type TranscriptionClient struct {
	client   oai.Client
	retry    infra.RetryConfig
	model    string
	language string
}

func NewTranscriptionClient(apiKey, model, language string, opts ...Option) *TranscriptionClient {
	client, retry := newClient(apiKey, opts)
	if model == "" {
		model = string(oai.AudioModelWhisper1)
	}
	return &TranscriptionClient{
		client:   client,
		retry:    retry,
		model:    model,
		language: language,
	}
}

func (c *TranscriptionClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	var text string

	err := infra.WithRetry(ctx, c.retry, func() error {
		params := oai.AudioTranscriptionNewParams{
			File:  oai.File(bytes.NewReader(audio), "utterance.wav", "audio/wav"),
			Model: oai.AudioModel(c.model),
		}
		if c.language != "" {
			params.Language = oai.String(c.language)
		}

		resp, err := c.client.Audio.Transcriptions.New(ctx, params)
		if err != nil {
			return classify("transcribing audio", err)
		}
		text = resp.Text
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("openai transcription: %w", err)
	}

	return text, nil
}
