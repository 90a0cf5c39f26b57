package openai

import (
	"context"
	"fmt"
	"io"

	oai "github.com/openai/openai-go"

	"talk2order/internal/infra"
)

// SpeechSampleRate is the rate of the raw PCM returned by the speech endpoint
// (16-bit little-endian mono).
const SpeechSampleRate = 24000

// SpeechClient synthesizes prompts as raw PCM for local playback.
type SpeechClient struct {
	client oai.Client
	retry  infra.RetryConfig
	model  string
	voice  string
}

func NewSpeechClient(apiKey, model, voice string, opts ...Option) *SpeechClient {
	client, retry := newClient(apiKey, opts)
	if model == "" {
		model = string(oai.SpeechModelTTS1)
	}
	if voice == "" {
		voice = string(oai.AudioSpeechNewParamsVoiceAlloy)
	}
	return &SpeechClient{
		client: client,
		retry:  retry,
		model:  model,
		voice:  voice,
	}
}

func (c *SpeechClient) SampleRate() int {
	return SpeechSampleRate
}

func (c *SpeechClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	var pcm []byte

	err := infra.WithRetry(ctx, c.retry, func() error {
		resp, err := c.client.Audio.Speech.New(ctx, oai.AudioSpeechNewParams{
			Input:          text,
			Model:          oai.SpeechModel(c.model),
			Voice:          oai.AudioSpeechNewParamsVoice(c.voice),
			ResponseFormat: oai.AudioSpeechNewParamsResponseFormatPCM,
		})
		if err != nil {
			return classify("synthesizing speech", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading speech audio: %w", err)
		}
		pcm = data
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech: %w", err)
	}

	return pcm, nil
}
