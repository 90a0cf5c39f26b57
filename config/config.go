package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"talk2order/internal/application"
)

type Config struct {
	Kiosk    KioskConfig    `yaml:"kiosk"`
	MenuFile string         `yaml:"menu_file"`
	Audio    AudioConfig    `yaml:"audio"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Speech   SpeechConfig   `yaml:"speech"`
	Display  DisplayConfig  `yaml:"display"`
	Pushover PushoverConfig `yaml:"pushover"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

type KioskConfig struct {
	IncludeDiningChoice bool   `yaml:"include_dining_choice"`
	RepeatSessions      bool   `yaml:"repeat_sessions"`
	MaxAttempts         int    `yaml:"max_attempts"`
	ListenTimeout       string `yaml:"listen_timeout"`
}

type AudioConfig struct {
	Source     string `yaml:"source"`
	HTTPAddr   string `yaml:"http_addr"`
	FileDir    string `yaml:"file_dir"`
	SampleRate int    `yaml:"sample_rate"`
	AuthToken  string `yaml:"auth_token"`
}

type OpenAIConfig struct {
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Language string `yaml:"language"`
	STTModel string `yaml:"stt_model"`
	TTSModel string `yaml:"tts_model"`
	Voice    string `yaml:"voice"`
	Timeout  string `yaml:"timeout"`
}

// SpeechConfig controls spoken output. Without it the kiosk only renders.
type SpeechConfig struct {
	Enabled bool `yaml:"enabled"`
}

type DisplayConfig struct {
	Mode string `yaml:"mode"`
	Addr string `yaml:"addr"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Title   string `yaml:"title"`
	Enabled bool   `yaml:"enabled"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Kiosk.ListenTimeout == "" {
		c.Kiosk.ListenTimeout = "15s"
	}
	if c.Audio.Source == "" {
		c.Audio.Source = "http"
	}
	if c.Audio.HTTPAddr == "" {
		c.Audio.HTTPAddr = ":8080"
	}
	if c.Audio.FileDir == "" {
		c.Audio.FileDir = "./audio"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = application.DefaultAudioFormat().SampleRate
	}
	if c.OpenAI.Language == "" {
		c.OpenAI.Language = "en"
	}
	if c.OpenAI.STTModel == "" {
		c.OpenAI.STTModel = "whisper-1"
	}
	if c.OpenAI.TTSModel == "" {
		c.OpenAI.TTSModel = "tts-1"
	}
	if c.OpenAI.Voice == "" {
		c.OpenAI.Voice = "alloy"
	}
	if c.OpenAI.Timeout == "" {
		c.OpenAI.Timeout = "30s"
	}
	if c.Display.Mode == "" {
		c.Display.Mode = "console"
	}
	if c.Display.Addr == "" {
		c.Display.Addr = ":8081"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9090"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Kiosk.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("kiosk.max_attempts must not be negative, got %d", c.Kiosk.MaxAttempts))
	}
	if d, err := time.ParseDuration(c.Kiosk.ListenTimeout); err != nil {
		errs = append(errs, fmt.Errorf("kiosk.listen_timeout: %w", err))
	} else if d <= 0 {
		errs = append(errs, fmt.Errorf("kiosk.listen_timeout must be positive, got %s", d))
	}
	if _, err := time.ParseDuration(c.OpenAI.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("openai.timeout: %w", err))
	}

	switch c.Audio.Source {
	case "http", "file", "microphone", "console":
	default:
		errs = append(errs, fmt.Errorf("audio.source: unknown source %q", c.Audio.Source))
	}
	if c.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate))
	}

	switch c.Display.Mode {
	case "console", "websocket", "both":
	default:
		errs = append(errs, fmt.Errorf("display.mode: unknown mode %q", c.Display.Mode))
	}

	if c.Audio.Source == "microphone" && c.OpenAI.APIKey == "" {
		errs = append(errs, errors.New("openai.api_key is required to transcribe microphone audio"))
	}
	if c.Speech.Enabled && c.OpenAI.APIKey == "" {
		errs = append(errs, errors.New("openai.api_key is required when speech is enabled"))
	}

	return errors.Join(errs...)
}

func (k KioskConfig) ListenTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(k.ListenTimeout)
	return d
}

func (o OpenAIConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(o.Timeout)
	return d
}
