package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"talk2order/internal/application"
)

// FileSource replays utterances dropped into a directory. Audio files are
// returned as recordings, .txt files as already-transcribed text. Each file is
// consumed once and renamed with a .processed suffix.
type FileSource struct {
	dir       string
	interval  time.Duration
	processed map[string]bool
	mu        sync.Mutex
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{
		dir:       dir,
		interval:  500 * time.Millisecond,
		processed: make(map[string]bool),
	}
}

func (f *FileSource) Name() string {
	return "file"
}

func (f *FileSource) Start(_ context.Context) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("creating capture dir: %w", err)
	}
	return nil
}

func (f *FileSource) Stop() error {
	return nil
}

func (f *FileSource) NextCapture(ctx context.Context) (application.Capture, error) {
	if c, ok, err := f.checkForNewFile(); err != nil || ok {
		return c, err
	}

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return application.Capture{}, ctx.Err()
		case <-ticker.C:
			c, ok, err := f.checkForNewFile()
			if err != nil {
				return application.Capture{}, err
			}
			if ok {
				return c, nil
			}
		}
	}
}

func (f *FileSource) checkForNewFile() (application.Capture, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return application.Capture{}, false, fmt.Errorf("reading dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		switch ext {
		case ".wav", ".mp3", ".m4a", ".webm", ".txt":
		default:
			continue
		}

		path := filepath.Join(f.dir, entry.Name())
		if f.processed[path] {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return application.Capture{}, false, fmt.Errorf("reading file %s: %w", path, err)
		}

		f.processed[path] = true
		_ = os.Rename(path, path+".processed")

		if ext == ".txt" {
			return application.Capture{Text: strings.TrimSpace(string(data))}, true, nil
		}
		return application.Capture{Audio: data}, true, nil
	}

	return application.Capture{}, false, nil
}
