package audio_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"talk2order/internal/application"
	"talk2order/internal/infra/audio"
)

func TestConsoleSource(t *testing.T) {
	source := audio.NewConsoleSource(strings.NewReader("a big mac\n\ncash\n"))
	ctx := context.Background()

	if err := source.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	want := []string{"a big mac", "", "cash"}
	for i, w := range want {
		c, err := source.NextCapture(ctx)
		if err != nil {
			t.Fatalf("capture %d: %v", i, err)
		}
		if c.Text != w {
			t.Errorf("capture %d: got %q, want %q", i, c.Text, w)
		}
	}

	if _, err := source.NextCapture(ctx); !errors.Is(err, application.ErrSourceClosed) {
		t.Errorf("after EOF: got %v, want ErrSourceClosed", err)
	}
}

func TestConsoleSource_Cancelled(t *testing.T) {
	source := audio.NewConsoleSource(blockingReader{})
	_ = source.Start(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := source.NextCapture(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

type blockingReader struct{}

func (blockingReader) Read(_ []byte) (int, error) {
	select {}
}
