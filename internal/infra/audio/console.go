package audio

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"talk2order/internal/application"
)

// ConsoleSource treats each line read from r as a typed utterance.
type ConsoleSource struct {
	r     io.Reader
	lines chan string
	errs  chan error
	once  sync.Once
}

func NewConsoleSource(r io.Reader) *ConsoleSource {
	return &ConsoleSource{
		r:     r,
		lines: make(chan string),
		errs:  make(chan error, 1),
	}
}

func (c *ConsoleSource) Name() string {
	return "console"
}

func (c *ConsoleSource) Start(_ context.Context) error {
	c.once.Do(func() {
		go c.scan()
	})
	return nil
}

func (c *ConsoleSource) scan() {
	scanner := bufio.NewScanner(c.r)
	for scanner.Scan() {
		c.lines <- scanner.Text()
	}
	if err := scanner.Err(); err != nil {
		c.errs <- fmt.Errorf("reading console: %w", err)
	}
	close(c.lines)
}

// Stop is a no-op; the scanner goroutine ends when its reader does.
func (c *ConsoleSource) Stop() error {
	return nil
}

func (c *ConsoleSource) NextCapture(ctx context.Context) (application.Capture, error) {
	select {
	case <-ctx.Done():
		return application.Capture{}, ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			select {
			case err := <-c.errs:
				return application.Capture{}, err
			default:
				return application.Capture{}, application.ErrSourceClosed
			}
		}
		// A blank line stays empty so it reads as unintelligible.
		return application.Capture{Text: line}, nil
	}
}
