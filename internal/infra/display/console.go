// Package display renders kiosk messages for the customer: as plain text on a
// terminal, or as JSON pushed over websockets to a browser screen.
package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"talk2order/internal/application"
)

var prefixes = map[application.MessageKind]string{
	application.MessageHeader:    "## ",
	application.MessageSubheader: "### ",
	application.MessageSuccess:   "[ok] ",
	application.MessageWarning:   "[!] ",
	application.MessageError:     "[error] ",
}

// Console writes one block per message to w.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Render(msg application.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if msg.Kind == application.MessageTitle {
		bar := strings.Repeat("=", len(msg.Text))
		fmt.Fprintf(c.w, "\n%s\n%s\n%s\n", bar, msg.Text, bar)
		return
	}

	prefix := prefixes[msg.Kind]
	for _, line := range strings.Split(strings.TrimRight(msg.Text, "\n"), "\n") {
		fmt.Fprintf(c.w, "%s%s\n", prefix, line)
	}
}
