package display

import "talk2order/internal/application"

// Multi renders every message on each of its displays in order.
type Multi []application.Display

func (m Multi) Render(msg application.Message) {
	for _, d := range m {
		d.Render(msg)
	}
}
