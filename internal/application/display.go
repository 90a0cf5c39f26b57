package application

type MessageKind string

const (
	MessageTitle     MessageKind = "title"
	MessageHeader    MessageKind = "header"
	MessageSubheader MessageKind = "subheader"
	MessageText      MessageKind = "text"
	MessageSuccess   MessageKind = "success"
	MessageWarning   MessageKind = "warning"
	MessageError     MessageKind = "error"
)

type Message struct {
	Kind MessageKind `json:"kind"`
	Text string      `json:"text"`
}

// Display shows kiosk output on screen. It has no feedback into the dialogue.
type Display interface {
	Render(msg Message)
}
