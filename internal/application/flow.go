package application

import (
	"errors"

	"talk2order/internal/domain"
)

// ErrInvalidTransition is returned when a session tries to leave the fixed
// stage sequence.
var ErrInvalidTransition = errors.New("invalid stage transition")

type StageKind int

const (
	StageGreeting StageKind = iota
	StageDiningChoice
	StageCategoryCapture
	StageConfirmation
	StagePaymentCapture
	StageClosing
)

func (k StageKind) String() string {
	switch k {
	case StageGreeting:
		return "Greeting"
	case StageDiningChoice:
		return "DiningChoice"
	case StageCategoryCapture:
		return "CategoryCapture"
	case StageConfirmation:
		return "Confirmation"
	case StagePaymentCapture:
		return "PaymentCapture"
	case StageClosing:
		return "Closing"
	default:
		return "Unknown"
	}
}

type Stage struct {
	Kind     StageKind
	Category string
}

func (s Stage) String() string {
	if s.Kind == StageCategoryCapture {
		return s.Kind.String() + "(" + s.Category + ")"
	}
	return s.Kind.String()
}

// Flow is the session state machine. Stages run in a fixed sequence; the only
// legal transition is to the next stage.
type Flow struct {
	stages []Stage
	pos    int
}

func NewFlow(catalog *domain.Catalog, includeDiningChoice bool) *Flow {
	stages := []Stage{{Kind: StageGreeting}}
	if includeDiningChoice {
		stages = append(stages, Stage{Kind: StageDiningChoice})
	}
	for _, cat := range catalog.Categories() {
		stages = append(stages, Stage{Kind: StageCategoryCapture, Category: cat.Name})
	}
	stages = append(stages,
		Stage{Kind: StageConfirmation},
		Stage{Kind: StagePaymentCapture},
		Stage{Kind: StageClosing},
	)
	return &Flow{stages: stages}
}

func (f *Flow) Current() Stage {
	return f.stages[f.pos]
}

// Next returns the stage after the current one; false in Closing.
func (f *Flow) Next() (Stage, bool) {
	if f.pos+1 >= len(f.stages) {
		return Stage{}, false
	}
	return f.stages[f.pos+1], true
}

func (f *Flow) CanTransition(to Stage) bool {
	next, ok := f.Next()
	return ok && next == to
}

func (f *Flow) Transition(to Stage) bool {
	if !f.CanTransition(to) {
		return false
	}
	f.pos++
	return true
}

func (f *Flow) Done() bool {
	return f.Current().Kind == StageClosing
}

// Stages returns the full sequence for this session.
func (f *Flow) Stages() []Stage {
	out := make([]Stage, len(f.stages))
	copy(out, f.stages)
	return out
}
