package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"talk2order/internal/domain"
)

type discardDisplay struct{}

func (discardDisplay) Render(Message) {}

func newTestSession(t *testing.T) *session {
	t.Helper()
	catalog := domain.DefaultCatalog()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	k := NewKiosk(catalog, nil, &NoopSpeaker{}, discardDisplay{}, &NoopNotifier{}, nil, logger, Options{})
	return &session{
		kiosk:  k,
		order:  domain.NewOrder(catalog),
		flow:   NewFlow(catalog, false),
		logger: logger,
	}
}

func TestSession_AdvanceRejectsSkippedStage(t *testing.T) {
	s := newTestSession(t)

	err := s.advance(Stage{Kind: StageConfirmation})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("got %v, want ErrInvalidTransition", err)
	}
	if s.flow.Current().Kind != StageGreeting {
		t.Errorf("refused transition moved the flow to %s", s.flow.Current())
	}

	if err := s.advance(Stage{Kind: StageCategoryCapture, Category: domain.CategoryBurgers}); err != nil {
		t.Errorf("next stage refused: %v", err)
	}
}

func TestSession_ConfirmationRequiresAllSlots(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	if err := s.enter(ctx, Stage{Kind: StageConfirmation}); !errors.Is(err, domain.ErrIncomplete) {
		t.Fatalf("got %v, want ErrIncomplete", err)
	}

	for _, cat := range domain.CategoryOrder {
		if err := s.order.SelectNone(cat); err != nil {
			t.Fatalf("SelectNone(%s): %v", cat, err)
		}
	}
	if err := s.enter(ctx, Stage{Kind: StageConfirmation}); err != nil {
		t.Errorf("complete order rejected: %v", err)
	}
}
