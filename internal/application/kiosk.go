package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"talk2order/internal/domain"
	"talk2order/internal/observe"
)

const kioskTitle = "AI Voice Ordering Kiosk"

var (
	diningGreetings = []string{
		"Hello! Thank you for choosing Talk2Order! Would you like to dine in or take away?",
		"Welcome to Talk2Order! Would you like to dine in or take away?",
	}
	plainGreetings = []string{
		"Hello! Thank you for choosing Talk2Order!",
		"Welcome to Talk2Order!",
	}
)

type Options struct {
	// IncludeDiningChoice asks dine in or take away before the menu.
	IncludeDiningChoice bool
	// RepeatSessions starts a new order after each one ends.
	RepeatSessions bool
	// MaxAttempts caps failed attempts per step. Zero means no cap.
	MaxAttempts int
}

// Kiosk runs ordering sessions: greeting, one capture per menu category,
// confirmation, payment and closing.
type Kiosk struct {
	catalog  *domain.Catalog
	listener Transcriber
	speaker  Speaker
	display  Display
	notifier Notifier
	metrics  *observe.Metrics
	logger   *slog.Logger
	opts     Options

	pick func(n int) int
}

func NewKiosk(
	catalog *domain.Catalog,
	listener Transcriber,
	speaker Speaker,
	display Display,
	notifier Notifier,
	metrics *observe.Metrics,
	logger *slog.Logger,
	opts Options,
) *Kiosk {
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &Kiosk{
		catalog:  catalog,
		listener: listener,
		speaker:  speaker,
		display:  display,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		opts:     opts,
		pick:     rand.IntN,
	}
}

// Run serves one session, or sessions back to back when RepeatSessions is
// set, until ctx is cancelled.
func (k *Kiosk) Run(ctx context.Context) error {
	k.logger.Info("kiosk ready",
		"dining_choice", k.opts.IncludeDiningChoice,
		"repeat_sessions", k.opts.RepeatSessions,
		"max_attempts", k.opts.MaxAttempts,
	)

	for {
		_, err := k.RunSession(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !k.opts.RepeatSessions || errors.Is(err, ErrSourceClosed) {
			return err
		}
		if err != nil {
			k.logger.Error("session ended without an order", "error", err)
		}
	}
}

// RunSession takes one order from greeting to closing.
func (k *Kiosk) RunSession(ctx context.Context) (*domain.Order, error) {
	order := domain.NewOrder(k.catalog)
	s := &session{
		kiosk:  k,
		order:  order,
		flow:   NewFlow(k.catalog, k.opts.IncludeDiningChoice),
		logger: k.logger.With("session_id", order.ID),
	}

	k.metrics.ActiveSessions.Add(ctx, 1)
	defer k.metrics.ActiveSessions.Add(context.WithoutCancel(ctx), -1)

	if err := s.run(ctx); err != nil {
		return nil, err
	}
	return order, nil
}

type session struct {
	kiosk     *Kiosk
	order     *domain.Order
	flow      *Flow
	logger    *slog.Logger
	menuShown bool
}

func (s *session) run(ctx context.Context) error {
	s.logger.Info("session started", "stages", len(s.flow.Stages()))

	for {
		stage := s.flow.Current()
		if err := s.enter(ctx, stage); err != nil {
			return fmt.Errorf("%s: %w", stage, err)
		}
		if s.flow.Done() {
			break
		}

		next, _ := s.flow.Next()
		if err := s.advance(next); err != nil {
			return err
		}
	}

	s.logger.Info("session finished",
		"total", s.order.Total().StringFixed(2),
		"payment", string(s.order.Payment),
	)
	return nil
}

func (s *session) advance(to Stage) error {
	from := s.flow.Current()
	if !s.flow.Transition(to) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
	}
	s.logger.Info("stage changed", "from", from.String(), "to", to.String())
	return nil
}

func (s *session) enter(ctx context.Context, stage Stage) error {
	switch stage.Kind {
	case StageGreeting:
		return s.greet(ctx)
	case StageDiningChoice:
		return s.chooseDining(ctx)
	case StageCategoryCapture:
		return s.captureCategory(ctx, stage.Category)
	case StageConfirmation:
		if !s.order.Complete() {
			return domain.ErrIncomplete
		}
		s.say(ctx, MessageSuccess, s.order.Receipt())
		return nil
	case StagePaymentCapture:
		return s.capturePayment(ctx)
	case StageClosing:
		return s.close(ctx)
	default:
		return fmt.Errorf("unknown stage %s", stage)
	}
}

func (s *session) greet(ctx context.Context) error {
	s.show(MessageTitle, kioskTitle)

	greetings := plainGreetings
	if s.kiosk.opts.IncludeDiningChoice {
		greetings = diningGreetings
	}
	s.say(ctx, MessageText, greetings[s.kiosk.pick(len(greetings))])
	return nil
}

func (s *session) chooseDining(ctx context.Context) error {
	var choice domain.DiningChoice
	step := captureStep{name: StageDiningChoice.String(), reprompt: "Invalid choice. Please repeat your choice."}
	err := s.capture(ctx, step,
		func(utterance string) (string, bool) {
			c, ok := MatchDining(utterance)
			if !ok {
				return "", false
			}
			choice = c
			return observe.OutcomeMatched, true
		})
	if err != nil {
		return err
	}

	if err := s.order.SetDining(choice); err != nil {
		return err
	}
	s.show(MessageText, fmt.Sprintf("You chose: %s.", choice))
	return nil
}

func (s *session) renderMenu() {
	s.show(MessageHeader, "Menu Items")
	for _, cat := range s.kiosk.catalog.Categories() {
		s.show(MessageSubheader, cat.Name)
		for _, item := range cat.Items {
			s.show(MessageText, fmt.Sprintf("%s: $%s", item.Name, item.Price.StringFixed(2)))
		}
	}
	s.menuShown = true
}

func (s *session) captureCategory(ctx context.Context, category string) error {
	if !s.menuShown {
		s.renderMenu()
	}

	cat, ok := s.kiosk.catalog.Category(category)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownCategory, category)
	}
	lower := strings.ToLower(cat.Name)

	s.say(ctx, MessageHeader, fmt.Sprintf("Please say your %s.", lower))

	var decision Decision
	step := captureStep{
		name:              cat.Name,
		reprompt:          fmt.Sprintf("No valid %s found. Please repeat your %s.", lower, lower),
		repromptOnFailure: true,
	}
	err := s.capture(ctx, step, func(utterance string) (string, bool) {
		decision = MatchItem(utterance, cat)
		switch decision.Outcome {
		case OutcomeMatched:
			return observe.OutcomeMatched, true
		case OutcomeNoneSelected:
			return observe.OutcomeNone, true
		default:
			return "", false
		}
	})
	if err != nil {
		return err
	}

	if decision.Outcome == OutcomeNoneSelected {
		if err := s.order.SelectNone(cat.Name); err != nil {
			return err
		}
		s.show(MessageText, fmt.Sprintf("No %s added to your order.", lower))
		return nil
	}

	price, err := s.kiosk.catalog.Price(cat.Name, decision.Item)
	if err != nil {
		return err
	}
	if err := s.order.Select(cat.Name, decision.Item, price); err != nil {
		return err
	}
	s.show(MessageText, fmt.Sprintf("Found %s in order!", decision.Item))
	return nil
}

func (s *session) capturePayment(ctx context.Context) error {
	s.say(ctx, MessageText, "Please say your payment method: Credit Card, Debit Card, or Cash.")

	var method domain.PaymentMethod
	step := captureStep{name: StagePaymentCapture.String(), reprompt: "Invalid payment method. Please repeat your payment method."}
	err := s.capture(ctx, step,
		func(utterance string) (string, bool) {
			m, ok := MatchPayment(utterance)
			if !ok {
				return "", false
			}
			method = m
			return observe.OutcomeMatched, true
		})
	if err != nil {
		return err
	}

	if err := s.order.SetPayment(method); err != nil {
		return err
	}
	s.say(ctx, MessageText, fmt.Sprintf("You chose to pay by: %s.", method))
	return nil
}

func (s *session) close(ctx context.Context) error {
	s.say(ctx, MessageSuccess, domain.ClosingMessage(s.order.Payment))

	s.kiosk.metrics.RecordOrderCompleted(ctx,
		string(s.order.Payment),
		string(s.order.Dining),
		s.order.Total().InexactFloat64(),
	)

	if err := s.kiosk.notifier.Notify(ctx, s.kitchenTicket()); err != nil {
		s.logger.Error("notifying kitchen", "error", err)
	}
	return nil
}

func (s *session) kitchenTicket() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s\n", s.order.ID)
	if s.order.Dining != "" {
		fmt.Fprintf(&b, "%s\n", s.order.Dining)
	}
	b.WriteString(s.order.Receipt())
	fmt.Fprintf(&b, "\nPayment: %s", s.order.Payment)
	return b.String()
}

// say shows text and speaks it. Speech failures are logged and shown as a
// warning; the dialogue continues.
func (s *session) say(ctx context.Context, kind MessageKind, text string) {
	s.show(kind, text)

	start := time.Now()
	err := s.kiosk.speaker.Speak(ctx, text)
	s.kiosk.metrics.SpeechDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil && ctx.Err() == nil {
		s.logger.Warn("text-to-speech failed", "error", err)
		s.show(MessageWarning, "Text-to-speech error: "+err.Error())
	}
}

func (s *session) show(kind MessageKind, text string) {
	s.kiosk.display.Render(Message{Kind: kind, Text: text})
}
