package application

import (
	"testing"

	"talk2order/internal/domain"
)

func TestFlow_Sequence(t *testing.T) {
	tests := []struct {
		name   string
		dining bool
		want   []string
	}{
		{
			name: "without dining choice",
			want: []string{
				"Greeting",
				"CategoryCapture(Burgers)",
				"CategoryCapture(Fries)",
				"CategoryCapture(Drinks)",
				"CategoryCapture(Sides)",
				"CategoryCapture(Desserts)",
				"Confirmation",
				"PaymentCapture",
				"Closing",
			},
		},
		{
			name:   "with dining choice",
			dining: true,
			want: []string{
				"Greeting",
				"DiningChoice",
				"CategoryCapture(Burgers)",
				"CategoryCapture(Fries)",
				"CategoryCapture(Drinks)",
				"CategoryCapture(Sides)",
				"CategoryCapture(Desserts)",
				"Confirmation",
				"PaymentCapture",
				"Closing",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFlow(domain.DefaultCatalog(), tt.dining)
			stages := f.Stages()
			if len(stages) != len(tt.want) {
				t.Fatalf("stages: got %d, want %d", len(stages), len(tt.want))
			}
			for i, s := range stages {
				if s.String() != tt.want[i] {
					t.Errorf("stage %d: got %s, want %s", i, s, tt.want[i])
				}
			}
		})
	}
}

func TestFlow_OnlyForward(t *testing.T) {
	f := NewFlow(domain.DefaultCatalog(), false)

	fries := Stage{Kind: StageCategoryCapture, Category: domain.CategoryFries}
	burgers := Stage{Kind: StageCategoryCapture, Category: domain.CategoryBurgers}

	if f.Transition(fries) {
		t.Error("skipping Burgers should be rejected")
	}
	if f.Transition(Stage{Kind: StageClosing}) {
		t.Error("jumping to Closing should be rejected")
	}
	if !f.Transition(burgers) {
		t.Fatal("Greeting -> Burgers should be allowed")
	}
	if f.Transition(Stage{Kind: StageGreeting}) {
		t.Error("backward transition should be rejected")
	}
	if f.Current() != burgers {
		t.Errorf("current: got %s, want %s", f.Current(), burgers)
	}

	for {
		next, ok := f.Next()
		if !ok {
			break
		}
		if !f.Transition(next) {
			t.Fatalf("transition to %s rejected", next)
		}
	}
	if !f.Done() {
		t.Errorf("flow should end in Closing, at %s", f.Current())
	}
}
