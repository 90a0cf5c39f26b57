package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderNumber is printed on card-paid receipts. It is not generated.
const OrderNumber = "6940"

var (
	ErrSlotResolved   = errors.New("slot already resolved")
	ErrPaymentSet     = errors.New("payment already selected")
	ErrDiningSet      = errors.New("dining choice already selected")
	ErrInvalidPayment = errors.New("invalid payment method")
	ErrIncomplete     = errors.New("order has unresolved slots")
)

type SlotState int

const (
	SlotUnresolved SlotState = iota
	SlotSelected
	SlotNone
)

func (s SlotState) String() string {
	switch s {
	case SlotUnresolved:
		return "unresolved"
	case SlotSelected:
		return "selected"
	case SlotNone:
		return "none"
	default:
		return "unknown"
	}
}

type Slot struct {
	Category string
	Label    string
	State    SlotState
	Item     string
	Price    decimal.Decimal
}

// Value is the receipt text for the slot: the item name, or "None".
func (s Slot) Value() string {
	if s.State == SlotSelected {
		return s.Item
	}
	return "None"
}

type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "Credit Card"
	PaymentDebitCard  PaymentMethod = "Debit Card"
	PaymentCash       PaymentMethod = "Cash"
)

func (p PaymentMethod) IsCard() bool {
	return p == PaymentCreditCard || p == PaymentDebitCard
}

func (p PaymentMethod) Valid() bool {
	return p.IsCard() || p == PaymentCash
}

type DiningChoice string

const (
	DiningIn       DiningChoice = "Dine in"
	DiningTakeAway DiningChoice = "Take away"
)

// Order accumulates one slot per category and the running total.
type Order struct {
	ID      string
	Dining  DiningChoice
	Payment PaymentMethod

	slots []Slot
	total decimal.Decimal
}

func NewOrder(catalog *Catalog) *Order {
	cats := catalog.Categories()
	slots := make([]Slot, len(cats))
	for i, cat := range cats {
		slots[i] = Slot{Category: cat.Name, Label: cat.Label}
	}
	return &Order{
		ID:    uuid.NewString(),
		slots: slots,
		total: decimal.Zero,
	}
}

func (o *Order) slot(category string) (*Slot, error) {
	for i := range o.slots {
		if o.slots[i].Category == category {
			if o.slots[i].State != SlotUnresolved {
				return nil, fmt.Errorf("%w: %s", ErrSlotResolved, category)
			}
			return &o.slots[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
}

// Select records an item for a category and adds its price to the total.
func (o *Order) Select(category, item string, price decimal.Decimal) error {
	s, err := o.slot(category)
	if err != nil {
		return err
	}
	s.State = SlotSelected
	s.Item = item
	s.Price = price
	o.total = o.total.Add(price)
	return nil
}

// SelectNone records that nothing was ordered from a category.
func (o *Order) SelectNone(category string) error {
	s, err := o.slot(category)
	if err != nil {
		return err
	}
	s.State = SlotNone
	return nil
}

func (o *Order) SetPayment(method PaymentMethod) error {
	if !method.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPayment, method)
	}
	if o.Payment != "" {
		return ErrPaymentSet
	}
	o.Payment = method
	return nil
}

func (o *Order) SetDining(choice DiningChoice) error {
	if o.Dining != "" {
		return ErrDiningSet
	}
	o.Dining = choice
	return nil
}

func (o *Order) Slots() []Slot {
	out := make([]Slot, len(o.slots))
	copy(out, o.slots)
	return out
}

func (o *Order) Total() decimal.Decimal {
	return o.total
}

// Complete reports whether every slot has been resolved.
func (o *Order) Complete() bool {
	for _, s := range o.slots {
		if s.State == SlotUnresolved {
			return false
		}
	}
	return true
}

// Receipt renders the confirmation text: a header, one line per slot in
// catalog order and the total with two decimals.
func (o *Order) Receipt() string {
	var b strings.Builder
	b.WriteString("Your order has been placed:\n")
	for _, s := range o.slots {
		fmt.Fprintf(&b, "%s: %s\n", s.Label, s.Value())
	}
	b.WriteString(FormatTotal(o.total))
	return b.String()
}

func FormatTotal(total decimal.Decimal) string {
	return "Total Cost: $" + total.StringFixed(2)
}

const thankYou = "Thank you for your order!\nHave a great day and hope to see you again!"

// ClosingMessage returns the farewell text for a payment method.
func ClosingMessage(method PaymentMethod) string {
	if method.IsCard() {
		return "Your Order Number: " + OrderNumber + "\n" + thankYou
	}
	return "Please proceed to the counter to confirm your order\n" + thankYou
}
