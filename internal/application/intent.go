package application

import (
	"errors"
	"strings"

	"talk2order/internal/domain"
)

// ErrNoIntentMatch marks an utterance that matched nothing in the vocabulary
// of the current step.
var ErrNoIntentMatch = errors.New("no intent match")

const noneToken = "none"

// Normalize lowercases and trims a raw transcript. It reports false when
// nothing is left to match.
func Normalize(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	return s, s != ""
}

type Outcome int

const (
	OutcomeNoMatch Outcome = iota
	OutcomeMatched
	OutcomeNoneSelected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeNoneSelected:
		return "none"
	default:
		return "no_match"
	}
}

// Decision is the result of matching one utterance against a category.
type Decision struct {
	Outcome Outcome
	Item    string
}

// containsEither is bidirectional containment: either string contains the
// other.
func containsEither(utterance, phrase string) bool {
	return strings.Contains(utterance, phrase) || strings.Contains(phrase, utterance)
}

// MatchItem matches a normalized utterance against a category. "none" wins
// over everything. Categories with aliases are matched on aliases only,
// others on item names; in both cases the first item in catalog order wins.
func MatchItem(utterance string, cat domain.Category) Decision {
	if strings.Contains(utterance, noneToken) {
		return Decision{Outcome: OutcomeNoneSelected}
	}

	if cat.HasAliases() {
		for _, item := range cat.Items {
			for _, alias := range item.Aliases {
				if containsEither(utterance, strings.ToLower(alias)) {
					return Decision{Outcome: OutcomeMatched, Item: item.Name}
				}
			}
		}
		return Decision{Outcome: OutcomeNoMatch}
	}

	for _, item := range cat.Items {
		if containsEither(utterance, strings.ToLower(item.Name)) {
			return Decision{Outcome: OutcomeMatched, Item: item.Name}
		}
	}
	return Decision{Outcome: OutcomeNoMatch}
}

var paymentPhrases = []struct {
	phrase string
	method domain.PaymentMethod
}{
	{"credit card", domain.PaymentCreditCard},
	{"debit card", domain.PaymentDebitCard},
	{"cash", domain.PaymentCash},
}

// MatchPayment looks for one of the fixed payment phrases in a normalized
// utterance. Containment is one-way.
func MatchPayment(utterance string) (domain.PaymentMethod, bool) {
	for _, p := range paymentPhrases {
		if strings.Contains(utterance, p.phrase) {
			return p.method, true
		}
	}
	return "", false
}

var diningPhrases = []struct {
	choice   domain.DiningChoice
	variants []string
}{
	{domain.DiningIn, []string{"dine in", "dining in", "eating in", "eat in"}},
	{domain.DiningTakeAway, []string{"take away", "takeout"}},
}

func MatchDining(utterance string) (domain.DiningChoice, bool) {
	for _, d := range diningPhrases {
		for _, v := range d.variants {
			if strings.Contains(utterance, v) {
				return d.choice, true
			}
		}
	}
	return "", false
}
