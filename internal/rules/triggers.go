package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ryanuber/go-glob"
	"github.com/shopspring/decimal"

	"github.com/patrickkostjens/firefly-iii/internal/models"
)

// The closed set of trigger kinds. Evaluation dispatches exhaustively over
// these, an unknown kind is an error rather than a silent non-match.
const (
	TriggerDescriptionContains  = "description_contains"
	TriggerDescriptionIs        = "description_is"
	TriggerDescriptionMatches   = "description_matches"
	TriggerAmountExactly        = "amount_exactly"
	TriggerAmountLess           = "amount_less"
	TriggerAmountMore           = "amount_more"
	TriggerSourceAccountIs      = "source_account_is"
	TriggerDestinationAccountIs = "destination_account_is"
	TriggerTransactionType      = "transaction_type"
	TriggerBudgetIs             = "budget_is"
	TriggerCategoryIs           = "category_is"
	TriggerHasNoBudget          = "has_no_budget"
	TriggerTagIs                = "tag_is"
)

var (
	ErrUnknownTriggerKind = errors.New("unknown rule trigger kind")
	ErrBadTriggerValue    = errors.New("rule trigger value cannot be parsed")
)

// matchTrigger evaluates a single trigger predicate against a journal.
func matchTrigger(trigger models.RuleTrigger, journal models.Journal) (bool, error) {
	switch trigger.Kind {
	case TriggerDescriptionContains:
		return strings.Contains(strings.ToLower(journal.Description), strings.ToLower(trigger.Value)), nil

	case TriggerDescriptionIs:
		return strings.EqualFold(journal.Description, trigger.Value), nil

	case TriggerDescriptionMatches:
		return glob.Glob(strings.ToLower(trigger.Value), strings.ToLower(journal.Description)), nil

	case TriggerAmountExactly, TriggerAmountLess, TriggerAmountMore:
		return matchAmount(trigger, journal)

	case TriggerSourceAccountIs:
		leg, err := journal.SourceLeg()
		if err != nil {
			return false, err
		}
		return strings.EqualFold(leg.Account.Name, trigger.Value), nil

	case TriggerDestinationAccountIs:
		leg, err := journal.DestinationLeg()
		if err != nil {
			return false, err
		}
		return strings.EqualFold(leg.Account.Name, trigger.Value), nil

	case TriggerTransactionType:
		return strings.EqualFold(string(journal.Type), trigger.Value), nil

	case TriggerBudgetIs:
		return journal.Budget != nil && strings.EqualFold(journal.Budget.Name, trigger.Value), nil

	case TriggerCategoryIs:
		return journal.Category != nil && strings.EqualFold(journal.Category.Name, trigger.Value), nil

	case TriggerHasNoBudget:
		return journal.BudgetID == nil, nil

	case TriggerTagIs:
		for _, tag := range journal.Tags {
			if strings.EqualFold(tag.Name, trigger.Value) {
				return true, nil
			}
		}
		return false, nil
	}

	return false, fmt.Errorf("%w: %q", ErrUnknownTriggerKind, trigger.Kind)
}

// matchAmount compares the journal's positive leg against the trigger value.
func matchAmount(trigger models.RuleTrigger, journal models.Journal) (bool, error) {
	wanted, err := decimal.NewFromString(trigger.Value)
	if err != nil {
		return false, fmt.Errorf("%w: %q is not a decimal amount", ErrBadTriggerValue, trigger.Value)
	}

	leg, err := journal.DestinationLeg()
	if err != nil {
		return false, err
	}

	switch trigger.Kind {
	case TriggerAmountExactly:
		return leg.Amount.Equal(wanted), nil
	case TriggerAmountLess:
		return leg.Amount.LessThan(wanted), nil
	case TriggerAmountMore:
		return leg.Amount.GreaterThan(wanted), nil
	}

	return false, fmt.Errorf("%w: %q", ErrUnknownTriggerKind, trigger.Kind)
}
