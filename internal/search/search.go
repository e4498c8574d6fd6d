// Package search implements free-text and modifier-based searching over
// transactions, accounts, budgets, categories and tags.
package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/patrickkostjens/firefly-iii/internal/journal"
	"github.com/patrickkostjens/firefly-iii/internal/models"
	"github.com/patrickkostjens/firefly-iii/internal/types"
)

// DefaultLimit is the result limit when the caller sets none.
const DefaultLimit = 100

// pageSize is the fixed page size of the transaction search loop.
const pageSize = 100

var ErrUnknownModifierKind = errors.New("unknown search modifier kind")

// Engine searches the ledger.
type Engine struct {
	db    *gorm.DB
	limit int
}

// New returns an Engine with the default result limit.
func New(db *gorm.DB) *Engine {
	return &Engine{db: db, limit: DefaultLimit}
}

// SetLimit caps the number of results per search.
func (e *Engine) SetLimit(limit int) {
	e.limit = limit
}

// Transactions pages through all journals and returns those matching the
// query, truncated to the limit.
//
// The loop terminates when a page comes back empty or enough results have
// accumulated.
func (e *Engine) Transactions(q Query) ([]models.Journal, error) {
	var result []models.Journal

	page := 1
	for {
		set, err := journal.Page(e.db, journal.Query{}, page, pageSize)
		if err != nil {
			return nil, err
		}

		for _, j := range set {
			matched, err := e.matchJournal(q, j)
			if err != nil {
				return nil, err
			}

			if matched {
				result = append(result, j)
			}
		}

		page++

		if len(set) == 0 || len(result) >= e.limit {
			break
		}
	}

	if len(result) > e.limit {
		result = result[:e.limit]
	}

	return result, nil
}

// Accounts returns the accounts whose name matches any query word.
func (e *Engine) Accounts(q Query) ([]models.Account, error) {
	var accounts []models.Account
	err := e.db.Find(&accounts).Error
	if err != nil {
		return nil, err
	}

	matching := make([]models.Account, 0)
	for _, a := range accounts {
		if matchAnyWord(a.Name, q.Words) {
			matching = append(matching, a)
		}
	}

	return truncate(matching, e.limit), nil
}

// Budgets returns the budgets whose name matches any query word.
func (e *Engine) Budgets(q Query) ([]models.Budget, error) {
	var budgets []models.Budget
	err := e.db.Find(&budgets).Error
	if err != nil {
		return nil, err
	}

	matching := make([]models.Budget, 0)
	for _, b := range budgets {
		if matchAnyWord(b.Name, q.Words) {
			matching = append(matching, b)
		}
	}

	return truncate(matching, e.limit), nil
}

// Categories returns the categories whose name matches any query word.
func (e *Engine) Categories(q Query) ([]models.Category, error) {
	var categories []models.Category
	err := e.db.Find(&categories).Error
	if err != nil {
		return nil, err
	}

	matching := make([]models.Category, 0)
	for _, c := range categories {
		if matchAnyWord(c.Name, q.Words) {
			matching = append(matching, c)
		}
	}

	return truncate(matching, e.limit), nil
}

// Tags returns the tags whose name matches any query word.
func (e *Engine) Tags(q Query) ([]models.Tag, error) {
	var tags []models.Tag
	err := e.db.Find(&tags).Error
	if err != nil {
		return nil, err
	}

	matching := make([]models.Tag, 0)
	for _, t := range tags {
		if matchAnyWord(t.Name, q.Words) {
			matching = append(matching, t)
		}
	}

	return truncate(matching, e.limit), nil
}

// matchJournal applies the free words first, then every modifier as an
// additional AND filter.
func (e *Engine) matchJournal(q Query, j models.Journal) (bool, error) {
	if len(q.Words) > 0 && !matchAnyWord(j.Description, q.Words) {
		return false, nil
	}

	for _, m := range q.Modifiers {
		ok, err := matchModifier(m, j)
		if err != nil {
			return false, err
		}

		if !ok {
			return false, nil
		}
	}

	return true, nil
}

// matchModifier dispatches a single modifier over the closed kind set.
func matchModifier(m Modifier, j models.Journal) (bool, error) {
	switch m.Kind {
	case ModifierAmount, ModifierAmountLess, ModifierAmountMore:
		wanted, err := decimal.NewFromString(m.Value)
		if err != nil {
			return false, fmt.Errorf("search modifier %s: %q is not a decimal amount", m.Kind, m.Value)
		}

		leg, err := j.DestinationLeg()
		if err != nil {
			return false, err
		}

		switch m.Kind {
		case ModifierAmountLess:
			return leg.Amount.LessThan(wanted), nil
		case ModifierAmountMore:
			return leg.Amount.GreaterThan(wanted), nil
		default:
			return leg.Amount.Equal(wanted), nil
		}

	case ModifierSource:
		leg, err := j.SourceLeg()
		if err != nil {
			return false, err
		}
		return strings.EqualFold(leg.Account.Name, m.Value), nil

	case ModifierDestination:
		leg, err := j.DestinationLeg()
		if err != nil {
			return false, err
		}
		return strings.EqualFold(leg.Account.Name, m.Value), nil

	case ModifierAccount:
		for _, t := range j.Transactions {
			if strings.EqualFold(t.Account.Name, m.Value) {
				return true, nil
			}
		}
		return false, nil

	case ModifierCategory:
		return j.Category != nil && strings.EqualFold(j.Category.Name, m.Value), nil

	case ModifierBudget:
		return j.Budget != nil && strings.EqualFold(j.Budget.Name, m.Value), nil

	case ModifierType:
		return strings.EqualFold(string(j.Type), m.Value), nil

	case ModifierTag:
		for _, tag := range j.Tags {
			if strings.EqualFold(tag.Name, m.Value) {
				return true, nil
			}
		}
		return false, nil

	case ModifierOn, ModifierBefore, ModifierAfter:
		date, err := types.ParseDate(m.Value)
		if err != nil {
			return false, err
		}

		day := types.DateOf(j.Date)
		switch m.Kind {
		case ModifierBefore:
			return day.Before(date), nil
		case ModifierAfter:
			return day.After(date), nil
		default:
			return day.Equal(date), nil
		}
	}

	return false, fmt.Errorf("%w: %q", ErrUnknownModifierKind, m.Kind)
}

func truncate[T any](s []T, limit int) []T {
	if len(s) > limit {
		return s[:limit]
	}

	return s
}
