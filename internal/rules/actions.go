package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/patrickkostjens/firefly-iii/internal/models"
)

// The closed set of action kinds.
const (
	ActionSetBudget         = "set_budget"
	ActionClearBudget       = "clear_budget"
	ActionSetCategory       = "set_category"
	ActionClearCategory     = "clear_category"
	ActionAddTag            = "add_tag"
	ActionSetDescription    = "set_description"
	ActionAppendDescription = "append_description"
)

var ErrUnknownActionKind = errors.New("unknown rule action kind")

// applyAction executes a single action effector on a journal.
//
// Every action is idempotent: applying it a second time leaves the journal
// unchanged. This lets the engine tolerate at-least-once delivery from the
// job queue.
func applyAction(db *gorm.DB, action models.RuleAction, journal *models.Journal) error {
	switch action.Kind {
	case ActionSetBudget:
		return setBudget(db, action, journal)

	case ActionClearBudget:
		journal.BudgetID = nil
		journal.Budget = nil
		return db.Model(journal).Update("budget_id", nil).Error

	case ActionSetCategory:
		category := models.Category{Name: action.Value}
		err := db.Where(&models.Category{Name: action.Value}).FirstOrCreate(&category).Error
		if err != nil {
			return err
		}

		journal.CategoryID = &category.ID
		return db.Model(journal).Update("category_id", category.ID).Error

	case ActionClearCategory:
		journal.CategoryID = nil
		journal.Category = nil
		return db.Model(journal).Update("category_id", nil).Error

	case ActionAddTag:
		tag := models.Tag{Name: action.Value}
		err := db.Where(&models.Tag{Name: action.Value}).FirstOrCreate(&tag).Error
		if err != nil {
			return err
		}

		return db.Model(journal).Association("Tags").Append(&tag)

	case ActionSetDescription:
		journal.Description = action.Value
		return db.Model(journal).Update("description", action.Value).Error

	case ActionAppendDescription:
		if strings.HasSuffix(journal.Description, action.Value) {
			return nil
		}

		journal.Description = strings.TrimSpace(journal.Description + " " + action.Value)
		return db.Model(journal).Update("description", journal.Description).Error
	}

	return fmt.Errorf("%w: %q", ErrUnknownActionKind, action.Kind)
}

// setBudget replaces the journal's budget association with the active budget
// named exactly like the action value.
//
// Lookup misses and transfers are logged no-ops, the journal stays
// unmodified. Budgets do not apply to transfers.
func setBudget(db *gorm.DB, action models.RuleAction, journal *models.Journal) error {
	budget, err := models.ActiveBudgetByName(db, action.Value)
	if err != nil {
		if errors.Is(err, models.ErrResourceNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
			log.Debug().
				Str("journal", journal.ID.String()).
				Str("budget", action.Value).
				Msg("rule action set_budget skipped: no such active budget")
			return nil
		}

		return err
	}

	if journal.Type == models.TransactionTypeTransfer {
		log.Debug().
			Str("journal", journal.ID.String()).
			Str("budget", action.Value).
			Msg("rule action set_budget skipped: journal is a transfer")
		return nil
	}

	journal.BudgetID = &budget.ID
	journal.Budget = &budget
	return db.Model(journal).Update("budget_id", budget.ID).Error
}
