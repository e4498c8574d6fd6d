// Package journal implements the ledger query layer.
//
// Aggregators describe the journals they need with a Query value and fetch
// them through a single call, they never build database queries themselves.
package journal

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/patrickkostjens/firefly-iii/internal/models"
	"github.com/patrickkostjens/firefly-iii/internal/types"
)

// Query describes a set of journals.
//
// All filters are optional and combined with AND. The zero value matches
// every journal.
type Query struct {
	// AccountIDs limits the result to journals with at least one
	// transaction leg booked against one of these accounts.
	AccountIDs []uuid.UUID

	// Range limits the result to journals dated within the range,
	// both ends inclusive.
	Range *types.Range

	// Types limits the result to journals of these transaction types.
	Types []models.TransactionType

	// BudgetID limits the result to journals linked to this budget.
	BudgetID *uuid.UUID

	// WithoutBudget limits the result to journals without a budget link.
	WithoutBudget bool

	// CategoryID limits the result to journals linked to this category.
	CategoryID *uuid.UUID

	// TagMode limits the result to journals carrying at least one tag
	// with this mode.
	TagMode models.TagMode
}

// build translates the query into a gorm statement with a stable
// iteration order.
func build(db *gorm.DB, q Query) *gorm.DB {
	stmt := db.Model(&models.Journal{}).
		Preload("Transactions").
		Preload("Transactions.Account").
		Preload("Tags").
		Preload("Budget").
		Preload("Category").
		Order("journals.date ASC, journals.id ASC")

	if len(q.AccountIDs) > 0 {
		stmt = stmt.
			Joins("JOIN transactions ON transactions.journal_id = journals.id").
			Where("transactions.account_id IN ?", q.AccountIDs).
			Distinct("journals.*")
	}

	if q.Range != nil {
		stmt = stmt.
			Where("date(journals.date) >= date(?)", q.Range.Start.Time()).
			Where("date(journals.date) <= date(?)", q.Range.End.Time())
	}

	if len(q.Types) > 0 {
		stmt = stmt.Where("journals.type IN ?", q.Types)
	}

	if q.BudgetID != nil {
		stmt = stmt.Where("journals.budget_id = ?", *q.BudgetID)
	}

	if q.WithoutBudget {
		stmt = stmt.Where("journals.budget_id IS NULL")
	}

	if q.CategoryID != nil {
		stmt = stmt.Where("journals.category_id = ?", *q.CategoryID)
	}

	if q.TagMode != "" {
		stmt = stmt.
			Joins("JOIN journal_tags ON journal_tags.journal_id = journals.id").
			Joins("JOIN tags ON tags.id = journal_tags.tag_id").
			Where("tags.mode = ?", q.TagMode).
			Distinct("journals.*")
	}

	return stmt
}

// Fetch returns all journals matching the query in stable order.
func Fetch(db *gorm.DB, q Query) ([]models.Journal, error) {
	var journals []models.Journal

	err := build(db, q).Find(&journals).Error
	return journals, err
}

// Page returns one page of journals matching the query. Pages are counted
// from 1.
func Page(db *gorm.DB, q Query, page, size int) ([]models.Journal, error) {
	if page < 1 {
		page = 1
	}

	var journals []models.Journal

	err := build(db, q).
		Offset((page - 1) * size).
		Limit(size).
		Find(&journals).Error
	return journals, err
}
