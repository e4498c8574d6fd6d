// Package budget computes spent/left/overspent figures for budgets.
package budget

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/patrickkostjens/firefly-iii/internal/models"
	"github.com/patrickkostjens/firefly-iii/internal/types"
)

// Engine computes budget rollups.
type Engine struct {
	db *gorm.DB
}

// New returns an Engine reading from db.
func New(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// LimitRollup is the rollup for a single budget limit.
//
// Spent is always <= 0 by sign convention. The invariant
// Left + Overspent == Amount + Spent holds, with at most one of Left and
// Overspent nonzero.
type LimitRollup struct {
	Name      string              `json:"name"`
	Limit     *models.BudgetLimit `json:"limit"`
	Spent     decimal.Decimal     `json:"spent"`
	Left      decimal.Decimal     `json:"left"`
	Overspent decimal.Decimal     `json:"overspent"`
}

// SpentInPeriod returns the sum of all withdrawal legs booked in the budget
// within the window, optionally restricted to a set of accounts. The result
// is <= 0.
func (e *Engine) SpentInPeriod(budget models.Budget, accountIDs []uuid.UUID, window types.Range) (decimal.Decimal, error) {
	stmt := e.spentQuery(accountIDs, window).
		Where("journals.budget_id = ?", budget.ID)

	return scanSum(stmt, fmt.Sprintf("budget %s", budget.ID))
}

// SpentWithoutBudget returns the sum of all withdrawal legs lacking a budget
// association within the window, optionally restricted to a set of accounts.
func (e *Engine) SpentWithoutBudget(accountIDs []uuid.UUID, window types.Range) (decimal.Decimal, error) {
	stmt := e.spentQuery(accountIDs, window).
		Where("journals.budget_id IS NULL")

	return scanSum(stmt, "journals without budget")
}

// Limits returns all limits of the budget overlapping the window, ordered by
// start date.
func (e *Engine) Limits(budget models.Budget, window types.Range) ([]models.BudgetLimit, error) {
	var limits []models.BudgetLimit

	err := e.db.
		Where(&models.BudgetLimit{BudgetID: budget.ID}).
		Where("date(start_date) <= date(?)", window.End.Time()).
		Where("date(end_date) >= date(?)", window.Start.Time()).
		Order("start_date ASC").
		Find(&limits).Error
	if err != nil {
		return nil, fmt.Errorf("getting limits for budget %s failed: %w", budget.ID, err)
	}

	return limits, nil
}

// Rollup computes the spent/left/overspent figures for the budget in the
// window, one entry per limit.
//
// When the budget has no limits in the window, a single entry holds the
// whole-window spent total with left and overspent fixed at zero. When it
// has more than one, entries are disambiguated by appending the limit's
// date range to the budget name.
func (e *Engine) Rollup(budget models.Budget, accountIDs []uuid.UUID, window types.Range) ([]LimitRollup, error) {
	limits, err := e.Limits(budget, window)
	if err != nil {
		return nil, err
	}

	if len(limits) == 0 {
		spent, err := e.SpentInPeriod(budget, accountIDs, window)
		if err != nil {
			return nil, err
		}

		return []LimitRollup{{
			Name:  budget.Name,
			Spent: spent,
		}}, nil
	}

	rollups := make([]LimitRollup, 0, len(limits))
	for i := range limits {
		limit := limits[i]

		spent, err := e.SpentInPeriod(budget, accountIDs, limit.Window())
		if err != nil {
			return nil, err
		}

		name := budget.Name
		if len(limits) > 1 {
			name = fmt.Sprintf("%s (%s)", budget.Name, limit.Window())
		}

		net := limit.Amount.Add(spent)
		left := net
		overspent := decimal.Zero
		if net.IsNegative() {
			left = decimal.Zero
			overspent = net
		}

		rollups = append(rollups, LimitRollup{
			Name:      name,
			Limit:     &limit,
			Spent:     spent,
			Left:      left,
			Overspent: overspent,
		})
	}

	return rollups, nil
}

// spentQuery builds the shared filter for withdrawal legs in a window.
// Only the negative legs count, money moving back into the account set is
// not an expense.
func (e *Engine) spentQuery(accountIDs []uuid.UUID, window types.Range) *gorm.DB {
	stmt := e.db.Table("transactions").
		Joins("LEFT JOIN journals ON journals.id = transactions.journal_id").
		Where("journals.type = ?", models.TransactionTypeWithdrawal).
		Where("transactions.amount < 0").
		Where("date(journals.date) >= date(?)", window.Start.Time()).
		Where("date(journals.date) <= date(?)", window.End.Time()).
		Where("journals.deleted_at IS NULL").
		Where("transactions.deleted_at IS NULL")

	if len(accountIDs) > 0 {
		stmt = stmt.Where("transactions.account_id IN ?", accountIDs)
	}

	return stmt
}

func scanSum(stmt *gorm.DB, what string) (decimal.Decimal, error) {
	var sum decimal.NullDecimal

	err := stmt.Select("SUM(transactions.amount)").Row().Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("getting spent sum for %s failed: %w", what, err)
	}

	return sum.Decimal, nil
}
