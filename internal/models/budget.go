package models

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/patrickkostjens/firefly-iii/internal/types"
)

// Budget represents a budget.
//
// An amount of money is made available for a budget through budget limits,
// each scoping an amount to a date window.
type Budget struct {
	DefaultModel
	Name   string `gorm:"uniqueIndex:budget_name"`
	Active bool   `json:"active"`
}

// BudgetLimit scopes a budget amount to a [StartDate, EndDate] period.
// Limits of the same budget are assumed not to overlap, this is not
// enforced here.
type BudgetLimit struct {
	DefaultModel
	BudgetID  uuid.UUID       `json:"budgetId"`
	Budget    Budget          `json:"-"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)"`
	StartDate types.Date      `json:"startDate"`
	EndDate   types.Date      `json:"endDate"`
}

var (
	ErrBudgetNameNotUnique = errors.New("the budget name must be unique")
	ErrBudgetLimitInverted = errors.New("the start date of a budget limit must not be after its end date")
)

func (b *Budget) BeforeSave(_ *gorm.DB) error {
	b.Name = strings.TrimSpace(b.Name)
	return nil
}

func (l *BudgetLimit) BeforeCreate(tx *gorm.DB) error {
	_ = l.DefaultModel.BeforeCreate(tx)

	toSave := tx.Statement.Dest.(*BudgetLimit)
	return l.checkIntegrity(tx, *toSave)
}

func (l *BudgetLimit) BeforeSave(_ *gorm.DB) error {
	if l.StartDate.After(l.EndDate) {
		return ErrBudgetLimitInverted
	}

	return nil
}

// checkIntegrity verifies references to other resources.
func (l *BudgetLimit) checkIntegrity(tx *gorm.DB, toSave BudgetLimit) error {
	return tx.First(&Budget{}, toSave.BudgetID).Error
}

// Window returns the limit's period as a Range.
func (l BudgetLimit) Window() types.Range {
	return types.Range{Start: l.StartDate, End: l.EndDate}
}

// ActiveBudgetByName returns the active budget with exactly this name.
func ActiveBudgetByName(db *gorm.DB, name string) (Budget, error) {
	var budget Budget
	err := db.Where(&Budget{Name: name, Active: true}).First(&budget).Error
	return budget, err
}
