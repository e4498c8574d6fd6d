package models_test

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/patrickkostjens/firefly-iii/internal/models"
	"github.com/patrickkostjens/firefly-iii/internal/types"
)

func (suite *TestSuiteStandard) createTestBudget(budget models.Budget) models.Budget {
	if budget.Name == "" {
		budget.Name = uuid.NewString()
	}

	err := suite.db.Create(&budget).Error
	if err != nil {
		suite.Assert().FailNow("Budget could not be saved", "Error: %s, Budget: %#v", err, budget)
	}

	return budget
}

func (suite *TestSuiteStandard) createTestBudgetLimit(limit models.BudgetLimit) models.BudgetLimit {
	err := suite.db.Create(&limit).Error
	if err != nil {
		suite.Assert().FailNow("Budget limit could not be saved", "Error: %s, BudgetLimit: %#v", err, limit)
	}

	return limit
}

func (suite *TestSuiteStandard) TestBudgetNameNotUnique() {
	budget := suite.createTestBudget(models.Budget{Name: "Groceries"})

	err := suite.db.Create(&models.Budget{Name: budget.Name}).Error
	assert.ErrorIs(suite.T(), err, models.ErrBudgetNameNotUnique)
}

func (suite *TestSuiteStandard) TestBudgetLimitInverted() {
	budget := suite.createTestBudget(models.Budget{Active: true})

	err := suite.db.Create(&models.BudgetLimit{
		BudgetID:  budget.ID,
		Amount:    decimal.NewFromFloat(100),
		StartDate: types.NewDate(2023, 2, 1),
		EndDate:   types.NewDate(2023, 1, 1),
	}).Error

	assert.ErrorIs(suite.T(), err, models.ErrBudgetLimitInverted)
}

func (suite *TestSuiteStandard) TestBudgetLimitChecksBudget() {
	err := suite.db.Create(&models.BudgetLimit{
		BudgetID:  uuid.New(),
		Amount:    decimal.NewFromFloat(100),
		StartDate: types.NewDate(2023, 1, 1),
		EndDate:   types.NewDate(2023, 1, 31),
	}).Error

	assert.ErrorIs(suite.T(), err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestBudgetLimitWindow() {
	budget := suite.createTestBudget(models.Budget{Active: true})

	limit := suite.createTestBudgetLimit(models.BudgetLimit{
		BudgetID:  budget.ID,
		Amount:    decimal.NewFromFloat(100),
		StartDate: types.NewDate(2023, 1, 1),
		EndDate:   types.NewDate(2023, 1, 31),
	})

	window := limit.Window()
	assert.Equal(suite.T(), "2023-01-01 to 2023-01-31", window.String())
	assert.Equal(suite.T(), 31, window.Days())
}

func (suite *TestSuiteStandard) TestActiveBudgetByName() {
	active := suite.createTestBudget(models.Budget{Name: "Groceries", Active: true})
	_ = suite.createTestBudget(models.Budget{Name: "Old groceries", Active: false})

	budget, err := models.ActiveBudgetByName(suite.db, "Groceries")
	assert.Nil(suite.T(), err)
	assert.Equal(suite.T(), active.ID, budget.ID)

	_, err = models.ActiveBudgetByName(suite.db, "Old groceries")
	assert.ErrorIs(suite.T(), err, models.ErrResourceNotFound)
}
