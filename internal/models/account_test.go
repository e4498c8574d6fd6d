package models_test

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/patrickkostjens/firefly-iii/internal/models"
)

func (suite *TestSuiteStandard) createTestAccount(account models.Account) models.Account {
	if account.Name == "" {
		account.Name = uuid.NewString()
	}

	err := suite.db.Create(&account).Error
	if err != nil {
		suite.Assert().FailNow("Account could not be saved", "Error: %s, Account: %#v", err, account)
	}

	return account
}

func (suite *TestSuiteStandard) TestAccountTrimWhitespace() {
	name := "\t Checking account   "
	currency := "  EUR "

	account := suite.createTestAccount(models.Account{
		Name:     name,
		Currency: currency,
	})

	assert.Equal(suite.T(), strings.TrimSpace(name), account.Name)
	assert.Equal(suite.T(), strings.TrimSpace(currency), account.Currency)
}

func (suite *TestSuiteStandard) TestAccountTypeDefaultsToAsset() {
	account := suite.createTestAccount(models.Account{})

	assert.Equal(suite.T(), models.AccountTypeAsset, account.Type)
}

func (suite *TestSuiteStandard) TestAccountTypeInvalid() {
	err := suite.db.Create(&models.Account{
		Name: "Invalid type",
		Type: "checking",
	}).Error

	assert.ErrorIs(suite.T(), err, models.ErrAccountTypeInvalid)
}

func (suite *TestSuiteStandard) TestAccountTypeImmutable() {
	account := suite.createTestAccount(models.Account{
		Type: models.AccountTypeAsset,
	})

	err := suite.db.Model(&account).Updates(models.Account{Type: models.AccountTypeExpense}).Error
	assert.ErrorIs(suite.T(), err, models.ErrAccountTypeImmutable)
}

func (suite *TestSuiteStandard) TestAccountNameNotUnique() {
	account := suite.createTestAccount(models.Account{Name: "Unique account"})

	err := suite.db.Create(&models.Account{Name: account.Name}).Error
	assert.ErrorIs(suite.T(), err, models.ErrAccountNameNotUnique)
}

func (suite *TestSuiteStandard) TestAccountVirtualBalanceStored() {
	account := suite.createTestAccount(models.Account{
		VirtualBalance: decimal.NewFromFloat(123.45),
	})

	var reloaded models.Account
	err := suite.db.First(&reloaded, account.ID).Error
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), reloaded.VirtualBalance.Equal(decimal.NewFromFloat(123.45)), "Virtual balance is %s", reloaded.VirtualBalance)
}

func (suite *TestSuiteStandard) TestAccountTransactions() {
	account := suite.createTestAccount(models.Account{})
	other := suite.createTestAccount(models.Account{Type: models.AccountTypeExpense})

	_ = suite.createTestJournal(models.Journal{
		Description: "Groceries",
		Type:        models.TransactionTypeWithdrawal,
	}, account, other, decimal.NewFromFloat(17.23))

	transactions, err := account.Transactions(suite.db)
	assert.Nil(suite.T(), err)
	assert.Len(suite.T(), transactions, 1)
	assert.True(suite.T(), transactions[0].Amount.Equal(decimal.NewFromFloat(-17.23)))
}
