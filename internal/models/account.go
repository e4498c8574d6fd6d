package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountType classifies an account. The type determines which side of a
// journal the account may appear on and is immutable after creation.
type AccountType string

const (
	AccountTypeAsset          AccountType = "asset"
	AccountTypeExpense        AccountType = "expense"
	AccountTypeRevenue        AccountType = "revenue"
	AccountTypeDefault        AccountType = "default"
	AccountTypeInitialBalance AccountType = "initial-balance"
)

// Account represents a single account, e.g. a bank account.
type Account struct {
	DefaultModel
	Name           string          `gorm:"uniqueIndex:account_name"`
	Type           AccountType     `json:"type"`
	Currency       string          `json:"currency"`
	VirtualBalance decimal.Decimal `json:"virtualBalance" gorm:"type:DECIMAL(20,8)"`
	Archived       bool            `json:"archived"`
}

var (
	ErrAccountNameNotUnique = errors.New("the account name must be unique")
	ErrAccountTypeImmutable = errors.New("the type of an account cannot be changed")
	ErrAccountTypeInvalid   = errors.New("the account type is not valid")
)

var accountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeExpense,
	AccountTypeRevenue,
	AccountTypeDefault,
	AccountTypeInitialBalance,
}

// BeforeSave ensures consistency for the account.
//
// It sets the default account type and trims whitespace from all strings.
func (a *Account) BeforeSave(_ *gorm.DB) error {
	if a.Type == "" {
		a.Type = AccountTypeAsset
	}

	valid := false
	for _, t := range accountTypes {
		if a.Type == t {
			valid = true
			break
		}
	}
	if !valid {
		return ErrAccountTypeInvalid
	}

	a.Name = strings.TrimSpace(a.Name)
	a.Currency = strings.TrimSpace(a.Currency)

	return nil
}

// BeforeUpdate rejects updates that change the account type. Balances are
// computed from historical journals, changing the type would reinterpret
// them all.
func (a *Account) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Changed("Type") {
		return ErrAccountTypeImmutable
	}

	return nil
}

// Transactions returns all transaction legs booked against this account.
func (a Account) Transactions(db *gorm.DB) ([]Transaction, error) {
	var transactions []Transaction

	err := db.Where(Transaction{AccountID: a.ID}).Find(&transactions).Error
	return transactions, err
}
