package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType classifies a journal.
type TransactionType string

const (
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeTransfer   TransactionType = "transfer"
)

// Journal is a double-entry financial event. It groups at least two
// transaction legs whose amounts sum to zero.
type Journal struct {
	DefaultModel
	Date         time.Time       `json:"date"`
	Description  string          `json:"description"`
	Type         TransactionType `json:"type"`
	BudgetID     *uuid.UUID      `json:"budgetId"`
	Budget       *Budget         `json:"-"`
	CategoryID   *uuid.UUID      `json:"categoryId"`
	Category     *Category       `json:"-"`
	Tags         []Tag           `json:"-" gorm:"many2many:journal_tags"`
	Transactions []Transaction   `json:"-"`
}

// Transaction is a single leg of a journal, booked against exactly one
// account. The amount is signed: negative for the source side, positive for
// the destination side.
type Transaction struct {
	DefaultModel
	JournalID uuid.UUID       `json:"journalId"`
	AccountID uuid.UUID       `json:"accountId"`
	Account   Account         `json:"-"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)"`
}

var (
	ErrJournalUnbalanced  = errors.New("the transactions of a journal must sum to zero")
	ErrJournalTooFewLegs  = errors.New("a journal needs at least two transactions")
	ErrJournalMissingLeg  = errors.New("journal is missing an opposing transaction")
	ErrJournalTypeInvalid = errors.New("the transaction type is not valid")
)

// BeforeSave sets the timezone for the Date to UTC and verifies the type.
func (j *Journal) BeforeSave(_ *gorm.DB) (err error) {
	if j.Date.IsZero() {
		j.Date = time.Now().In(time.UTC)
	} else {
		j.Date = j.Date.In(time.UTC)
	}

	switch j.Type {
	case TransactionTypeWithdrawal, TransactionTypeDeposit, TransactionTypeTransfer:
	default:
		return fmt.Errorf("%w: %q", ErrJournalTypeInvalid, j.Type)
	}

	j.Description = strings.TrimSpace(j.Description)

	return nil
}

// AfterFind updates the date to use UTC as timezone, not +0000.
func (j *Journal) AfterFind(_ *gorm.DB) (err error) {
	j.Date = j.Date.In(time.UTC)
	return nil
}

// CreateJournal stores a journal together with its transaction legs after
// verifying the double-entry invariant.
func CreateJournal(db *gorm.DB, journal *Journal) error {
	if len(journal.Transactions) < 2 {
		return ErrJournalTooFewLegs
	}

	sum := decimal.Zero
	for _, t := range journal.Transactions {
		sum = sum.Add(t.Amount)
	}

	if !sum.IsZero() {
		return fmt.Errorf("%w: the sum is %s", ErrJournalUnbalanced, sum)
	}

	return db.Create(journal).Error
}

// SourceLeg returns the negative transaction leg of the journal.
//
// A journal without a negative leg is in an unexpected state, the resulting
// error is not recoverable.
func (j Journal) SourceLeg() (Transaction, error) {
	for _, t := range j.Transactions {
		if t.Amount.IsNegative() {
			return t, nil
		}
	}

	return Transaction{}, fmt.Errorf("%w: journal %s has no source leg", ErrJournalMissingLeg, j.ID)
}

// DestinationLeg returns the positive transaction leg of the journal.
func (j Journal) DestinationLeg() (Transaction, error) {
	for _, t := range j.Transactions {
		if t.Amount.IsPositive() {
			return t, nil
		}
	}

	return Transaction{}, fmt.Errorf("%w: journal %s has no destination leg", ErrJournalMissingLeg, j.ID)
}

// LegForAccount returns the transaction leg booked against the account.
// The second return value reports whether such a leg exists.
func (j Journal) LegForAccount(accountID uuid.UUID) (Transaction, bool) {
	for _, t := range j.Transactions {
		if t.AccountID == accountID {
			return t, true
		}
	}

	return Transaction{}, false
}
