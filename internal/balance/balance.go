// Package balance computes account balances over time.
package balance

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/patrickkostjens/firefly-iii/internal/cache"
	"github.com/patrickkostjens/firefly-iii/internal/models"
	"github.com/patrickkostjens/firefly-iii/internal/types"
)

// DatedBalance is the running balance of an account at the end of a day.
type DatedBalance struct {
	Date    types.Date      `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

// Aggregator computes point-in-time and running balances.
//
// Results are cached per (account, metric, date). The caches are
// transparent: the same inputs never recompute within the cache window.
type Aggregator struct {
	db      *gorm.DB
	amounts *cache.Cache[decimal.Decimal]
	series  *cache.Cache[[]DatedBalance]
	bulk    *cache.Cache[map[uuid.UUID]decimal.Decimal]
}

// New returns an Aggregator reading from db.
func New(db *gorm.DB) *Aggregator {
	return &Aggregator{
		db:      db,
		amounts: cache.New[decimal.Decimal]("balance"),
		series:  cache.New[[]DatedBalance]("balance-in-range"),
		bulk:    cache.New[map[uuid.UUID]decimal.Decimal]("balances-by-id"),
	}
}

// Invalidate drops all cached figures. It is called whenever a mutating
// write marks the ledger dirty.
func (a *Aggregator) Invalidate() {
	a.amounts.Invalidate()
	a.series.Invalidate()
	a.bulk.Invalidate()
}

// Balance returns the balance of the account at the end of the day,
// including the virtual balance offset.
func (a *Aggregator) Balance(account models.Account, asOf types.Date) (decimal.Decimal, error) {
	props := cache.NewProperties(account.ID, "balance", asOf)
	if cached, ok := a.amounts.Get(props); ok {
		return cached, nil
	}

	sum, err := a.transactionSum(account.ID, asOf)
	if err != nil {
		return decimal.Zero, err
	}

	sum = sum.Add(account.VirtualBalance)
	a.amounts.Store(props, sum)

	return sum, nil
}

// BalanceIgnoreVirtual returns the balance of the account at the end of the
// day without the virtual balance offset.
func (a *Aggregator) BalanceIgnoreVirtual(account models.Account, asOf types.Date) (decimal.Decimal, error) {
	props := cache.NewProperties(account.ID, "balance-no-virtual", asOf)
	if cached, ok := a.amounts.Get(props); ok {
		return cached, nil
	}

	sum, err := a.transactionSum(account.ID, asOf)
	if err != nil {
		return decimal.Zero, err
	}

	a.amounts.Store(props, sum)

	return sum, nil
}

// BalanceInRange returns the running balance of the account for each day
// that changes it, from the day before start up to and including the day
// after end. The first entry is the balance at the day before start, so a
// chart drawn from the series starts at the correct height.
func (a *Aggregator) BalanceInRange(account models.Account, window types.Range) ([]DatedBalance, error) {
	props := cache.NewProperties(account.ID, "balance-in-range", window)
	if cached, ok := a.series.Get(props); ok {
		return cached, nil
	}

	seed := window.Start.AddDays(-1)
	current, err := a.Balance(account, seed)
	if err != nil {
		return nil, err
	}

	balances := []DatedBalance{{Date: seed, Balance: current}}

	type row struct {
		Day      string
		Modified decimal.NullDecimal
	}

	var rows []row
	err = a.db.Table("transactions").
		Joins("LEFT JOIN journals ON journals.id = transactions.journal_id").
		Where("transactions.account_id = ?", account.ID).
		Where("date(journals.date) >= date(?)", window.Start.Time()).
		Where("date(journals.date) <= date(?)", window.End.AddDays(1).Time()).
		Where("journals.deleted_at IS NULL").
		Where("transactions.deleted_at IS NULL").
		Select("date(journals.date) AS day, SUM(transactions.amount) AS modified").
		Group("date(journals.date)").
		Order("date(journals.date) ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("getting balance changes for account %s failed: %w", account.ID, err)
	}

	for _, r := range rows {
		day, err := types.ParseDate(r.Day)
		if err != nil {
			return nil, err
		}

		current = current.Add(r.Modified.Decimal)
		balances = append(balances, DatedBalance{Date: day, Balance: current})
	}

	a.series.Store(props, balances)

	return balances, nil
}

// BalancesByID returns the balance for each of the accounts at the end of
// the day. This bulk variant always ignores the virtual balance, it backs
// listing pages where the offset would be misleading.
func (a *Aggregator) BalancesByID(ids []uuid.UUID, asOf types.Date) (map[uuid.UUID]decimal.Decimal, error) {
	props := cache.NewProperties(ids, "balances", asOf)
	if cached, ok := a.bulk.Get(props); ok {
		return cached, nil
	}

	type row struct {
		AccountID uuid.UUID
		Aggregate decimal.NullDecimal
	}

	var rows []row
	err := a.db.Table("transactions").
		Joins("LEFT JOIN journals ON journals.id = transactions.journal_id").
		Where("transactions.account_id IN ?", ids).
		Where("date(journals.date) <= date(?)", asOf.Time()).
		Where("journals.deleted_at IS NULL").
		Where("transactions.deleted_at IS NULL").
		Select("transactions.account_id AS account_id, SUM(transactions.amount) AS aggregate").
		Group("transactions.account_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("getting balances for %d accounts failed: %w", len(ids), err)
	}

	result := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, r := range rows {
		result[r.AccountID] = r.Aggregate.Decimal
	}

	a.bulk.Store(props, result)

	return result, nil
}

// transactionSum adds up all transaction legs of the account with a journal
// date up to and including asOf.
func (a *Aggregator) transactionSum(accountID uuid.UUID, asOf types.Date) (decimal.Decimal, error) {
	var sum decimal.NullDecimal

	err := a.db.Table("transactions").
		Joins("LEFT JOIN journals ON journals.id = transactions.journal_id").
		Where("transactions.account_id = ?", accountID).
		Where("date(journals.date) <= date(?)", asOf.Time()).
		Where("journals.deleted_at IS NULL").
		Where("transactions.deleted_at IS NULL").
		Select("SUM(transactions.amount)").
		Row().
		Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("getting transaction sum for account %s failed: %w", accountID, err)
	}

	return sum.Decimal, nil
}
