// Package report builds the per-account balance reconciliation report.
//
// The report merges budgeted spend, unbudgeted spend and tag-covered
// transfers into a single per-account ledger view.
package report

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/patrickkostjens/firefly-iii/internal/budget"
	"github.com/patrickkostjens/firefly-iii/internal/cache"
	"github.com/patrickkostjens/firefly-iii/internal/models"
	"github.com/patrickkostjens/firefly-iii/internal/types"
)

// Role describes what a line of the report represents.
type Role string

const (
	// RoleDefault lines carry spend per budget limit, or unbudgeted spend
	// when no budget is set.
	RoleDefault Role = "default"
	// RoleTag lines carry the amounts covered by balancing act transfers.
	RoleTag Role = "tag"
	// RoleDiff lines carry the unbudgeted spend that remains after
	// crediting the tag-covered amounts.
	RoleDiff Role = "diff"
)

// Entry is the figure of one line for one account.
type Entry struct {
	Account models.Account  `json:"account"`
	Spent   decimal.Decimal `json:"spent"`
	Left    decimal.Decimal `json:"left"`
}

// Line is one row of the report, one Entry per account.
type Line struct {
	Role    Role                `json:"role"`
	Budget  *models.Budget      `json:"budget"`
	Limit   *models.BudgetLimit `json:"limit"`
	Entries []Entry             `json:"entries"`
}

// TotalSpent sums the spent figures of all entries of the line.
func (l Line) TotalSpent() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range l.Entries {
		sum = sum.Add(e.Spent)
	}

	return sum
}

// entryFor returns the entry for the account, reporting whether one exists.
func (l Line) entryFor(accountID uuid.UUID) (Entry, bool) {
	for _, e := range l.Entries {
		if e.Account.ID == accountID {
			return e, true
		}
	}

	return Entry{}, false
}

// Report is a derived, never persisted structure: a header listing the
// accounts and the ordered report lines.
type Report struct {
	Accounts []models.Account `json:"accounts"`
	Lines    []Line           `json:"lines"`
}

// Builder constructs balance reports.
type Builder struct {
	db      *gorm.DB
	budgets *budget.Engine
	reports *cache.Cache[Report]
}

// NewBuilder returns a Builder reading from db.
func NewBuilder(db *gorm.DB) *Builder {
	return &Builder{
		db:      db,
		budgets: budget.New(db),
		reports: cache.New[Report]("balance-report"),
	}
}

// Invalidate drops all cached reports.
func (b *Builder) Invalidate() {
	b.reports.Invalidate()
}

// Build assembles the balance report for the accounts over the window.
//
// Lines for a real budget appear only if they show net expense: a budget
// line whose total spend is not negative is dropped from the final report.
func (b *Builder) Build(accounts []models.Account, window types.Range) (Report, error) {
	ids := accountIDs(accounts)

	props := cache.NewProperties(ids, "balance-report", window)
	if cached, ok := b.reports.Get(props); ok {
		return cached, nil
	}

	log.Debug().Str("range", window.String()).Int("accounts", len(accounts)).Msg("start of balance report")

	limits, err := b.limitsInRange(window)
	if err != nil {
		return Report{}, err
	}

	var lines []Line
	for _, limit := range limits {
		line, err := b.limitLine(limit, accounts)
		if err != nil {
			return Report{}, err
		}

		lines = append(lines, line)
	}

	noBudgetLine, err := b.noBudgetLine(accounts, window)
	if err != nil {
		return Report{}, err
	}

	tagLine, err := b.tagLine(accounts, ids, window)
	if err != nil {
		return Report{}, err
	}

	diffLine := leftUnbalancedLine(noBudgetLine, tagLine)

	lines = append(lines, noBudgetLine, tagLine, diffLine)

	result := Report{
		Accounts: accounts,
		Lines:    removeUnusedBudgets(lines),
	}

	b.reports.Store(props, result)

	return result, nil
}

// limitsInRange returns every budget limit overlapping the window, with its
// budget preloaded.
func (b *Builder) limitsInRange(window types.Range) ([]models.BudgetLimit, error) {
	var limits []models.BudgetLimit

	err := b.db.
		Preload("Budget").
		Where("date(start_date) <= date(?)", window.End.Time()).
		Where("date(end_date) >= date(?)", window.Start.Time()).
		Order("start_date ASC").
		Find(&limits).Error
	if err != nil {
		return nil, fmt.Errorf("getting budget limits in %s failed: %w", window, err)
	}

	return limits, nil
}

// limitLine builds the line for one budget limit, one entry per account
// with its spend in the limit window.
func (b *Builder) limitLine(limit models.BudgetLimit, accounts []models.Account) (Line, error) {
	line := Line{
		Role:   RoleDefault,
		Budget: &limit.Budget,
		Limit:  &limit,
	}

	for _, account := range accounts {
		spent, err := b.budgets.SpentInPeriod(limit.Budget, []uuid.UUID{account.ID}, limit.Window())
		if err != nil {
			return Line{}, err
		}

		line.Entries = append(line.Entries, Entry{Account: account, Spent: spent})
	}

	return line, nil
}

// noBudgetLine builds the line summing the unbudgeted spend per account.
func (b *Builder) noBudgetLine(accounts []models.Account, window types.Range) (Line, error) {
	line := Line{Role: RoleDefault}

	for _, account := range accounts {
		spent, err := b.budgets.SpentWithoutBudget([]uuid.UUID{account.ID}, window)
		if err != nil {
			return Line{}, err
		}

		line.Entries = append(line.Entries, Entry{Account: account, Spent: spent})
	}

	return line, nil
}

// tagLine builds the line with the amounts covered by balancing acts: for
// each account, the sum of destination legs of transfers carrying a tag
// with mode balancingAct whose source and destination accounts are both in
// the account set.
func (b *Builder) tagLine(accounts []models.Account, ids []uuid.UUID, window types.Range) (Line, error) {
	type row struct {
		AccountID uuid.UUID
		Sum       decimal.NullDecimal
	}

	var rows []row
	err := b.db.Table("tags").
		Joins("LEFT JOIN journal_tags ON journal_tags.tag_id = tags.id").
		Joins("LEFT JOIN journals ON journals.id = journal_tags.journal_id").
		Joins("LEFT JOIN transactions t_source ON t_source.journal_id = journals.id AND t_source.amount < 0").
		Joins("LEFT JOIN transactions t_destination ON t_destination.journal_id = journals.id AND t_destination.amount > 0").
		Where("tags.mode = ?", models.TagModeBalancingAct).
		Where("journals.type = ?", models.TransactionTypeTransfer).
		Where("date(journals.date) >= date(?)", window.Start.Time()).
		Where("date(journals.date) <= date(?)", window.End.Time()).
		Where("journals.deleted_at IS NULL").
		Where("t_source.account_id IN ?", ids).
		Where("t_destination.account_id IN ?", ids).
		Select("t_destination.account_id AS account_id, SUM(t_destination.amount) AS sum").
		Group("t_destination.account_id").
		Find(&rows).Error
	if err != nil {
		return Line{}, fmt.Errorf("getting balancing act transfers failed: %w", err)
	}

	covered := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, r := range rows {
		covered[r.AccountID] = r.Sum.Decimal
	}

	// Accounts without any balancing act transfer get no entry. The diff
	// line below relies on this to skip them.
	line := Line{Role: RoleTag}
	for _, account := range accounts {
		left, ok := covered[account.ID]
		if !ok {
			continue
		}

		line.Entries = append(line.Entries, Entry{
			Account: account,
			Left:    left,
		})
	}

	return line, nil
}

// leftUnbalancedLine derives the remaining unbudgeted spend after crediting
// the tag-covered amounts.
//
// An account without a corresponding tag entry contributes no entry at all,
// not a zero one.
func leftUnbalancedLine(noBudgetLine, tagLine Line) Line {
	line := Line{Role: RoleDiff}

	for _, entry := range noBudgetLine.Entries {
		tagEntry, ok := tagLine.entryFor(entry.Account.ID)
		if !ok {
			continue
		}

		line.Entries = append(line.Entries, Entry{
			Account: entry.Account,
			Spent:   tagEntry.Left.Add(entry.Spent),
		})
	}

	return line
}

// removeUnusedBudgets drops every line with a real budget whose total spend
// is not negative.
func removeUnusedBudgets(lines []Line) []Line {
	kept := make([]Line, 0, len(lines))
	for _, line := range lines {
		if line.Budget != nil && !line.TotalSpent().IsNegative() {
			continue
		}

		kept = append(kept, line)
	}

	return kept
}

func accountIDs(accounts []models.Account) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.ID)
	}

	return ids
}
