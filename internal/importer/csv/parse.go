// Package csv parses transaction CSV files into journal previews.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/patrickkostjens/firefly-iii/internal/models"
)

// The field order of an import file.
const (
	Date = iota
	Description
	Type
	Amount
	Source
	Destination
	Budget
	Category
	Tag
)

const fields = 9

// JournalPreview is a parsed import row. Account, budget, category and tag
// references are still names, resolving them against existing resources
// happens when the preview is stored.
type JournalPreview struct {
	Journal            models.Journal
	Amount             decimal.Decimal
	SourceAccount      string
	DestinationAccount string
	Budget             string
	Category           string
	Tag                string
}

var ErrAmountNotPositive = errors.New("import amounts must be larger than zero")

// Parse reads an import CSV file.
//
// The first line is expected to be a header and is skipped. Malformed rows
// fail fast with their line number, nothing is imported partially.
func Parse(f io.Reader) ([]JournalPreview, error) {
	reader := csv.NewReader(f)

	// Records are copied into JournalPreview values, the backing array
	// can be reused.
	reader.ReuseRecord = true
	reader.FieldsPerRecord = fields

	var previews []JournalPreview

	// Skip the first line
	_, err := reader.Read()
	if err == io.EOF {
		return []JournalPreview{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read import file header: %w", err)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return csvReadError(reader, fmt.Errorf("could not read line in CSV: %w", err))
		}

		date, err := time.Parse("2006-01-02", record[Date])
		if err != nil {
			return csvReadError(reader, fmt.Errorf("could not parse date: %w", err))
		}

		amount, err := decimal.NewFromString(record[Amount])
		if err != nil {
			return csvReadError(reader, fmt.Errorf("could not parse amount: %w", err))
		}

		if !amount.IsPositive() {
			return csvReadError(reader, ErrAmountNotPositive)
		}

		preview := JournalPreview{
			Journal: models.Journal{
				Date:        date,
				Description: strings.TrimSpace(record[Description]),
				Type:        models.TransactionType(record[Type]),
			},
			Amount:             amount,
			SourceAccount:      strings.TrimSpace(record[Source]),
			DestinationAccount: strings.TrimSpace(record[Destination]),
			Budget:             strings.TrimSpace(record[Budget]),
			Category:           strings.TrimSpace(record[Category]),
			Tag:                strings.TrimSpace(record[Tag]),
		}

		switch preview.Journal.Type {
		case models.TransactionTypeWithdrawal, models.TransactionTypeDeposit, models.TransactionTypeTransfer:
		default:
			return csvReadError(reader, fmt.Errorf("%w: %q", models.ErrJournalTypeInvalid, record[Type]))
		}

		previews = append(previews, preview)
	}

	return previews, nil
}

// Legs returns the two balanced transaction legs for the preview, given the
// resolved account IDs.
func (p JournalPreview) Legs(source, destination models.Account) []models.Transaction {
	return []models.Transaction{
		{AccountID: source.ID, Amount: p.Amount.Neg()},
		{AccountID: destination.ID, Amount: p.Amount},
	}
}

// csvReadError returns the error annotated with the line it occurred on.
func csvReadError(r *csv.Reader, err error) ([]JournalPreview, error) {
	// The field does not matter for the message, only the line number.
	line, _ := r.FieldPos(1)

	return []JournalPreview{}, fmt.Errorf("error in line %d of the CSV: %w", line, err)
}
