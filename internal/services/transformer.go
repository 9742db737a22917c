package services

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/clinicore/customer-intake/internal/models"
)

// sourceTimeLayout is the format timestamps arrive in, interpreted in the
// configured source timezone.
const sourceTimeLayout = "2006-01-02 15:04:05"

// Transformer normalizes rows in place: trims identifiers, derives the
// display name, converts the source timestamp to UTC and stamps
// processed_at. Pure row-wise aside from the two clock reads.
type Transformer struct {
	sourceLoc *time.Location
	titler    cases.Caser
	now       func() time.Time
}

// NewTransformer builds a transformer that interprets source timestamps in
// the given IANA timezone.
func NewTransformer(sourceTimezone string) (*Transformer, error) {
	loc, err := time.LoadLocation(sourceTimezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load source timezone %q: %w", sourceTimezone, err)
	}
	return &Transformer{
		sourceLoc: loc,
		titler:    cases.Title(language.English),
		now:       time.Now,
	}, nil
}

// Apply transforms every row of the table. The first unparsable timestamp
// fails the whole file with a TransformError.
func (t *Transformer) Apply(table *models.Table) error {
	processedAt := t.now().UTC().Format(time.RFC3339)

	for _, row := range table.Rows {
		for _, col := range []string{colTenantID, colCustomerID, colMedicalRecord} {
			if v, ok := row[col]; ok {
				row[col] = strings.TrimSpace(v)
			}
		}

		row[colDisplayName] = t.displayName(row)

		for _, col := range []string{colSignupDate, colDate} {
			v, ok := row[col]
			if !ok || v == "" {
				continue
			}
			converted, err := t.toUTC(v)
			if err != nil {
				return &TransformError{Field: col, Value: v, Err: err}
			}
			row[col] = converted
		}

		row[colProcessedAt] = processedAt
	}
	return nil
}

// displayName derives the customer's display name from the name parts, or
// from the combined name column when parts are absent.
func (t *Transformer) displayName(row models.Row) string {
	first := strings.TrimSpace(row[colFirstName])
	last := strings.TrimSpace(row[colLastName])
	if first != "" || last != "" {
		return t.titler.String(strings.TrimSpace(first + " " + last))
	}
	return t.titler.String(strings.TrimSpace(row[colName]))
}

// toUTC converts a source-zone timestamp to the UTC wire format. Values the
// validator already stamped in wire format pass through unchanged.
func (t *Transformer) toUTC(value string) (string, error) {
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.UTC().Format(time.RFC3339), nil
	}
	ts, err := time.ParseInLocation(sourceTimeLayout, value, t.sourceLoc)
	if err != nil {
		return "", err
	}
	return ts.UTC().Format(time.RFC3339), nil
}
