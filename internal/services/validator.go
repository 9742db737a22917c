package services

import (
	"time"

	"github.com/clinicore/customer-intake/internal/models"
)

type policyKind int

const (
	policyText policyKind = iota
	policyTime
)

// defaultPolicy describes how a missing value in a recognized optional
// column is filled.
type defaultPolicy struct {
	kind     policyKind
	sentinel string
}

// defaultPolicies is the single source of truth for per-column defaulting.
// Text columns get a sentinel, time columns get the current timestamp.
var defaultPolicies = map[string]defaultPolicy{
	colName:       {kind: policyText, sentinel: "unknown"},
	colFirstName:  {kind: policyText, sentinel: "unknown"},
	colLastName:   {kind: policyText, sentinel: "unknown"},
	colEmail:      {kind: policyText, sentinel: "unknown"},
	colPhone:      {kind: policyText, sentinel: "unknown"},
	colSignupDate: {kind: policyTime},
	colDate:       {kind: policyTime},
}

// SchemaValidator checks required columns and fills defaults for recognized
// optional ones. Incomplete rows are kept usable rather than rejected; only
// a missing required column or an empty table fails the file.
type SchemaValidator struct {
	required      []string
	defaultTenant string
	now           func() time.Time
}

// NewSchemaValidator builds a validator for the given required column set.
func NewSchemaValidator(required []string, defaultTenant string) *SchemaValidator {
	return &SchemaValidator{
		required:      required,
		defaultTenant: defaultTenant,
		now:           time.Now,
	}
}

// Validate verifies the table against the required column set and applies
// the defaulting policies in place. It never removes rows.
func (v *SchemaValidator) Validate(table *models.Table) (*models.Table, error) {
	var missing []string
	for _, col := range v.required {
		if !table.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Reason: "missing required columns", Missing: missing}
	}
	if len(table.Rows) == 0 {
		return nil, &SchemaError{Reason: "file has no data rows"}
	}

	// A file without a tenant column is still accepted: every row is
	// assigned the configured default tenant.
	if !table.HasColumn(colTenantID) {
		table.Columns = append(table.Columns, colTenantID)
		for _, row := range table.Rows {
			row[colTenantID] = v.defaultTenant
		}
	}

	for _, col := range table.Columns {
		policy, recognized := defaultPolicies[col]
		if !recognized {
			continue
		}
		for _, row := range table.Rows {
			if row[col] != "" {
				continue
			}
			switch policy.kind {
			case policyText:
				row[col] = policy.sentinel
			case policyTime:
				row[col] = v.now().UTC().Format(time.RFC3339)
			}
		}
	}

	return table, nil
}
