package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/customer-intake/internal/models"
)

var testRequiredColumns = []string{"tenant_id", "customer_id", "name", "email", "phone"}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestValidateMissingRequiredColumnsFailsWholeFile(t *testing.T) {
	v := NewSchemaValidator(testRequiredColumns, "unknown-tenant")
	table := &models.Table{
		Columns: []string{"tenant_id", "customer_id", "name"},
		Rows:    []models.Row{{"tenant_id": "acme", "customer_id": "1", "name": "Jane"}},
	}

	_, err := v.Validate(table)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.ElementsMatch(t, []string{"email", "phone"}, schemaErr.Missing)
}

func TestValidateEmptyTableFails(t *testing.T) {
	v := NewSchemaValidator(testRequiredColumns, "unknown-tenant")
	table := &models.Table{Columns: testRequiredColumns}

	_, err := v.Validate(table)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Empty(t, schemaErr.Missing)
}

func TestValidateFillsTextDefaults(t *testing.T) {
	v := NewSchemaValidator(testRequiredColumns, "unknown-tenant")
	table := &models.Table{
		Columns: testRequiredColumns,
		Rows: []models.Row{
			{"tenant_id": "acme", "customer_id": "1", "name": "Jane", "email": "", "phone": ""},
			{"tenant_id": "acme", "customer_id": "2", "name": "", "email": "j@x.com", "phone": "555"},
		},
	}

	out, err := v.Validate(table)
	require.NoError(t, err)

	require.Len(t, out.Rows, 2)
	assert.Equal(t, "unknown", out.Rows[0]["email"])
	assert.Equal(t, "unknown", out.Rows[0]["phone"])
	assert.Equal(t, "unknown", out.Rows[1]["name"])
	assert.Equal(t, "j@x.com", out.Rows[1]["email"])
}

func TestValidateFillsTimeDefaultWithCurrentTimestamp(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	v := NewSchemaValidator([]string{"tenant_id", "customer_id"}, "unknown-tenant")
	v.now = fixedClock(now)
	table := &models.Table{
		Columns: []string{"tenant_id", "customer_id", "signup_date"},
		Rows:    []models.Row{{"tenant_id": "acme", "customer_id": "1", "signup_date": ""}},
	}

	out, err := v.Validate(table)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01T12:00:00Z", out.Rows[0]["signup_date"])
}

func TestValidateBackfillsAbsentTenantColumn(t *testing.T) {
	v := NewSchemaValidator([]string{"customer_id", "name"}, "unknown-tenant")
	table := &models.Table{
		Columns: []string{"customer_id", "name"},
		Rows: []models.Row{
			{"customer_id": "1", "name": "Jane"},
			{"customer_id": "2", "name": "Joe"},
		},
	}

	out, err := v.Validate(table)
	require.NoError(t, err)

	assert.True(t, out.HasColumn("tenant_id"))
	for _, row := range out.Rows {
		assert.Equal(t, "unknown-tenant", row["tenant_id"])
	}
}

func TestValidateNeverDropsRows(t *testing.T) {
	v := NewSchemaValidator(testRequiredColumns, "unknown-tenant")
	table := &models.Table{
		Columns: testRequiredColumns,
		Rows: []models.Row{
			{"tenant_id": "acme", "customer_id": "1", "name": "", "email": "", "phone": ""},
			{"tenant_id": "acme", "customer_id": "2", "name": "", "email": "", "phone": ""},
			{"tenant_id": "acme", "customer_id": "3", "name": "", "email": "", "phone": ""},
		},
	}

	out, err := v.Validate(table)
	require.NoError(t, err)
	assert.Len(t, out.Rows, 3)
}
