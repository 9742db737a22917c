package services

import (
	"fmt"
	"strings"
)

// FetchError means the source object could not be read.
type FetchError struct {
	Location string
	Key      string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s/%s: %v", e.Location, e.Key, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SchemaError means the parsed table is unusable: required columns are
// missing or the file carried no rows.
type SchemaError struct {
	Reason  string
	Missing []string
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("schema: %s: %s", e.Reason, strings.Join(e.Missing, ", "))
	}
	return "schema: " + e.Reason
}

// TransformError means a field value could not be normalized, typically an
// unparsable timestamp.
type TransformError struct {
	Field string
	Value string
	Err   error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform %s=%q: %v", e.Field, e.Value, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// StoreError means a row write failed. One failed row fails the whole file.
type StoreError struct {
	TenantID   string
	CustomerID string
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store record %s/%s: %v", e.TenantID, e.CustomerID, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// DuplicateLookupError means the file tracker could not be queried. It is
// non-fatal: the caller logs it and proceeds as if the file were new.
type DuplicateLookupError struct {
	Fingerprint string
	Err         error
}

func (e *DuplicateLookupError) Error() string {
	return fmt.Sprintf("duplicate lookup for %s: %v", e.Fingerprint, e.Err)
}

func (e *DuplicateLookupError) Unwrap() error { return e.Err }
