package services

// Well-known column names. The required set is configuration; these are the
// columns the validator and transformer recognize when present.
const (
	colTenantID      = "tenant_id"
	colCustomerID    = "customer_id"
	colMedicalRecord = "medical_record_number"
	colName          = "name"
	colFirstName     = "first_name"
	colLastName      = "last_name"
	colEmail         = "email"
	colPhone         = "phone"
	colSignupDate    = "signup_date"
	colDate          = "date"
	colDisplayName   = "display_name"
	colProcessedAt   = "processed_at"
)
