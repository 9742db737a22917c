package models

import "time"

// CustomerRecord is the durable per-row entity in the customer collection.
// The natural key is (TenantID, CustomerID); the Firestore document ID is
// derived from it so replays of the same row land on the same document.
type CustomerRecord struct {
	TenantID    string `firestore:"tenantId"`
	CustomerID  string `firestore:"customerId"`
	DisplayName string `firestore:"displayName,omitempty"`
	FirstName   string `firestore:"firstName,omitempty"`
	LastName    string `firestore:"lastName,omitempty"`
	Email       string `firestore:"email,omitempty"`
	Phone       string `firestore:"phone,omitempty"`
	SignupAt    string `firestore:"signupAt,omitempty"`
	ProcessedAt string `firestore:"processedAt,omitempty"`
}

// DocID returns the Firestore document ID for the record's natural key.
func (r CustomerRecord) DocID() string {
	return r.TenantID + "#" + r.CustomerID
}

// ProcessedFile marks one fully and successfully processed file. The
// document ID is the content fingerprint, so at most one row exists per
// distinct file content. Its presence implies every row of that file was
// durably stored.
type ProcessedFile struct {
	Fingerprint      string    `firestore:"fingerprint"`
	OriginalFileName string    `firestore:"originalFileName,omitempty"`
	ProcessedAt      time.Time `firestore:"processedAt"`
}
