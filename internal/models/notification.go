package models

// FileNotification identifies one uploaded object awaiting processing.
// One is produced per trigger event; the pipeline treats each independently.
type FileNotification struct {
	StorageLocation string `json:"storageLocation"`
	ObjectKey       string `json:"objectKey"`
}

// Outcome is the terminal result of processing one file notification.
// Exactly one outcome is reached per notification.
type Outcome string

const (
	OutcomeSkippedDuplicate Outcome = "SKIPPED_DUPLICATE"
	OutcomeArchived         Outcome = "ARCHIVED"
	OutcomeQuarantined      Outcome = "QUARANTINED"
)

// UpsertResult reports which branch of the insert-else-update protocol ran.
type UpsertResult string

const (
	UpsertInserted UpsertResult = "INSERTED"
	UpsertUpdated  UpsertResult = "UPDATED"
)
