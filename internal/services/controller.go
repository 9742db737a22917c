package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"cloud.google.com/go/storage"

	"github.com/clinicore/customer-intake/internal/gcp"
	"github.com/clinicore/customer-intake/internal/models"
)

// GCSEvent is the finalize-event payload delivered by the storage trigger.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// IntakeFunction orchestrates the per-file pipeline: fingerprint, dedup
// check, parse, validate, transform, per-row upsert, then terminal routing.
// Exactly one of skip/archive/quarantine happens per file notification.
type IntakeFunction struct {
	objects     gcp.ObjectStore
	tracker     *DuplicateTracker
	records     *RecordStore
	router      *FileRouter
	validator   *SchemaValidator
	transformer *Transformer
	config      IntakeConfig
	now         func() time.Time
}

// NewIntakeFunction wires the pipeline from injected capabilities. Used
// directly by tests; production wiring goes through NewIntakeProcessor.
func NewIntakeFunction(objects gcp.ObjectStore, tables gcp.TableStore, publisher gcp.MessagePublisher, config IntakeConfig) (*IntakeFunction, error) {
	transformer, err := NewTransformer(config.SourceTimezone)
	if err != nil {
		return nil, err
	}
	return &IntakeFunction{
		objects:     objects,
		tracker:     NewDuplicateTracker(tables, config.FileTrackerCollection),
		records:     NewRecordStore(tables, config.CustomerCollection),
		router:      NewFileRouter(objects, publisher, config.QuarantineTopic),
		validator:   NewSchemaValidator(config.RequiredColumns, config.DefaultTenant),
		transformer: transformer,
		config:      config,
		now:         time.Now,
	}, nil
}

// NewIntakeProcessor creates the production instance backed by the real GCP
// clients, configured from the environment.
func NewIntakeProcessor(ctx context.Context) (*IntakeFunction, error) {
	config := NewConfigFromEnv()
	if config.ProjectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	pubsubClient, err := gcp.NewPubSubClient(ctx, config.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	f, err := NewIntakeFunction(
		gcp.NewGCSObjectStore(storageClient),
		gcp.NewFirestoreTable(firestoreClient),
		gcp.NewPubSubPublisher(pubsubClient),
		config,
	)
	if err != nil {
		return nil, err
	}
	slog.Info("Intake processor initialized.",
		"customerCollection", config.CustomerCollection,
		"fileTrackerCollection", config.FileTrackerCollection,
		"quarantineTopic", config.QuarantineTopic)
	return f, nil
}

// ProcessBatch handles a batch of file notifications with per-file
// isolation: one file's processing error quarantines that file and the loop
// moves on. The batch itself only fails when terminal routing fails, since
// there is no fallback location left at that point.
func (f *IntakeFunction) ProcessBatch(ctx context.Context, notifications []models.FileNotification) error {
	for _, n := range notifications {
		outcome, err := f.processFile(ctx, n)
		if err != nil {
			return err
		}
		slog.Info("File notification handled.",
			"gcsBucket", n.StorageLocation, "gcsObject", n.ObjectKey, "outcome", string(outcome))
	}
	return nil
}

// processFile runs the pipeline for one notification. The returned error is
// a routing failure only; pipeline errors end in quarantine and a nil error.
func (f *IntakeFunction) processFile(ctx context.Context, n models.FileNotification) (models.Outcome, error) {
	logCtx := slog.With("gcsBucket", n.StorageLocation, "gcsObject", n.ObjectKey)
	logCtx.Info("Processing file notification.")

	data, err := f.objects.Get(ctx, n.StorageLocation, n.ObjectKey)
	if err != nil {
		fetchErr := &FetchError{Location: n.StorageLocation, Key: n.ObjectKey, Err: err}
		logCtx.Error("Failed to fetch object", "error", fetchErr)
		return f.quarantine(ctx, logCtx, n, fetchErr)
	}

	fingerprint := Fingerprint(data)
	logCtx = logCtx.With("fingerprint", fingerprint)

	// The dedup check fails open: a tracker outage must not drop a new
	// file, so a lookup error is logged and the file treated as unseen.
	processed, err := f.tracker.IsProcessed(ctx, fingerprint)
	if err != nil {
		var lookupErr *DuplicateLookupError
		if !errors.As(err, &lookupErr) {
			lookupErr = &DuplicateLookupError{Fingerprint: fingerprint, Err: err}
		}
		logCtx.Warn("Duplicate lookup failed, continuing as not processed.", "error", lookupErr)
		processed = false
	}
	if processed {
		logCtx.Info("Duplicate file content detected. Removing without re-processing.")
		if err := f.objects.Delete(ctx, n.StorageLocation, n.ObjectKey); err != nil {
			return "", fmt.Errorf("failed to delete duplicate %s: %w", n.ObjectKey, err)
		}
		return models.OutcomeSkippedDuplicate, nil
	}

	table, err := ParseCSV(data)
	if err != nil {
		logCtx.Error("Failed to parse CSV", "error", err)
		return f.quarantine(ctx, logCtx, n, err)
	}

	if _, err := f.validator.Validate(table); err != nil {
		logCtx.Error("Schema validation failed", "error", err)
		return f.quarantine(ctx, logCtx, n, err)
	}

	if err := f.transformer.Apply(table); err != nil {
		logCtx.Error("Transformation failed", "error", err)
		return f.quarantine(ctx, logCtx, n, err)
	}

	records := rowsToRecords(table)
	if err := f.records.StoreAll(ctx, records); err != nil {
		logCtx.Error("Failed to store records", "error", err)
		return f.quarantine(ctx, logCtx, n, err)
	}
	logCtx.Info("All rows stored.", "rowCount", len(records))

	// Mark only after every row is durably stored, so a tracker hit always
	// implies a fully stored file.
	if err := f.tracker.MarkProcessed(ctx, fingerprint, path.Base(n.ObjectKey), f.now().UTC()); err != nil {
		logCtx.Error("Failed to mark file as processed", "error", err)
		return f.quarantine(ctx, logCtx, n, err)
	}

	dstKey, err := f.router.Archive(ctx, n.StorageLocation, n.ObjectKey)
	if err != nil {
		logCtx.Error("Failed to archive file", "error", err)
		return "", err
	}
	logCtx.Info("File archived.", "archiveKey", dstKey)
	return models.OutcomeArchived, nil
}

// quarantine routes a failed file to the quarantine prefix and fires the
// failure notification. Its own errors propagate to the batch caller.
func (f *IntakeFunction) quarantine(ctx context.Context, logCtx *slog.Logger, n models.FileNotification, cause error) (models.Outcome, error) {
	dstKey, err := f.router.Quarantine(ctx, n.StorageLocation, n.ObjectKey, cause)
	if err != nil {
		logCtx.Error("CRITICAL: Failed to quarantine file after a processing error.", "quarantineError", err, "cause", cause)
		return "", err
	}
	logCtx.Info("File quarantined.", "quarantineKey", dstKey, "cause", cause.Error())
	return models.OutcomeQuarantined, nil
}

// rowsToRecords maps validated, transformed rows onto customer records in
// file order.
func rowsToRecords(table *models.Table) []models.CustomerRecord {
	records := make([]models.CustomerRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		customerID := row[colCustomerID]
		if customerID == "" {
			customerID = row[colMedicalRecord]
		}
		signup := row[colSignupDate]
		if signup == "" {
			signup = row[colDate]
		}
		records = append(records, models.CustomerRecord{
			TenantID:    row[colTenantID],
			CustomerID:  customerID,
			DisplayName: row[colDisplayName],
			FirstName:   row[colFirstName],
			LastName:    row[colLastName],
			Email:       row[colEmail],
			Phone:       row[colPhone],
			SignupAt:    signup,
			ProcessedAt: row[colProcessedAt],
		})
	}
	return records
}
