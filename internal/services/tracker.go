package services

import (
	"context"
	"errors"
	"time"

	"github.com/clinicore/customer-intake/internal/gcp"
	"github.com/clinicore/customer-intake/internal/models"
)

// DuplicateTracker records which file contents have been fully processed.
// A fingerprint present in the tracker collection means every row of that
// file was durably stored by a prior run.
type DuplicateTracker struct {
	store      gcp.TableStore
	collection string
}

// NewDuplicateTracker builds a tracker over the given table collection.
func NewDuplicateTracker(store gcp.TableStore, collection string) *DuplicateTracker {
	return &DuplicateTracker{store: store, collection: collection}
}

// IsProcessed reports whether the fingerprint was already fully processed.
// A store failure comes back as a DuplicateLookupError; callers treat it as
// "not processed" so a transient tracker outage never drops a file.
func (d *DuplicateTracker) IsProcessed(ctx context.Context, fingerprint string) (bool, error) {
	_, err := d.store.GetItem(ctx, d.collection, fingerprint)
	if err != nil {
		if errors.Is(err, gcp.ErrItemNotFound) {
			return false, nil
		}
		return false, &DuplicateLookupError{Fingerprint: fingerprint, Err: err}
	}
	return true, nil
}

// MarkProcessed persists the completion record. Must run only after every
// row of the file is durably stored. A concurrent run winning the write is
// fine: the record it created says the same thing.
func (d *DuplicateTracker) MarkProcessed(ctx context.Context, fingerprint, fileName string, at time.Time) error {
	record := models.ProcessedFile{
		Fingerprint:      fingerprint,
		OriginalFileName: fileName,
		ProcessedAt:      at,
	}
	err := d.store.PutItemIfAbsent(ctx, d.collection, fingerprint, record)
	if errors.Is(err, gcp.ErrItemExists) {
		return nil
	}
	return err
}
