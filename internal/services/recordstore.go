package services

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/clinicore/customer-intake/internal/gcp"
	"github.com/clinicore/customer-intake/internal/models"
)

// maxConcurrentWrites caps parallel record writes for one file.
const maxConcurrentWrites = 8

// RecordStore persists one customer record per natural key with
// insert-else-update semantics, so replays of the same row converge to the
// same final state.
type RecordStore struct {
	store      gcp.TableStore
	collection string
}

// NewRecordStore builds a record store over the given table collection.
func NewRecordStore(store gcp.TableStore, collection string) *RecordStore {
	return &RecordStore{store: store, collection: collection}
}

// Upsert writes one record. The conditional insert succeeds only if the
// natural key is free; on conflict the mutable fields are updated and the
// key fields left untouched.
func (s *RecordStore) Upsert(ctx context.Context, rec models.CustomerRecord) (models.UpsertResult, error) {
	err := s.store.PutItemIfAbsent(ctx, s.collection, rec.DocID(), rec)
	if err == nil {
		return models.UpsertInserted, nil
	}
	if !errors.Is(err, gcp.ErrItemExists) {
		return "", &StoreError{TenantID: rec.TenantID, CustomerID: rec.CustomerID, Err: err}
	}

	fields := map[string]interface{}{
		"displayName": rec.DisplayName,
		"firstName":   rec.FirstName,
		"lastName":    rec.LastName,
		"email":       rec.Email,
		"phone":       rec.Phone,
		"signupAt":    rec.SignupAt,
		"processedAt": rec.ProcessedAt,
	}
	if err := s.store.UpdateItem(ctx, s.collection, rec.DocID(), fields); err != nil {
		return "", &StoreError{TenantID: rec.TenantID, CustomerID: rec.CustomerID, Err: err}
	}
	return models.UpsertUpdated, nil
}

// StoreAll writes every record of one file. Distinct natural keys are
// written concurrently; rows sharing a key stay on one worker in file order
// so the last write in the file wins. The first failure cancels remaining
// work and is surfaced to the caller.
func (s *RecordStore) StoreAll(ctx context.Context, records []models.CustomerRecord) error {
	var keyOrder []string
	groups := make(map[string][]models.CustomerRecord)
	for _, rec := range records {
		key := rec.DocID()
		if _, seen := groups[key]; !seen {
			keyOrder = append(keyOrder, key)
		}
		groups[key] = append(groups[key], rec)
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentWrites)

	for _, key := range keyOrder {
		group := groups[key]
		eg.Go(func() error {
			for _, rec := range group {
				if _, err := s.Upsert(gctx, rec); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return eg.Wait()
}
