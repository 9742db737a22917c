package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GCSObjectStore implements ObjectStore on Cloud Storage buckets.
type GCSObjectStore struct {
	client *storage.Client
}

// NewGCSObjectStore wraps an existing storage client.
func NewGCSObjectStore(client *storage.Client) *GCSObjectStore {
	return &GCSObjectStore{client: client}
}

// Get reads the full content of an object.
func (s *GCSObjectStore) Get(ctx context.Context, location, key string) ([]byte, error) {
	reader, err := s.client.Bucket(location).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", location, key, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", location, key, err)
	}
	return data, nil
}

// Copy duplicates an object within the same bucket. The destination write is
// conditional on the destination not existing; a 412 precondition failure
// means a previous attempt already landed the copy, so retried
// archive/quarantine moves stay idempotent.
func (s *GCSObjectStore) Copy(ctx context.Context, location, srcKey, dstKey string) error {
	bucket := s.client.Bucket(location)
	dst := bucket.Object(dstKey).If(storage.Conditions{DoesNotExist: true})

	if _, err := dst.CopierFrom(bucket.Object(srcKey)).Run(ctx); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == 412 {
			slog.Info("Destination object already exists, treating copy as done.",
				"bucket", location, "object", dstKey)
			return nil
		}
		return fmt.Errorf("failed to copy gs://%s/%s to %s: %w", location, srcKey, dstKey, err)
	}
	return nil
}

// Delete removes an object. A missing object is treated as already deleted.
func (s *GCSObjectStore) Delete(ctx context.Context, location, key string) error {
	err := s.client.Bucket(location).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete gs://%s/%s: %w", location, key, err)
	}
	return nil
}
