package gcp

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
// It centralizes client creation for all services.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// FirestoreTable implements TableStore on Firestore collections. Collections
// map to tables and document IDs to item keys.
type FirestoreTable struct {
	client *firestore.Client
}

// NewFirestoreTable wraps an existing Firestore client.
func NewFirestoreTable(client *firestore.Client) *FirestoreTable {
	return &FirestoreTable{client: client}
}

// GetItem fetches one document by key. Returns ErrItemNotFound when no
// document exists for the key.
func (t *FirestoreTable) GetItem(ctx context.Context, collection, key string) (map[string]interface{}, error) {
	snap, err := t.client.Collection(collection).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, key, err)
	}
	return snap.Data(), nil
}

// PutItemIfAbsent creates the document only if the key is free. Returns
// ErrItemExists when another writer got there first, which is how callers
// drive the insert-else-update protocol.
func (t *FirestoreTable) PutItemIfAbsent(ctx context.Context, collection, key string, item interface{}) error {
	_, err := t.client.Collection(collection).Doc(key).Create(ctx, item)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return ErrItemExists
		}
		return fmt.Errorf("failed to create %s/%s: %w", collection, key, err)
	}
	return nil
}

// UpdateItem overwrites the given fields of an existing document, leaving
// all others untouched. Field order is normalized so writes are deterministic.
func (t *FirestoreTable) UpdateItem(ctx context.Context, collection, key string, fields map[string]interface{}) error {
	paths := make([]string, 0, len(fields))
	for p := range fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	updates := make([]firestore.Update, 0, len(fields))
	for _, p := range paths {
		updates = append(updates, firestore.Update{Path: p, Value: fields[p]})
	}

	if _, err := t.client.Collection(collection).Doc(key).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, key, err)
	}
	return nil
}
