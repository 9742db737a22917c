package gcp

import (
	"context"
	"errors"
)

// Sentinel errors returned by TableStore implementations so callers can
// branch on conditional-write outcomes without inspecting provider codes.
var (
	ErrItemNotFound = errors.New("item not found")
	ErrItemExists   = errors.New("item already exists")
)

// ObjectStore is the narrow contract the pipeline needs from the object
// storage service.
type ObjectStore interface {
	Get(ctx context.Context, location, key string) ([]byte, error)
	Copy(ctx context.Context, location, srcKey, dstKey string) error
	Delete(ctx context.Context, location, key string) error
}

// TableStore is the narrow contract the pipeline needs from the keyed table
// service. PutItemIfAbsent returns ErrItemExists when the key is taken;
// GetItem returns ErrItemNotFound when it is not.
type TableStore interface {
	GetItem(ctx context.Context, collection, key string) (map[string]interface{}, error)
	PutItemIfAbsent(ctx context.Context, collection, key string, item interface{}) error
	UpdateItem(ctx context.Context, collection, key string, fields map[string]interface{}) error
}

// MessagePublisher publishes one message to a named topic.
type MessagePublisher interface {
	Publish(ctx context.Context, topic string, message []byte) error
}
