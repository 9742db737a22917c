package services

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/customer-intake/internal/gcp"
)

const (
	archivePrefix    = "archive/"
	quarantinePrefix = "quarantine/"
)

// quarantineNotice is the failure message published when a file is
// quarantined.
type quarantineNotice struct {
	NotificationID  string    `json:"notificationId"`
	StorageLocation string    `json:"storageLocation"`
	ObjectKey       string    `json:"objectKey"`
	QuarantineKey   string    `json:"quarantineKey"`
	Error           string    `json:"error"`
	QuarantinedAt   time.Time `json:"quarantinedAt"`
}

// FileRouter moves a source file to its terminal location. Both moves are
// copy-then-delete: a crash between the two steps can briefly leave the file
// in both places, and the conditional copy in the object store makes the
// retry converge instead of failing.
type FileRouter struct {
	objects   gcp.ObjectStore
	publisher gcp.MessagePublisher
	topic     string
	now       func() time.Time
}

// NewFileRouter builds a router that quarantine-notifies on the given topic.
func NewFileRouter(objects gcp.ObjectStore, publisher gcp.MessagePublisher, topic string) *FileRouter {
	return &FileRouter{
		objects:   objects,
		publisher: publisher,
		topic:     topic,
		now:       time.Now,
	}
}

// Archive moves the file under the archive prefix and returns the
// destination key.
func (r *FileRouter) Archive(ctx context.Context, location, key string) (string, error) {
	dstKey := archivePrefix + path.Base(key)
	if err := r.objects.Copy(ctx, location, key, dstKey); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", key, err)
	}
	if err := r.objects.Delete(ctx, location, key); err != nil {
		return "", fmt.Errorf("failed to remove archived original %s: %w", key, err)
	}
	return dstKey, nil
}

// Quarantine moves the file under the quarantine prefix, then publishes a
// failure notice carrying the triggering error. Routing errors propagate:
// there is no further fallback location at this point.
func (r *FileRouter) Quarantine(ctx context.Context, location, key string, cause error) (string, error) {
	dstKey := quarantinePrefix + path.Base(key)
	if err := r.objects.Copy(ctx, location, key, dstKey); err != nil {
		return "", fmt.Errorf("failed to quarantine %s: %w", key, err)
	}
	if err := r.objects.Delete(ctx, location, key); err != nil {
		return "", fmt.Errorf("failed to remove quarantined original %s: %w", key, err)
	}

	notice := quarantineNotice{
		NotificationID:  uuid.NewString(),
		StorageLocation: location,
		ObjectKey:       key,
		QuarantineKey:   dstKey,
		Error:           cause.Error(),
		QuarantinedAt:   r.now().UTC(),
	}
	payload, err := json.Marshal(notice)
	if err != nil {
		return "", fmt.Errorf("failed to marshal quarantine notice for %s: %w", key, err)
	}
	if err := r.publisher.Publish(ctx, r.topic, payload); err != nil {
		return "", fmt.Errorf("failed to publish quarantine notice for %s: %w", key, err)
	}
	return dstKey, nil
}
