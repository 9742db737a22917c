package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/clinicore/customer-intake/internal/gcp"
	"github.com/clinicore/customer-intake/internal/models"
)

// fakeObjectStore is an in-memory ObjectStore keyed by "bucket/key".
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	getErr  map[string]error
	copies  []string
	deletes []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{
		objects: make(map[string][]byte),
		getErr:  make(map[string]error),
	}
}

func objectKey(location, key string) string { return location + "/" + key }

func (f *fakeObjectStore) put(location, key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[objectKey(location, key)] = data
}

func (f *fakeObjectStore) has(location, key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[objectKey(location, key)]
	return ok
}

func (f *fakeObjectStore) Get(ctx context.Context, location, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.getErr[objectKey(location, key)]; err != nil {
		return nil, err
	}
	data, ok := f.objects[objectKey(location, key)]
	if !ok {
		return nil, fmt.Errorf("object %s/%s does not exist", location, key)
	}
	return data, nil
}

func (f *fakeObjectStore) Copy(ctx context.Context, location, srcKey, dstKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[objectKey(location, srcKey)]
	if !ok {
		return fmt.Errorf("copy source %s/%s does not exist", location, srcKey)
	}
	f.objects[objectKey(location, dstKey)] = data
	f.copies = append(f.copies, srcKey+" -> "+dstKey)
	return nil
}

func (f *fakeObjectStore) Delete(ctx context.Context, location, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, objectKey(location, key))
	f.deletes = append(f.deletes, key)
	return nil
}

// fakeTableStore is an in-memory TableStore with per-collection items and
// injectable failures.
type fakeTableStore struct {
	mu        sync.Mutex
	items     map[string]map[string]map[string]interface{}
	getErr    map[string]error
	putErr    map[string]error
	updateErr map[string]error
}

func newFakeTableStore() *fakeTableStore {
	return &fakeTableStore{
		items:     make(map[string]map[string]map[string]interface{}),
		getErr:    make(map[string]error),
		putErr:    make(map[string]error),
		updateErr: make(map[string]error),
	}
}

func (f *fakeTableStore) collection(name string) map[string]map[string]interface{} {
	if f.items[name] == nil {
		f.items[name] = make(map[string]map[string]interface{})
	}
	return f.items[name]
}

func (f *fakeTableStore) item(collection, key string) (map[string]interface{}, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.collection(collection)[key]
	return item, ok
}

func (f *fakeTableStore) count(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.collection(collection))
}

func (f *fakeTableStore) GetItem(ctx context.Context, collection, key string) (map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.getErr[collection]; err != nil {
		return nil, err
	}
	item, ok := f.collection(collection)[key]
	if !ok {
		return nil, gcp.ErrItemNotFound
	}
	return item, nil
}

func (f *fakeTableStore) PutItemIfAbsent(ctx context.Context, collection, key string, item interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.putErr[collection]; err != nil {
		return err
	}
	col := f.collection(collection)
	if _, exists := col[key]; exists {
		return gcp.ErrItemExists
	}
	col[key] = itemFields(item)
	return nil
}

func (f *fakeTableStore) UpdateItem(ctx context.Context, collection, key string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.updateErr[collection]; err != nil {
		return err
	}
	item, exists := f.collection(collection)[key]
	if !exists {
		return fmt.Errorf("update target %s/%s does not exist", collection, key)
	}
	for k, v := range fields {
		item[k] = v
	}
	return nil
}

// itemFields flattens the concrete record types the pipeline persists into
// the field map the fake stores.
func itemFields(item interface{}) map[string]interface{} {
	switch v := item.(type) {
	case models.CustomerRecord:
		return map[string]interface{}{
			"tenantId":    v.TenantID,
			"customerId":  v.CustomerID,
			"displayName": v.DisplayName,
			"firstName":   v.FirstName,
			"lastName":    v.LastName,
			"email":       v.Email,
			"phone":       v.Phone,
			"signupAt":    v.SignupAt,
			"processedAt": v.ProcessedAt,
		}
	case models.ProcessedFile:
		return map[string]interface{}{
			"fingerprint":      v.Fingerprint,
			"originalFileName": v.OriginalFileName,
			"processedAt":      v.ProcessedAt,
		}
	default:
		return map[string]interface{}{"value": v}
	}
}

// fakePublisher records published messages and can be made to fail.
type fakePublisher struct {
	mu       sync.Mutex
	messages map[string][][]byte
	err      error
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{messages: make(map[string][][]byte)}
}

func (f *fakePublisher) Publish(ctx context.Context, topic string, message []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages[topic] = append(f.messages[topic], message)
	return nil
}

func (f *fakePublisher) published(topic string) [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages[topic]
}
