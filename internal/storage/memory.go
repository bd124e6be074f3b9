package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Storage used by tests and local development
// without a bucket. It mirrors the MinIO implementation's semantics:
// validated puts, locally filtered listings, idempotent deletes.
type Memory struct {
	mu      sync.Mutex
	objects map[string]Object
	data    map[string][]byte

	// PutErr, when set, makes every Put fail after validation. Lets tests
	// exercise mid-batch storage failures.
	PutErr error
	// DeleteErr, when set, makes every Delete fail.
	DeleteErr error
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string]Object),
		data:    make(map[string][]byte),
	}
}

func (m *Memory) Put(ctx context.Context, in PutInput, keyPrefix string) (Object, error) {
	if err := ValidateUpload(in); err != nil {
		return Object{}, err
	}
	if m.PutErr != nil {
		return Object{}, m.PutErr
	}

	data, err := io.ReadAll(in.Reader)
	if err != nil {
		return Object{}, fmt.Errorf("read upload: %w", err)
	}

	key := BuildKey(keyPrefix, in.OriginalName)
	obj := Object{
		Key:          key,
		URL:          m.PublicURL(key),
		Size:         int64(len(data)),
		ContentType:  in.ContentType,
		LastModified: time.Now().UTC(),
	}

	m.mu.Lock()
	m.objects[key] = obj
	m.data[key] = data
	m.mu.Unlock()
	return obj, nil
}

func (m *Memory) List(ctx context.Context, prefix string, maxKeys int) ([]Object, error) {
	m.mu.Lock()
	objects := make([]Object, 0, len(m.objects))
	for _, o := range m.objects {
		objects = append(objects, o)
	}
	m.mu.Unlock()

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	objects = FilterPrefix(objects, prefix)
	if len(objects) > maxKeys {
		objects = objects[:maxKeys]
	}
	return objects, nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	delete(m.objects, key)
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) PublicURL(key string) string {
	return "https://storage.test/" + key
}

// Len reports the number of stored objects.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
