package testutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Skotchmaster/shop_backend/internal/storage"
)

var ErrInjected = errors.New("injected storage failure")

// MemoryImages is an in-memory storage.ImageStore with failure injection.
type MemoryImages struct {
	mu         sync.Mutex
	seq        int
	Objects    map[string][]byte
	FailUpload bool
	FailDelete bool
	Uploads    int
	Deletes    int
}

var _ storage.ImageStore = (*MemoryImages)(nil)

func NewMemoryImages() *MemoryImages {
	return &MemoryImages{Objects: map[string][]byte{}}
}

func (m *MemoryImages) Upload(_ context.Context, r io.Reader, filename string) (*storage.UploadResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Uploads++
	if m.FailUpload {
		return nil, ErrInjected
	}
	m.seq++
	id := fmt.Sprintf("ecommerce/%s_%d", filename, m.seq)
	m.Objects[id] = data
	return &storage.UploadResult{
		SecureURL: "https://cdn.test/" + id,
		PublicID:  id,
	}, nil
}

func (m *MemoryImages) Delete(_ context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletes++
	if m.FailDelete {
		return ErrInjected
	}
	delete(m.Objects, publicID)
	return nil
}

func (m *MemoryImages) Put(publicID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[publicID] = []byte("img")
}

func (m *MemoryImages) Has(publicID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Objects[publicID]
	return ok
}

func (m *MemoryImages) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Objects)
}
