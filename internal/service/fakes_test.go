package service

import (
	"context"
	"sync"

	"github.com/Skotchmaster/shop_backend/internal/models"
)

type publishedEvent struct {
	Topic string
	Key   string
	Event map[string]any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (r *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, publishedEvent{Topic: topic, Key: key, Event: event.(map[string]any)})
	return r.err
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Event["type"].(string))
	}
	return out
}

type memoryIndex struct {
	docs map[uint]models.ProductView
	err  error
}

func newMemoryIndex() *memoryIndex {
	return &memoryIndex{docs: map[uint]models.ProductView{}}
}

func (m *memoryIndex) IndexProduct(_ context.Context, p *models.ProductView) error {
	if m.err != nil {
		return m.err
	}
	m.docs[p.ID] = *p
	return nil
}

func (m *memoryIndex) RemoveProduct(_ context.Context, id uint) error {
	if m.err != nil {
		return m.err
	}
	delete(m.docs, id)
	return nil
}

func (m *memoryIndex) Search(_ context.Context, _ string, from, size int) (int64, []models.ProductView, error) {
	if m.err != nil {
		return 0, nil, m.err
	}
	out := make([]models.ProductView, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, d)
	}
	return int64(len(m.docs)), out, nil
}
