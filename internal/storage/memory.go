package storage

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/rogersnm/linkbook/internal/model"
)

// Memory keeps the encoded collection in process memory.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
}

var _ Backend = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Load(context.Context) ([]model.ManagedObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return decode(m.data[Key], zap.NewNop()), nil
}

func (m *Memory) Save(_ context.Context, objects []model.ManagedObject) error {
	data, err := encode(objects)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[Key] = data
	return nil
}

// Raw returns the stored payload.
func (m *Memory) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.data[Key])
}

// SetRaw replaces the stored payload.
func (m *Memory) SetRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[Key] = slices.Clone(data)
}

func (m *Memory) Close() error { return nil }
