// Package tracking records anonymous page visits. The Beacon sends visits to
// a collector without blocking its caller; the Recorder is the collector side.
package tracking

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// VisitorPrefix starts every generated visitor id.
const VisitorPrefix = "v-"

// VisitorStore keeps the visitor id across visits, for example in a session.
type VisitorStore interface {
	GetVisitorID(ctx context.Context) string
	PutVisitorID(ctx context.Context, id string)
}

// NewVisitorID returns a fresh random visitor id.
func NewVisitorID() string {
	return VisitorPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// VisitorID returns the stored id, generating and storing one on first use.
func VisitorID(ctx context.Context, s VisitorStore) string {
	if id := strings.TrimSpace(s.GetVisitorID(ctx)); id != "" {
		return id
	}
	id := NewVisitorID()
	s.PutVisitorID(ctx, id)
	return id
}

// MemoryVisitorStore holds a single visitor id for the life of the process.
type MemoryVisitorStore struct {
	mu sync.Mutex
	id string
}

func (m *MemoryVisitorStore) GetVisitorID(context.Context) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id
}

func (m *MemoryVisitorStore) PutVisitorID(_ context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = id
}
