package doctypes

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]DocType
}

// NewMemoryRepo constructs a MemoryRepo seeded with the given descriptors.
func NewMemoryRepo(types ...DocType) *MemoryRepo {
	r := &MemoryRepo{data: make(map[string]DocType)}
	for _, dt := range types {
		r.data[dt.ID] = dt
	}
	return r
}

// Put stores or replaces a descriptor.
func (r *MemoryRepo) Put(dt DocType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[dt.ID] = dt
}

// List returns all descriptors ordered by category code.
func (r *MemoryRepo) List(ctx context.Context) ([]DocType, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]DocType, 0, len(r.data))
	for _, dt := range r.data {
		out = append(out, dt)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CategoryCode < out[j].CategoryCode
	})
	return out, nil
}

// GetByID fetches a descriptor by id.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (DocType, error) {
	if err := ctx.Err(); err != nil {
		return DocType{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	dt, ok := r.data[id]
	if !ok {
		return DocType{}, ErrNotFound
	}
	return dt, nil
}

// ListByTarget returns descriptors for a target entity kind.
func (r *MemoryRepo) ListByTarget(ctx context.Context, target TargetObject) ([]DocType, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []DocType
	for _, dt := range all {
		if dt.TargetObject == target {
			out = append(out, dt)
		}
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
