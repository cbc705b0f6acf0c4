package exports

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores exports in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu      sync.RWMutex
	byID    map[string]Export
	byOwner map[string][]Export
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:    make(map[string]Export),
		byOwner: make(map[string][]Export),
	}
}

// Create stores the export.
func (r *MemoryRepo) Create(ctx context.Context, export Export) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[export.ID] = export
	r.byOwner[export.OwnerID] = append(r.byOwner[export.OwnerID], export)
	return nil
}

// GetByID returns an export by ID for an owner.
func (r *MemoryRepo) GetByID(ctx context.Context, ownerID, exportID string) (Export, error) {
	if err := ctx.Err(); err != nil {
		return Export{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	export, ok := r.byID[exportID]
	if !ok {
		return Export{}, ErrNotFound
	}
	if export.OwnerID != ownerID {
		return Export{}, ErrForbidden
	}
	return export, nil
}

// ListByResume returns a resume's exports, newest first, with limit/offset.
func (r *MemoryRepo) ListByResume(ctx context.Context, ownerID, resumeID string, limit, offset int) ([]Export, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	var matched []Export
	for _, e := range r.byOwner[ownerID] {
		if e.ResumeID == resumeID {
			matched = append(matched, e)
		}
	}
	r.mu.RUnlock()

	if offset >= len(matched) {
		return []Export{}, nil
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], nil
}
