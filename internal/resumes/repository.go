package resumes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-builder/internal/docstore"
	"resume-builder/internal/shared/querycache"
)

// Named query policies.
const (
	ListQuery    = "resumes.list"
	PreloadQuery = "sections.preload"
)

var (
	ErrNotFound     = errors.New("resume not found")
	ErrUnknownQuery = errors.New("unknown query")
)

// ListPolicy serves the list for staleAfter and refetches on focus.
func ListPolicy(staleAfter time.Duration) querycache.Policy {
	return querycache.Policy{StaleAfter: staleAfter, RevalidateOnFocus: true}
}

// NoRevalidateOnFocus is the preload policy: form drafts are never refreshed
// behind the user's back when the window regains focus.
func NoRevalidateOnFocus(staleAfter time.Duration) querycache.Policy {
	return querycache.Policy{StaleAfter: staleAfter, RevalidateOnFocus: false}
}

// Options configures a Repository.
type Options struct {
	ListStaleAfter    time.Duration
	PreloadStaleAfter time.Duration
	Backend           querycache.Backend
}

// Repository serves cached, owner-scoped resume reads over the document store.
type Repository struct {
	store   docstore.Store
	list    *querycache.Cache[[]Resume]
	preload *querycache.Cache[map[string]Resume]
}

// NewRepository builds the list and preload caches.
func NewRepository(store docstore.Store, opts Options) *Repository {
	r := &Repository{store: store}
	var listOpts []querycache.Option
	if opts.Backend != nil {
		listOpts = append(listOpts, querycache.WithBackend(opts.Backend))
	}
	r.list = querycache.New(ListQuery, ListPolicy(opts.ListStaleAfter), r.fetchList, listOpts...)
	r.preload = querycache.New(PreloadQuery, NoRevalidateOnFocus(opts.PreloadStaleAfter), r.fetchIndex)
	return r
}

func (r *Repository) fetchList(ctx context.Context, ownerID string) ([]Resume, error) {
	docs, err := r.store.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]Resume, 0, len(docs))
	for _, doc := range docs {
		out = append(out, fromDocument(doc))
	}
	return out, nil
}

func (r *Repository) fetchIndex(ctx context.Context, ownerID string) (map[string]Resume, error) {
	list, err := r.list.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	index := make(map[string]Resume, len(list))
	for _, res := range list {
		index[res.ID] = res
	}
	return index, nil
}

// ListForUser returns the owner's resumes, newest first.
func (r *Repository) ListForUser(ctx context.Context, ownerID string) ([]Resume, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, docstore.ErrUnauthenticated
	}
	return r.list.Get(ctx, ownerID)
}

// FindByID looks the resume up in the cached list.
func (r *Repository) FindByID(ctx context.Context, ownerID, resumeID string) (Resume, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Resume{}, docstore.ErrUnauthenticated
	}
	index, err := r.preload.Get(ctx, ownerID)
	if err != nil {
		return Resume{}, err
	}
	res, ok := index[resumeID]
	if !ok {
		return Resume{}, fmt.Errorf("%w: %s", ErrNotFound, resumeID)
	}
	return res, nil
}

// Section returns one stored section; ok is false when the resume or section is new.
func (r *Repository) Section(ctx context.Context, ownerID, resumeID, sectionKey string) (docstore.SectionData, bool, error) {
	res, err := r.FindByID(ctx, ownerID, resumeID)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	data, ok := res.Sections[sectionKey]
	if !ok {
		return nil, false, nil
	}
	return data.Clone(), true, nil
}

// View reports the list state without blocking. A cold or stale list is
// refreshed in the background. When the last fetch failed and nothing was
// ever loaded, the failure is returned and a retry is started.
func (r *Repository) View(ctx context.Context, ownerID string) (ListView, error) {
	if strings.TrimSpace(ownerID) == "" {
		return ListView{}, docstore.ErrUnauthenticated
	}
	snap := r.list.Peek(ownerID)
	if snap.State == querycache.StateLoading {
		r.list.Prefetch(ctx, ownerID)
		if snap.Err != nil {
			return ListView{}, snap.Err
		}
		return ListView{State: StateLoading, Resumes: []Resume{}}, nil
	}
	if snap.Stale {
		r.list.Prefetch(ctx, ownerID)
	}
	if len(snap.Value) == 0 {
		return ListView{State: StateLoadedEmpty, Resumes: []Resume{}}, nil
	}
	return ListView{State: StateLoadedNonEmpty, Resumes: snap.Value}, nil
}

// Revalidate refreshes the named query for ownerID. It reports whether a fetch ran;
// a focus trigger on a query without RevalidateOnFocus is a no-op.
func (r *Repository) Revalidate(ctx context.Context, ownerID, query string, trigger querycache.Trigger) (bool, error) {
	if strings.TrimSpace(ownerID) == "" {
		return false, docstore.ErrUnauthenticated
	}
	switch query {
	case "", ListQuery:
		return r.list.Revalidate(ctx, ownerID, trigger)
	case PreloadQuery:
		if trigger == querycache.TriggerFocus && !r.preload.Policy().RevalidateOnFocus {
			return false, nil
		}
		r.list.Invalidate(ctx, ownerID)
		return r.preload.Revalidate(ctx, ownerID, trigger)
	default:
		return false, fmt.Errorf("%w: %s", ErrUnknownQuery, query)
	}
}

// Invalidate drops the owner's cached reads so the next read sees recent writes.
func (r *Repository) Invalidate(ctx context.Context, ownerID string) {
	r.list.Invalidate(ctx, ownerID)
	r.preload.Invalidate(ctx, ownerID)
}
