package exports

import "context"

// Repo defines persistence operations for exports.
type Repo interface {
	Create(ctx context.Context, export Export) error
	GetByID(ctx context.Context, ownerID, exportID string) (Export, error)
	ListByResume(ctx context.Context, ownerID, resumeID string, limit, offset int) ([]Export, error)
}
