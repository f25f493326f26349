package doctypes

import "context"

// Repo defines read-only access to document type descriptors.
type Repo interface {
	List(ctx context.Context) ([]DocType, error)
	GetByID(ctx context.Context, id string) (DocType, error)
	ListByTarget(ctx context.Context, target TargetObject) ([]DocType, error)
}
