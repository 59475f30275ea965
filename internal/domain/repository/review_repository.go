package repository

import (
	"context"
	"ulasanku/internal/domain/entity"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, id string) (*entity.Review, error)
	// ListAll returns every review ordered by createdAt descending. The
	// store offers no reliable compound filtering, so callers apply their
	// own predicates over this superset.
	ListAll(ctx context.Context) ([]*entity.Review, error)
	Update(ctx context.Context, review *entity.Review) error
	Delete(ctx context.Context, id string) error
}
