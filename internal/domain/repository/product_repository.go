package repository

import (
	"context"

	"ulasanku/internal/domain/entity"
)

type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// UpdateAggregate writes rating and reviewCount in a single update.
	// This engine is the only writer of these two fields.
	UpdateAggregate(ctx context.Context, productID string, rating float64, reviewCount int) error
}
