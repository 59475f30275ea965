package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"ulasanku/internal/domain/entity"
	"ulasanku/internal/domain/repository"
	"ulasanku/pkg/errors"
)

type firestoreProductRepository struct {
	client  *firestore.Client
	timeout time.Duration
}

func NewFirestoreProductRepository(client *firestore.Client, timeout time.Duration) repository.ProductRepository {
	return &firestoreProductRepository{
		client:  client,
		timeout: timeout,
	}
}

func (r *firestoreProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc, err := r.client.Collection("products").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Product", err)
		}
		return nil, storeError("Failed to get product", err)
	}

	var product entity.Product
	if err := doc.DataTo(&product); err != nil {
		return nil, errors.Internal("Failed to parse product data", err)
	}

	return &product, nil
}

// UpdateAggregate writes the recomputed rating and reviewCount in a single
// update call. Nothing else touches these fields.
func (r *firestoreProductRepository) UpdateAggregate(ctx context.Context, productID string, rating float64, reviewCount int) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.client.Collection("products").Doc(productID).Update(ctx, []firestore.Update{
		{Path: "rating", Value: rating},
		{Path: "reviewCount", Value: reviewCount},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Product", err)
		}
		return storeError("Failed to update product aggregate", err)
	}

	return nil
}
