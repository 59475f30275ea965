package repository

import (
	"context"
	stderrors "errors"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"ulasanku/internal/domain/entity"
	"ulasanku/internal/domain/repository"
	"ulasanku/pkg/errors"

	"github.com/google/uuid"
)

type firestoreReviewRepository struct {
	client  *firestore.Client
	timeout time.Duration
}

func NewFirestoreReviewRepository(client *firestore.Client, timeout time.Duration) repository.ReviewRepository {
	return &firestoreReviewRepository{
		client:  client,
		timeout: timeout,
	}
}

// storeError maps Firestore failures to app errors. Transient conditions
// become STORE_UNAVAILABLE so callers know a retry with backoff is safe for
// reads and idempotent writes.
func storeError(message string, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Unavailable(message, err)
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return errors.Unavailable(message, err)
	}
	return errors.Internal(message, err)
}

func (r *firestoreReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}

	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.client.Collection("reviews").Doc(review.ID).Set(ctx, review)
	if err != nil {
		return storeError("Failed to create review", err)
	}

	return nil
}

func (r *firestoreReviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc, err := r.client.Collection("reviews").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Review", err)
		}
		return nil, storeError("Failed to get review", err)
	}

	var review entity.Review
	if err := doc.DataTo(&review); err != nil {
		return nil, errors.Internal("Failed to parse review data", err)
	}

	return &review, nil
}

// ListAll fetches the whole collection ordered by createdAt descending.
// Compound server-side filtering is deliberately not used here; callers
// filter the returned superset in process.
func (r *firestoreReviewRepository) ListAll(ctx context.Context) ([]*entity.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := r.client.Collection("reviews").OrderBy("createdAt", firestore.Desc)
	iter := query.Documents(ctx)

	var reviews []*entity.Review
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeError("Failed to iterate reviews", err)
		}
		var review entity.Review
		if err := doc.DataTo(&review); err != nil {
			return nil, errors.Internal("Failed to parse review data", err)
		}
		reviews = append(reviews, &review)
	}

	return reviews, nil
}

func (r *firestoreReviewRepository) Update(ctx context.Context, review *entity.Review) error {
	review.UpdatedAt = time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// Whole-document Set keeps each update all-or-nothing
	_, err := r.client.Collection("reviews").Doc(review.ID).Set(ctx, review)
	if err != nil {
		return storeError("Failed to update review", err)
	}

	return nil
}

func (r *firestoreReviewRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.client.Collection("reviews").Doc(id).Delete(ctx)
	if err != nil {
		return storeError("Failed to delete review", err)
	}

	return nil
}
