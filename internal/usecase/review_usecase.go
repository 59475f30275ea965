package usecase

import (
	"context"
	"math"
	"strings"
	"time"

	"ulasanku/internal/domain/entity"
	"ulasanku/internal/domain/repository"
	"ulasanku/internal/infrastructure/keymutex"
	"ulasanku/pkg/errors"
	"ulasanku/pkg/logger"
)

type ReviewUseCase struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository

	// Serializes aggregate recompute per productId; the store has no
	// multi-document transactions, so overlapping moderation actions on the
	// same product would otherwise race on the read-then-write
	productLocks *keymutex.KeyMutex
}

func NewReviewUseCase(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
) *ReviewUseCase {
	return &ReviewUseCase{
		reviewRepo:   reviewRepo,
		productRepo:  productRepo,
		userRepo:     userRepo,
		productLocks: keymutex.New(),
	}
}

type SubmitReviewInput struct {
	ProductID string
	Rating    int
	Title     string
	Comment   string
	Images    []string
}

func (uc *ReviewUseCase) SubmitReview(ctx context.Context, userID string, input SubmitReviewInput) (*entity.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, errors.Validation("rating must be between 1 and 5")
	}
	if strings.TrimSpace(input.Comment) == "" {
		return nil, errors.Validation("comment is required")
	}

	// Validate product reference
	if _, err := uc.productRepo.GetByID(ctx, input.ProductID); err != nil {
		return nil, err
	}

	// Snapshot submitter identity; trusted as-is after this point
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Drop empty image entries
	images := make([]string, 0, len(input.Images))
	for _, img := range input.Images {
		if strings.TrimSpace(img) != "" {
			images = append(images, img)
		}
	}

	review := &entity.Review{
		ProductID:      input.ProductID,
		UserID:         user.ID,
		UserName:       user.DisplayName(),
		UserEmail:      user.Email,
		Rating:         input.Rating,
		Title:          input.Title,
		Comment:        input.Comment,
		Images:         images,
		Status:         entity.ReviewStatusPending,
		HelpfulUserIDs: []string{},
	}

	if err := uc.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

// ListApprovedReviews returns approved reviews for a product, newest first.
// The store cannot filter on status and productId at once, so the predicate
// is applied in process over the full listing.
func (uc *ReviewUseCase) ListApprovedReviews(ctx context.Context, productID string) ([]*entity.Review, error) {
	all, err := uc.reviewRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterReviews(all, func(r *entity.Review) bool {
		return r.Status == entity.ReviewStatusApproved && r.ProductID == productID
	}), nil
}

func (uc *ReviewUseCase) ListPendingReviews(ctx context.Context) ([]*entity.Review, error) {
	all, err := uc.reviewRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterReviews(all, func(r *entity.Review) bool {
		return r.Status == entity.ReviewStatusPending
	}), nil
}

func (uc *ReviewUseCase) ListAllReviews(ctx context.Context) ([]*entity.Review, error) {
	return uc.reviewRepo.ListAll(ctx)
}

// ApproveReview moves a pending review to approved and refreshes the product
// aggregate. Approving an already-approved or rejected review is a no-op that
// still succeeds, so retries are safe. A recompute failure is returned to the
// caller but the approval itself is not rolled back; the aggregate can be
// repaired later with RecomputeProductAggregate.
func (uc *ReviewUseCase) ApproveReview(ctx context.Context, id string) (*entity.Review, error) {
	review, err := uc.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if review.Status != entity.ReviewStatusPending {
		return review, nil
	}

	review.Status = entity.ReviewStatusApproved
	if err := uc.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	if err := uc.RecomputeProductAggregate(ctx, review.ProductID); err != nil {
		logger.LogRecomputeError(review.ProductID, "approve", err)
		return review, err
	}

	return review, nil
}

// RejectReview moves a pending review to rejected. A pending review was never
// counted, so the product aggregate is left alone.
func (uc *ReviewUseCase) RejectReview(ctx context.Context, id, reason string) (*entity.Review, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, errors.Validation("rejection reason is required")
	}

	review, err := uc.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if review.Status == entity.ReviewStatusRejected {
		return review, nil
	}
	if review.Status == entity.ReviewStatusApproved {
		return nil, errors.Validation("only pending reviews can be rejected")
	}

	review.Status = entity.ReviewStatusRejected
	review.RejectionReason = reason

	if err := uc.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

// DeleteReview removes a review in any status. When the removed review was
// approved the product aggregate shrinks, so it is recomputed afterwards.
func (uc *ReviewUseCase) DeleteReview(ctx context.Context, id string) error {
	review, err := uc.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	wasApproved := review.Status == entity.ReviewStatusApproved

	if err := uc.reviewRepo.Delete(ctx, id); err != nil {
		return err
	}

	if wasApproved {
		if err := uc.RecomputeProductAggregate(ctx, review.ProductID); err != nil {
			logger.LogRecomputeError(review.ProductID, "delete", err)
			return err
		}
	}

	return nil
}

// MarkHelpful records a per-user helpful vote. HelpfulCount is always derived
// from the voter set, so a retried call cannot double-count.
func (uc *ReviewUseCase) MarkHelpful(ctx context.Context, reviewID, userID string) (*entity.Review, error) {
	review, err := uc.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	if review.MarkedHelpfulBy(userID) {
		return review, nil
	}

	review.HelpfulUserIDs = append(review.HelpfulUserIDs, userID)
	review.HelpfulCount = len(review.HelpfulUserIDs)

	if err := uc.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

// ReportReview flags a review. Only the most recent report is retained; the
// review keeps its status and stays in listings.
func (uc *ReviewUseCase) ReportReview(ctx context.Context, reviewID, userID, reason string) (*entity.Review, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, errors.Validation("report reason is required")
	}

	review, err := uc.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	review.Reported = true
	review.ReportReason = reason
	review.ReportedBy = userID
	review.ReportedAt = &now

	if err := uc.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

// Statistics summarizes the whole collection for the moderator dashboard.
// AverageRating spans every status, which is deliberately a different figure
// from any single product's aggregate.
func (uc *ReviewUseCase) Statistics(ctx context.Context) (*entity.ReviewStatistics, error) {
	all, err := uc.reviewRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &entity.ReviewStatistics{
		TotalReviews: len(all),
	}

	sum := 0
	for _, review := range all {
		sum += review.Rating
		switch review.Status {
		case entity.ReviewStatusApproved:
			stats.ApprovedReviews++
		case entity.ReviewStatusPending:
			stats.PendingReviews++
		}
	}

	if len(all) > 0 {
		stats.AverageRating = roundRating(float64(sum) / float64(len(all)))
	}

	return stats, nil
}

// RecomputeProductAggregate rebuilds a product's rating and reviewCount from
// the currently approved review set. Idempotent, so it doubles as the repair
// path after a failed recompute. With no approved reviews left the product
// write is skipped and the last computed aggregate stays in place; callers
// relying on a zero reset must clear the fields themselves.
func (uc *ReviewUseCase) RecomputeProductAggregate(ctx context.Context, productID string) error {
	uc.productLocks.Lock(productID)
	defer uc.productLocks.Unlock(productID)

	approved, err := uc.ListApprovedReviews(ctx, productID)
	if err != nil {
		return err
	}

	if len(approved) == 0 {
		logger.Debug("Skipping aggregate write for product %s: no approved reviews", productID)
		return nil
	}

	sum := 0
	for _, review := range approved {
		sum += review.Rating
	}
	rating := roundRating(float64(sum) / float64(len(approved)))

	return uc.productRepo.UpdateAggregate(ctx, productID, rating, len(approved))
}

func filterReviews(reviews []*entity.Review, keep func(*entity.Review) bool) []*entity.Review {
	filtered := make([]*entity.Review, 0, len(reviews))
	for _, review := range reviews {
		if keep(review) {
			filtered = append(filtered, review)
		}
	}
	return filtered
}

// roundRating rounds to 1 decimal place, half up
func roundRating(value float64) float64 {
	return math.Floor(value*10+0.5) / 10
}
