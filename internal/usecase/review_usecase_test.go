package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ulasanku/internal/domain/entity"
	"ulasanku/pkg/errors"
)

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews map[string]*entity.Review
	seq     int
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[string]*entity.Review)}
}

func (f *fakeReviewRepo) Create(ctx context.Context, review *entity.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	if review.ID == "" {
		review.ID = fmt.Sprintf("review-%d", f.seq)
	}
	review.CreatedAt = time.Unix(int64(f.seq), 0)
	review.UpdatedAt = review.CreatedAt

	stored := *review
	f.reviews[review.ID] = &stored
	return nil
}

func (f *fakeReviewRepo) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	review, ok := f.reviews[id]
	if !ok {
		return nil, errors.NotFound("Review", nil)
	}
	copied := *review
	return &copied, nil
}

func (f *fakeReviewRepo) ListAll(ctx context.Context) ([]*entity.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all := make([]*entity.Review, 0, len(f.reviews))
	for _, review := range f.reviews {
		copied := *review
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}

func (f *fakeReviewRepo) Update(ctx context.Context, review *entity.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.reviews[review.ID]; !ok {
		return errors.NotFound("Review", nil)
	}
	review.UpdatedAt = time.Now()
	stored := *review
	f.reviews[review.ID] = &stored
	return nil
}

func (f *fakeReviewRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.reviews, id)
	return nil
}

type fakeProductRepo struct {
	mu              sync.Mutex
	products        map[string]*entity.Product
	aggregateWrites int
}

func newFakeProductRepo(ids ...string) *fakeProductRepo {
	products := make(map[string]*entity.Product)
	for _, id := range ids {
		products[id] = &entity.Product{ID: id, Name: "Product " + id}
	}
	return &fakeProductRepo{products: products}
}

func (f *fakeProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	product, ok := f.products[id]
	if !ok {
		return nil, errors.NotFound("Product", nil)
	}
	copied := *product
	return &copied, nil
}

func (f *fakeProductRepo) UpdateAggregate(ctx context.Context, productID string, rating float64, reviewCount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	product, ok := f.products[productID]
	if !ok {
		return errors.NotFound("Product", nil)
	}
	product.Rating = rating
	product.ReviewCount = reviewCount
	f.aggregateWrites++
	return nil
}

func (f *fakeProductRepo) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.aggregateWrites
}

type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{
		"user-1": {ID: "user-1", Username: "budi", FullName: "Budi Santoso", Email: "budi@example.com", Role: "user"},
		"user-2": {ID: "user-2", Username: "sari", Email: "sari@example.com", Role: "user"},
	}}
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return user, nil
}

func setupUseCase(productIDs ...string) (*ReviewUseCase, *fakeReviewRepo, *fakeProductRepo) {
	reviewRepo := newFakeReviewRepo()
	productRepo := newFakeProductRepo(productIDs...)
	uc := NewReviewUseCase(reviewRepo, productRepo, newFakeUserRepo())
	return uc, reviewRepo, productRepo
}

func submit(t *testing.T, uc *ReviewUseCase, productID string, rating int) *entity.Review {
	t.Helper()
	review, err := uc.SubmitReview(context.Background(), "user-1", SubmitReviewInput{
		ProductID: productID,
		Rating:    rating,
		Comment:   "worth the price",
	})
	require.NoError(t, err)
	return review
}

func approve(t *testing.T, uc *ReviewUseCase, id string) *entity.Review {
	t.Helper()
	review, err := uc.ApproveReview(context.Background(), id)
	require.NoError(t, err)
	return review
}

func TestSubmitReview(t *testing.T) {
	uc, _, _ := setupUseCase("prod-1")

	review, err := uc.SubmitReview(context.Background(), "user-1", SubmitReviewInput{
		ProductID: "prod-1",
		Rating:    4,
		Title:     "Mantap",
		Comment:   "arrived quickly, works as described",
		Images:    []string{"https://cdn.example.com/a.jpg", "", "  ", "https://cdn.example.com/b.jpg"},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.ReviewStatusPending, review.Status)
	assert.Equal(t, "user-1", review.UserID)
	assert.Equal(t, "Budi Santoso", review.UserName)
	assert.Equal(t, "budi@example.com", review.UserEmail)
	// Empty image entries are dropped on write
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}, review.Images)
	assert.Equal(t, 0, review.HelpfulCount)
}

func TestSubmitReviewValidation(t *testing.T) {
	uc, _, _ := setupUseCase("prod-1")

	_, err := uc.SubmitReview(context.Background(), "user-1", SubmitReviewInput{
		ProductID: "prod-1",
		Rating:    6,
		Comment:   "out of range",
	})
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))

	_, err = uc.SubmitReview(context.Background(), "user-1", SubmitReviewInput{
		ProductID: "prod-1",
		Rating:    0,
		Comment:   "out of range",
	})
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))

	_, err = uc.SubmitReview(context.Background(), "user-1", SubmitReviewInput{
		ProductID: "prod-1",
		Rating:    3,
		Comment:   "   ",
	})
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))

	// No record was created by any rejected draft
	all, err := uc.ListAllReviews(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSubmitReviewUnknownProduct(t *testing.T) {
	uc, _, _ := setupUseCase("prod-1")

	_, err := uc.SubmitReview(context.Background(), "user-1", SubmitReviewInput{
		ProductID: "prod-404",
		Rating:    3,
		Comment:   "ok",
	})
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestApproveRecomputesAggregate(t *testing.T) {
	uc, _, productRepo := setupUseCase("prod-1")
	ctx := context.Background()

	for _, rating := range []int{5, 4, 3} {
		approve(t, uc, submit(t, uc, "prod-1", rating).ID)
	}

	product, err := productRepo.GetByID(ctx, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, 4.0, product.Rating)
	assert.Equal(t, 3, product.ReviewCount)

	// Approving a rating-2 review drags the mean down to 3.5
	low := submit(t, uc, "prod-1", 2)
	approve(t, uc, low.ID)

	product, err = productRepo.GetByID(ctx, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, 3.5, product.Rating)
	assert.Equal(t, 4, product.ReviewCount)

	// Deleting it restores the previous aggregate
	require.NoError(t, uc.DeleteReview(ctx, low.ID))

	product, err = productRepo.GetByID(ctx, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, 4.0, product.Rating)
	assert.Equal(t, 3, product.ReviewCount)
}

func TestAggregateRoundsHalfUp(t *testing.T) {
	uc, _, productRepo := setupUseCase("prod-1")

	// Mean 13/4 = 3.25 rounds up to 3.3
	for _, rating := range []int{3, 3, 3, 4} {
		approve(t, uc, submit(t, uc, "prod-1", rating).ID)
	}

	product, err := productRepo.GetByID(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Equal(t, 3.3, product.Rating)
	assert.Equal(t, 4, product.ReviewCount)
}

func TestApproveIsIdempotent(t *testing.T) {
	uc, _, productRepo := setupUseCase("prod-1")

	review := submit(t, uc, "prod-1", 5)
	approve(t, uc, review.ID)
	writesAfterFirst := productRepo.writes()

	again := approve(t, uc, review.ID)
	assert.Equal(t, entity.ReviewStatusApproved, again.Status)
	assert.Equal(t, writesAfterFirst, productRepo.writes())

	product, err := productRepo.GetByID(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Equal(t, 5.0, product.Rating)
	assert.Equal(t, 1, product.ReviewCount)
}

func TestApproveRejectedIsNoOp(t *testing.T) {
	uc, _, productRepo := setupUseCase("prod-1")
	ctx := context.Background()

	review := submit(t, uc, "prod-1", 2)
	_, err := uc.RejectReview(ctx, review.ID, "spam")
	require.NoError(t, err)

	result := approve(t, uc, review.ID)
	assert.Equal(t, entity.ReviewStatusRejected, result.Status)
	assert.Equal(t, 0, productRepo.writes())
}

func TestRejectReview(t *testing.T) {
	uc, _, productRepo := setupUseCase("prod-1")
	ctx := context.Background()

	review := submit(t, uc, "prod-1", 1)
	rejected, err := uc.RejectReview(ctx, review.ID, "offensive language")
	require.NoError(t, err)

	assert.Equal(t, entity.ReviewStatusRejected, rejected.Status)
	assert.Equal(t, "offensive language", rejected.RejectionReason)
	// Pending reviews were never counted, so the aggregate is untouched
	assert.Equal(t, 0, productRepo.writes())
}

func TestRejectRequiresReason(t *testing.T) {
	uc, _, _ := setupUseCase("prod-1")
	ctx := context.Background()

	review := submit(t, uc, "prod-1", 3)
	_, err := uc.RejectReview(ctx, review.ID, "")
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))

	// Review stays pending
	current, err := uc.ListPendingReviews(ctx)
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, review.ID, current[0].ID)
}

func TestRejectApprovedFails(t *testing.T) {
	uc, _, _ := setupUseCase("prod-1")

	review := submit(t, uc, "prod-1", 4)
	approve(t, uc, review.ID)

	_, err := uc.RejectReview(context.Background(), review.ID, "too late")
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
}

func TestDeletePendingSkipsRecompute(t *testing.T) {
	uc, _, productRepo := setupUseCase("prod-1")
	ctx := context.Background()

	review := submit(t, uc, "prod-1", 4)
	require.NoError(t, uc.DeleteReview(ctx, review.ID))
	assert.Equal(t, 0, productRepo.writes())

	_, err := uc.ApproveReview(ctx, review.ID)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestDeleteLastApprovedLeavesAggregateStale(t *testing.T) {
	uc, _, productRepo := setupUseCase("prod-1")
	ctx := context.Background()

	review := submit(t, uc, "prod-1", 5)
	approve(t, uc, review.ID)
	require.NoError(t, uc.DeleteReview(ctx, review.ID))

	// With an empty approved set the product write is skipped, so the last
	// computed aggregate remains
	product, err := productRepo.GetByID(ctx, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, 5.0, product.Rating)
	assert.Equal(t, 1, product.ReviewCount)
}

func TestMarkHelpfulIsIdempotent(t *testing.T) {
	uc, _, _ := setupUseCase("prod-1")
	ctx := context.Background()

	review := submit(t, uc, "prod-1", 4)

	first, err := uc.MarkHelpful(ctx, review.ID, "user-2")
	require.NoError(t, err)
	assert.Equal(t, 1, first.HelpfulCount)

	second, err := uc.MarkHelpful(ctx, review.ID, "user-2")
	require.NoError(t, err)
	assert.Equal(t, 1, second.HelpfulCount)

	third, err := uc.MarkHelpful(ctx, review.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, third.HelpfulCount)
	assert.Equal(t, len(third.HelpfulUserIDs), third.HelpfulCount)
}

func TestReportLastWriteWins(t *testing.T) {
	uc, _, _ := setupUseCase("prod-1")
	ctx := context.Background()

	review := submit(t, uc, "prod-1", 4)

	_, err := uc.ReportReview(ctx, review.ID, "user-1", "spam")
	require.NoError(t, err)

	reported, err := uc.ReportReview(ctx, review.ID, "user-2", "offensive")
	require.NoError(t, err)

	assert.True(t, reported.Reported)
	assert.Equal(t, "offensive", reported.ReportReason)
	assert.Equal(t, "user-2", reported.ReportedBy)
	require.NotNil(t, reported.ReportedAt)
	// Reporting never changes moderation status
	assert.Equal(t, entity.ReviewStatusPending, reported.Status)
}

func TestListApprovedFiltersByStatusAndProduct(t *testing.T) {
	uc, _, _ := setupUseCase("prod-1", "prod-2")
	ctx := context.Background()

	first := submit(t, uc, "prod-1", 5)
	approve(t, uc, first.ID)
	submit(t, uc, "prod-1", 3) // stays pending
	other := submit(t, uc, "prod-2", 4)
	approve(t, uc, other.ID)
	second := submit(t, uc, "prod-1", 2)
	approve(t, uc, second.ID)

	approved, err := uc.ListApprovedReviews(ctx, "prod-1")
	require.NoError(t, err)

	require.Len(t, approved, 2)
	// Newest first
	assert.Equal(t, second.ID, approved[0].ID)
	assert.Equal(t, first.ID, approved[1].ID)
	for _, review := range approved {
		assert.Equal(t, entity.ReviewStatusApproved, review.Status)
		assert.Equal(t, "prod-1", review.ProductID)
	}
}

func TestStatistics(t *testing.T) {
	uc, _, _ := setupUseCase("prod-1")
	ctx := context.Background()

	approve(t, uc, submit(t, uc, "prod-1", 5).ID)
	approve(t, uc, submit(t, uc, "prod-1", 4).ID)
	submit(t, uc, "prod-1", 2)
	rejected := submit(t, uc, "prod-1", 1)
	_, err := uc.RejectReview(ctx, rejected.ID, "fake")
	require.NoError(t, err)

	stats, err := uc.Statistics(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalReviews)
	assert.Equal(t, 2, stats.ApprovedReviews)
	assert.Equal(t, 1, stats.PendingReviews)
	// Mean over every status: 12/4 = 3.0
	assert.Equal(t, 3.0, stats.AverageRating)
}

func TestStatisticsEmpty(t *testing.T) {
	uc, _, _ := setupUseCase()

	stats, err := uc.Statistics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalReviews)
	assert.Equal(t, 0.0, stats.AverageRating)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	uc, _, productRepo := setupUseCase("prod-1")
	ctx := context.Background()

	approve(t, uc, submit(t, uc, "prod-1", 5).ID)
	approve(t, uc, submit(t, uc, "prod-1", 4).ID)

	before, err := productRepo.GetByID(ctx, "prod-1")
	require.NoError(t, err)

	require.NoError(t, uc.RecomputeProductAggregate(ctx, "prod-1"))

	after, err := productRepo.GetByID(ctx, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, before.Rating, after.Rating)
	assert.Equal(t, before.ReviewCount, after.ReviewCount)
}

func TestConcurrentApprovals(t *testing.T) {
	uc, _, productRepo := setupUseCase("prod-1")
	ctx := context.Background()

	ids := make([]string, 0, 8)
	ratings := []int{5, 4, 3, 5, 2, 4, 5, 3}
	for _, rating := range ratings {
		ids = append(ids, submit(t, uc, "prod-1", rating).ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := uc.ApproveReview(ctx, id)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	// Recompute once more to settle, then the aggregate must match the set
	require.NoError(t, uc.RecomputeProductAggregate(ctx, "prod-1"))

	product, err := productRepo.GetByID(ctx, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, 8, product.ReviewCount)
	// 31/8 = 3.875 rounds half up to 3.9
	assert.Equal(t, 3.9, product.Rating)
}
