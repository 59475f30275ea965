package handler

import (
	"github.com/labstack/echo/v4"

	"ulasanku/internal/usecase"
	"ulasanku/pkg/errors"
	"ulasanku/pkg/response"
	"ulasanku/pkg/utils"
)

type ReviewHandler struct {
	reviewUseCase *usecase.ReviewUseCase
}

func NewReviewHandler(reviewUseCase *usecase.ReviewUseCase) *ReviewHandler {
	return &ReviewHandler{
		reviewUseCase: reviewUseCase,
	}
}

type submitReviewRequest struct {
	Rating  int      `json:"rating" validate:"required,min=1,max=5"`
	Title   string   `json:"title"`
	Comment string   `json:"comment" validate:"required"`
	Images  []string `json:"images,omitempty"`
}

func (h *ReviewHandler) SubmitReview(c echo.Context) error {
	productID := c.Param("productId")
	if productID == "" {
		return response.Error(c, errors.BadRequest("Product ID is required", nil))
	}

	var req submitReviewRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	review, err := h.reviewUseCase.SubmitReview(c.Request().Context(), userID, usecase.SubmitReviewInput{
		ProductID: productID,
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
		Images:    req.Images,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, review)
}

// GetProductReviews is the storefront listing: approved reviews only
func (h *ReviewHandler) GetProductReviews(c echo.Context) error {
	productID := c.Param("productId")
	if productID == "" {
		return response.Error(c, errors.BadRequest("Product ID is required", nil))
	}

	reviews, err := h.reviewUseCase.ListApprovedReviews(c.Request().Context(), productID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, reviews)
}

func (h *ReviewHandler) MarkHelpful(c echo.Context) error {
	reviewID := c.Param("reviewId")
	userID := c.Get("uid").(string)

	review, err := h.reviewUseCase.MarkHelpful(c.Request().Context(), reviewID, userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, review)
}

type reportReviewRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *ReviewHandler) ReportReview(c echo.Context) error {
	reviewID := c.Param("reviewId")

	var req reportReviewRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	review, err := h.reviewUseCase.ReportReview(c.Request().Context(), reviewID, userID, req.Reason)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, review)
}

// Admin methods

func (h *ReviewHandler) GetAllReviews(c echo.Context) error {
	reviews, err := h.reviewUseCase.ListAllReviews(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	params := utils.GetPaginationParams(c)
	page := utils.Paginate(reviews, params.Offset, params.PageSize)

	return response.Paginated(c, page, int64(len(reviews)), params.Page, params.PageSize)
}

func (h *ReviewHandler) GetPendingReviews(c echo.Context) error {
	reviews, err := h.reviewUseCase.ListPendingReviews(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	params := utils.GetPaginationParams(c)
	page := utils.Paginate(reviews, params.Offset, params.PageSize)

	return response.Paginated(c, page, int64(len(reviews)), params.Page, params.PageSize)
}

func (h *ReviewHandler) ApproveReview(c echo.Context) error {
	reviewID := c.Param("reviewId")

	review, err := h.reviewUseCase.ApproveReview(c.Request().Context(), reviewID)
	if err != nil {
		// The approval may already be committed; a failed aggregate refresh
		// is repaired via the recompute endpoint
		return response.Error(c, err)
	}

	return response.Success(c, review)
}

type rejectReviewRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *ReviewHandler) RejectReview(c echo.Context) error {
	reviewID := c.Param("reviewId")

	var req rejectReviewRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	review, err := h.reviewUseCase.RejectReview(c.Request().Context(), reviewID, req.Reason)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, review)
}

func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	reviewID := c.Param("reviewId")

	if err := h.reviewUseCase.DeleteReview(c.Request().Context(), reviewID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"id":      reviewID,
		"deleted": true,
	})
}

func (h *ReviewHandler) GetStatistics(c echo.Context) error {
	stats, err := h.reviewUseCase.Statistics(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, stats)
}

// RecomputeProductAggregate repairs a stale product aggregate, for example
// after a moderation action whose recompute step failed
func (h *ReviewHandler) RecomputeProductAggregate(c echo.Context) error {
	productID := c.Param("productId")
	if productID == "" {
		return response.Error(c, errors.BadRequest("Product ID is required", nil))
	}

	if err := h.reviewUseCase.RecomputeProductAggregate(c.Request().Context(), productID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"product_id": productID,
		"recomputed": true,
	})
}
