package handler

import (
	"ulasanku/internal/usecase"
)

var (
	reviewHandler *ReviewHandler
)

func Setup(
	reviewUseCase *usecase.ReviewUseCase,
) {
	reviewHandler = NewReviewHandler(reviewUseCase)
}

func GetReviewHandler() *ReviewHandler {
	return reviewHandler
}
