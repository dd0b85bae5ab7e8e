package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/velora-api/internal/domain"
	"github.com/ErlanBelekov/velora-api/internal/i18n"
	"github.com/ErlanBelekov/velora-api/internal/transport/http/response"
	"github.com/ErlanBelekov/velora-api/internal/usecase"
	"github.com/ErlanBelekov/velora-api/internal/validation"
	"github.com/gin-gonic/gin"
)

type reviewUsecaser interface {
	Submit(ctx context.Context, in usecase.SubmitReviewInput) (*domain.Review, error)
	ListRecent(ctx context.Context) ([]*domain.Review, error)
}

type ReviewHandler struct {
	reviewUsecase reviewUsecaser
	resp          *response.Writer
	logger        *slog.Logger
}

func NewReviewHandler(reviewUsecase reviewUsecaser, resp *response.Writer, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewUsecase: reviewUsecase,
		resp:          resp,
		logger:        logger.With("component", "review_handler"),
	}
}

type createReviewRequest struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// POST /api/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	var req createReviewRequest
	if err := bindJSON(c, &req); err != nil {
		h.resp.Error(c, http.StatusBadRequest, i18n.InvalidRequestBody, nil)
		return
	}

	review, err := h.reviewUsecase.Submit(c.Request.Context(), usecase.SubmitReviewInput(req))
	if err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			h.resp.Error(c, http.StatusBadRequest, verr.Key, nil)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "submit review", "error", err)
		h.resp.Error(c, http.StatusInternalServerError, i18n.ReviewSaveFailed, err)
		return
	}

	response.OK(c, http.StatusCreated, gin.H{"review": review})
}

// GET /api/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	reviews, err := h.reviewUsecase.ListRecent(c.Request.Context())
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "list reviews", "error", err)
		h.resp.Error(c, http.StatusInternalServerError, i18n.ReviewsLoadFailed, err)
		return
	}
	if reviews == nil {
		reviews = []*domain.Review{}
	}

	response.OK(c, http.StatusOK, gin.H{"count": len(reviews), "reviews": reviews})
}
