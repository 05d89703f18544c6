package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"yamdb/internal/model"
	"yamdb/internal/service"
)

// ReviewHandler serves reviews and their comments.
type ReviewHandler struct {
	reviewService  service.ReviewService
	commentService service.CommentService
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(reviewService service.ReviewService, commentService service.CommentService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, commentService: commentService}
}

// ReviewRequest is a full or partial review payload.
type ReviewRequest struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

// ReviewResponse is a review with its author's username.
type ReviewResponse struct {
	ID      uint      `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

// CommentRequest is a comment payload.
type CommentRequest struct {
	Text *string `json:"text"`
}

// CommentResponse is a comment with its author's username.
type CommentResponse struct {
	ID      uint      `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}

type (
	ReviewPage  = model.Page[ReviewResponse]
	CommentPage = model.Page[CommentResponse]
)

func toReviewResponse(r *model.Review) ReviewResponse {
	return ReviewResponse{ID: r.ID, Text: r.Text, Author: r.AuthorName(), Score: r.Score, PubDate: r.PubDate}
}

func toCommentResponse(c *model.Comment) CommentResponse {
	return CommentResponse{ID: c.ID, Text: c.Text, Author: c.AuthorName(), PubDate: c.PubDate}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// ListReviews godoc
// @Summary List reviews of a title
// @Tags reviews
// @Produce json
// @Param title_id path int true "Title ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} ReviewPage
// @Failure 404 {object} errors.ErrorResponse
// @Router /titles/{title_id}/reviews/ [get]
func (h *ReviewHandler) ListReviews(c echo.Context) error {
	titleID, err := pathID(c, "title_id")
	if err != nil {
		return err
	}
	params, err := listParams(c)
	if err != nil {
		return err
	}

	page, err := h.reviewService.List(c.Request().Context(), titleID, params)
	if err != nil {
		return respondError(err)
	}
	out := ReviewPage{Count: page.Count, Results: make([]ReviewResponse, 0, len(page.Results))}
	for i := range page.Results {
		out.Results = append(out.Results, toReviewResponse(&page.Results[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// GetReview godoc
// @Summary Get a review
// @Tags reviews
// @Produce json
// @Param title_id path int true "Title ID"
// @Param review_id path int true "Review ID"
// @Success 200 {object} ReviewResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /titles/{title_id}/reviews/{review_id}/ [get]
func (h *ReviewHandler) GetReview(c echo.Context) error {
	titleID, reviewID, err := reviewPath(c)
	if err != nil {
		return err
	}
	review, err := h.reviewService.Get(c.Request().Context(), titleID, reviewID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, toReviewResponse(review))
}

// CreateReview godoc
// @Summary Review a title
// @Description One review per title per author.
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param title_id path int true "Title ID"
// @Param request body ReviewRequest true "Review"
// @Success 201 {object} ReviewResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /titles/{title_id}/reviews/ [post]
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	titleID, err := pathID(c, "title_id")
	if err != nil {
		return err
	}
	var req ReviewRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	review, err := h.reviewService.Create(c.Request().Context(), CurrentUser(c), titleID, deref(req.Text), deref(req.Score))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, toReviewResponse(review))
}

// UpdateReview godoc
// @Summary Edit a review
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param title_id path int true "Title ID"
// @Param review_id path int true "Review ID"
// @Param request body ReviewRequest true "Fields to change"
// @Success 200 {object} ReviewResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /titles/{title_id}/reviews/{review_id}/ [patch]
func (h *ReviewHandler) UpdateReview(c echo.Context) error {
	titleID, reviewID, err := reviewPath(c)
	if err != nil {
		return err
	}
	var req ReviewRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	review, err := h.reviewService.Update(c.Request().Context(), CurrentUser(c), titleID, reviewID, req.Text, req.Score)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, toReviewResponse(review))
}

// DeleteReview godoc
// @Summary Delete a review
// @Tags reviews
// @Security BearerAuth
// @Param title_id path int true "Title ID"
// @Param review_id path int true "Review ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /titles/{title_id}/reviews/{review_id}/ [delete]
func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	titleID, reviewID, err := reviewPath(c)
	if err != nil {
		return err
	}
	if err := h.reviewService.Delete(c.Request().Context(), CurrentUser(c), titleID, reviewID); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListComments godoc
// @Summary List comments on a review
// @Tags comments
// @Produce json
// @Param title_id path int true "Title ID"
// @Param review_id path int true "Review ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} CommentPage
// @Failure 404 {object} errors.ErrorResponse
// @Router /titles/{title_id}/reviews/{review_id}/comments/ [get]
func (h *ReviewHandler) ListComments(c echo.Context) error {
	titleID, reviewID, err := reviewPath(c)
	if err != nil {
		return err
	}
	params, err := listParams(c)
	if err != nil {
		return err
	}

	page, err := h.commentService.List(c.Request().Context(), titleID, reviewID, params)
	if err != nil {
		return respondError(err)
	}
	out := CommentPage{Count: page.Count, Results: make([]CommentResponse, 0, len(page.Results))}
	for i := range page.Results {
		out.Results = append(out.Results, toCommentResponse(&page.Results[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// GetComment godoc
// @Summary Get a comment
// @Tags comments
// @Produce json
// @Param title_id path int true "Title ID"
// @Param review_id path int true "Review ID"
// @Param comment_id path int true "Comment ID"
// @Success 200 {object} CommentResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /titles/{title_id}/reviews/{review_id}/comments/{comment_id}/ [get]
func (h *ReviewHandler) GetComment(c echo.Context) error {
	titleID, reviewID, commentID, err := commentPath(c)
	if err != nil {
		return err
	}
	comment, err := h.commentService.Get(c.Request().Context(), titleID, reviewID, commentID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, toCommentResponse(comment))
}

// CreateComment godoc
// @Summary Comment on a review
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param title_id path int true "Title ID"
// @Param review_id path int true "Review ID"
// @Param request body CommentRequest true "Comment"
// @Success 201 {object} CommentResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /titles/{title_id}/reviews/{review_id}/comments/ [post]
func (h *ReviewHandler) CreateComment(c echo.Context) error {
	titleID, reviewID, err := reviewPath(c)
	if err != nil {
		return err
	}
	var req CommentRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	comment, err := h.commentService.Create(c.Request().Context(), CurrentUser(c), titleID, reviewID, deref(req.Text))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, toCommentResponse(comment))
}

// UpdateComment godoc
// @Summary Edit a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param title_id path int true "Title ID"
// @Param review_id path int true "Review ID"
// @Param comment_id path int true "Comment ID"
// @Param request body CommentRequest true "Comment"
// @Success 200 {object} CommentResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /titles/{title_id}/reviews/{review_id}/comments/{comment_id}/ [patch]
func (h *ReviewHandler) UpdateComment(c echo.Context) error {
	titleID, reviewID, commentID, err := commentPath(c)
	if err != nil {
		return err
	}
	var req CommentRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	comment, err := h.commentService.Update(c.Request().Context(), CurrentUser(c), titleID, reviewID, commentID, req.Text)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, toCommentResponse(comment))
}

// DeleteComment godoc
// @Summary Delete a comment
// @Tags comments
// @Security BearerAuth
// @Param title_id path int true "Title ID"
// @Param review_id path int true "Review ID"
// @Param comment_id path int true "Comment ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /titles/{title_id}/reviews/{review_id}/comments/{comment_id}/ [delete]
func (h *ReviewHandler) DeleteComment(c echo.Context) error {
	titleID, reviewID, commentID, err := commentPath(c)
	if err != nil {
		return err
	}
	if err := h.commentService.Delete(c.Request().Context(), CurrentUser(c), titleID, reviewID, commentID); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func reviewPath(c echo.Context) (titleID, reviewID uint, err error) {
	if titleID, err = pathID(c, "title_id"); err != nil {
		return 0, 0, err
	}
	if reviewID, err = pathID(c, "review_id"); err != nil {
		return 0, 0, err
	}
	return titleID, reviewID, nil
}

func commentPath(c echo.Context) (titleID, reviewID, commentID uint, err error) {
	if titleID, reviewID, err = reviewPath(c); err != nil {
		return 0, 0, 0, err
	}
	if commentID, err = pathID(c, "comment_id"); err != nil {
		return 0, 0, 0, err
	}
	return titleID, reviewID, commentID, nil
}
