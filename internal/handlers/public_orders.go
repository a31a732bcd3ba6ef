package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	domain "github.com/praticos/api/internal/domain"
	"github.com/praticos/api/internal/platform/httpx"
	"github.com/praticos/api/internal/services"
)

// PublicOrderHandlers exposes the token-scoped customer surface: the order
// view, quote approval/rejection, the comment thread, and the rating.
type PublicOrderHandlers struct {
	tokens   services.TokenService
	orders   services.OrderService
	comments services.CommentService
	ratings  services.RatingService
}

// NewPublicOrderHandlers constructs a new PublicOrderHandlers instance.
func NewPublicOrderHandlers(tokens services.TokenService, orders services.OrderService, comments services.CommentService, ratings services.RatingService) *PublicOrderHandlers {
	return &PublicOrderHandlers{
		tokens:   tokens,
		orders:   orders,
		comments: comments,
		ratings:  ratings,
	}
}

// Routes registers the /orders/{token} endpoints.
func (h *PublicOrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Route("/orders/{token}", func(r chi.Router) {
		r.Get("/", h.getOrder)
		r.Post("/approve", h.approveOrder)
		r.Post("/reject", h.rejectOrder)
		r.Get("/comments", h.listComments)
		r.Post("/comments", h.addComment)
		r.Post("/rating", h.submitRating)
	})
}

func (h *PublicOrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := h.resolveToken(ctx, w, r)
	if !ok {
		return
	}

	projection, err := h.orders.Projection(ctx, services.ProjectionCommand{Token: token})
	if err != nil {
		writePublicError(ctx, w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, projection)
}

func (h *PublicOrderHandlers) approveOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := h.resolveToken(ctx, w, r)
	if !ok {
		return
	}

	order, err := h.orders.Approve(ctx, services.ApproveOrderCommand{Token: token})
	if err != nil {
		writePublicError(ctx, w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, transitionPayload(order))
}

type rejectOrderRequest struct {
	Reason string `json:"reason"`
}

func (h *PublicOrderHandlers) rejectOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := h.resolveToken(ctx, w, r)
	if !ok {
		return
	}

	// The reason is optional, so an empty body is legal here.
	var req rejectOrderRequest
	if body, err := readLimitedBody(r, maxPublicBodySize); err == nil {
		if err := json.Unmarshal(body, &req); err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
			return
		}
	} else if errors.Is(err, errBodyTooLarge) {
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		return
	}

	order, err := h.orders.Reject(ctx, services.RejectOrderCommand{Token: token, Reason: req.Reason})
	if err != nil {
		writePublicError(ctx, w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, transitionPayload(order))
}

type addCommentRequest struct {
	Text string `json:"text"`
}

func (h *PublicOrderHandlers) addComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := h.resolveToken(ctx, w, r)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxPublicBodySize)
	if err != nil {
		switch {
		case errors.Is(err, errEmptyBody):
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body is required", http.StatusBadRequest))
		case errors.Is(err, errBodyTooLarge):
			httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unable to read request body", http.StatusBadRequest))
		}
		return
	}

	var req addCommentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	comment, err := h.comments.Add(ctx, services.AddCommentCommand{Token: token, Text: req.Text})
	if err != nil {
		writePublicError(ctx, w, err)
		return
	}
	httpx.WriteData(w, http.StatusCreated, comment)
}

func (h *PublicOrderHandlers) listComments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := h.resolveToken(ctx, w, r)
	if !ok {
		return
	}

	comments, err := h.comments.List(ctx, services.ListCommentsCommand{Token: token})
	if err != nil {
		writePublicError(ctx, w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, comments)
}

type submitRatingRequest struct {
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

func (h *PublicOrderHandlers) submitRating(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := h.resolveToken(ctx, w, r)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxPublicBodySize)
	if err != nil {
		switch {
		case errors.Is(err, errEmptyBody):
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body is required", http.StatusBadRequest))
		case errors.Is(err, errBodyTooLarge):
			httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unable to read request body", http.StatusBadRequest))
		}
		return
	}

	var req submitRatingRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	rating, err := h.ratings.Submit(ctx, services.SubmitRatingCommand{Token: token, Score: req.Score, Comment: req.Comment})
	if err != nil {
		writePublicError(ctx, w, err)
		return
	}
	httpx.WriteData(w, http.StatusCreated, rating)
}

// resolveToken resolves the path token and writes the uniform invalid-link
// failure itself when resolution fails.
func (h *PublicOrderHandlers) resolveToken(ctx context.Context, w http.ResponseWriter, r *http.Request) (domain.ShareToken, bool) {
	token, err := h.tokens.Resolve(ctx, chi.URLParam(r, "token"))
	if err != nil {
		writePublicError(ctx, w, err)
		return domain.ShareToken{}, false
	}
	return token, true
}

type orderTransitionPayload struct {
	ID              string `json:"id"`
	Number          int64  `json:"number"`
	Status          string `json:"status"`
	ApprovedAt      string `json:"approved_at,omitempty"`
	RejectedAt      string `json:"rejected_at,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

func transitionPayload(order domain.Order) orderTransitionPayload {
	payload := orderTransitionPayload{
		ID:     order.ID,
		Number: order.Number,
		Status: string(order.Status),
	}
	if order.ApprovedAt != nil {
		payload.ApprovedAt = formatTime(*order.ApprovedAt)
	}
	if order.RejectedAt != nil {
		payload.RejectedAt = formatTime(*order.RejectedAt)
		payload.RejectionReason = order.RejectionReason
	}
	return payload
}

// writePublicError maps service failures onto the uniform error envelope. The
// messages stay generic; they never carry the token or internal identifiers.
func writePublicError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidToken):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_link", "this link is invalid or has expired", http.StatusUnauthorized))
	case errors.Is(err, services.ErrPermissionDenied):
		httpx.WriteError(ctx, w, httpx.NewError("permission_denied", "this link does not allow that action", http.StatusForbidden))
	case errors.Is(err, services.ErrAlreadyApproved):
		httpx.WriteError(ctx, w, httpx.NewError("already_approved", "this quote was already approved", http.StatusConflict))
	case errors.Is(err, services.ErrAlreadyRejected):
		httpx.WriteError(ctx, w, httpx.NewError("already_rejected", "this quote was already rejected", http.StatusConflict))
	case errors.Is(err, services.ErrInvalidTransition):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_transition", "this order can no longer be changed", http.StatusConflict))
	case errors.Is(err, services.ErrAlreadyRated):
		httpx.WriteError(ctx, w, httpx.NewError("already_rated", "this order was already rated", http.StatusConflict))
	case errors.Is(err, services.ErrInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", publicInputMessage(err), http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	case services.IsStoreUnavailable(err):
		httpx.WriteError(ctx, w, httpx.NewError("store_unavailable", "service temporarily unavailable, try again shortly", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "something went wrong", http.StatusInternalServerError))
	}
}

// publicInputMessage surfaces the validation detail appended to
// ErrInvalidInput without the sentinel prefix.
func publicInputMessage(err error) string {
	const prefix = "order: invalid input: "
	msg := err.Error()
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return "invalid request"
}
