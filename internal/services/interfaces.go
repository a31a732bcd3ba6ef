package services

import (
	"context"
	"time"

	domain "github.com/praticos/api/internal/domain"
)

// TokenService resolves opaque public tokens into their scope.
type TokenService interface {
	// Resolve validates the raw token and returns its scope. Every resolution
	// failure surfaces as ErrInvalidToken so callers cannot distinguish
	// malformed, unknown, and expired links.
	Resolve(ctx context.Context, raw string) (domain.ShareToken, error)
}

// OrderService governs the customer-facing order lifecycle and read view.
type OrderService interface {
	Approve(ctx context.Context, cmd ApproveOrderCommand) (domain.Order, error)
	Reject(ctx context.Context, cmd RejectOrderCommand) (domain.Order, error)
	Projection(ctx context.Context, cmd ProjectionCommand) (OrderProjection, error)
}

// CommentService owns the order's public comment thread.
type CommentService interface {
	Add(ctx context.Context, cmd AddCommentCommand) (CommentView, error)
	List(ctx context.Context, cmd ListCommentsCommand) ([]CommentView, error)
}

// RatingService records the at-most-once satisfaction submission per order.
type RatingService interface {
	Submit(ctx context.Context, cmd SubmitRatingCommand) (RatingView, error)
}

// ApproveOrderCommand approves the quote the token's order is in.
type ApproveOrderCommand struct {
	Token domain.ShareToken
}

// RejectOrderCommand rejects the quote, optionally with a customer reason.
type RejectOrderCommand struct {
	Token  domain.ShareToken
	Reason string
}

// ProjectionCommand requests the customer-visible order view.
type ProjectionCommand struct {
	Token domain.ShareToken
}

// AddCommentCommand appends a customer comment to the order thread.
type AddCommentCommand struct {
	Token domain.ShareToken
	Text  string
}

// ListCommentsCommand reads the order's public thread.
type ListCommentsCommand struct {
	Token domain.ShareToken
}

// SubmitRatingCommand records the customer's score for the order.
type SubmitRatingCommand struct {
	Token   domain.ShareToken
	Score   int
	Comment string
}

// OrderProjection is the customer-safe read view of an order. Comments are nil
// when the token lacks view and comment permission; a present-but-empty thread
// serialises as an empty array.
type OrderProjection struct {
	ID              string            `json:"id"`
	Number          int64             `json:"number"`
	Status          string            `json:"status"`
	DueDate         *time.Time        `json:"due_date,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	CustomerName    string            `json:"customer_name,omitempty"`
	Device          *DeviceView       `json:"device,omitempty"`
	Services        []ServiceLineView `json:"services"`
	Products        []ProductLineView `json:"products"`
	Photos          []PhotoView       `json:"photos"`
	Totals          TotalsView        `json:"totals"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	ApprovedAt      *time.Time        `json:"approved_at,omitempty"`
	RejectedAt      *time.Time        `json:"rejected_at,omitempty"`
	Rating          *RatingView       `json:"rating,omitempty"`
	Company         *CompanyView      `json:"company,omitempty"`
	Comments        []CommentView     `json:"comments,omitempty"`
	Permissions     []string          `json:"permissions"`
}

// DeviceView describes the serviced equipment.
type DeviceView struct {
	Name   string `json:"name"`
	Serial string `json:"serial,omitempty"`
}

// ServiceLineView is one labour item.
type ServiceLineView struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Value       int64  `json:"value"`
}

// ProductLineView is one parts/product item.
type ProductLineView struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	UnitValue   int64  `json:"unit_value"`
	Quantity    int64  `json:"quantity"`
}

// PhotoView is one customer-visible attachment.
type PhotoView struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// TotalsView is the computed financial block. Remaining is always derived from
// subtotal, discount, and paid; overpayment shows as a negative remaining.
type TotalsView struct {
	Subtotal  int64 `json:"subtotal"`
	Discount  int64 `json:"discount"`
	Paid      int64 `json:"paid"`
	Remaining int64 `json:"remaining"`
}

// CommentView is one public thread entry.
type CommentView struct {
	ID         string    `json:"id"`
	AuthorType string    `json:"author_type"`
	AuthorName string    `json:"author_name,omitempty"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// RatingView is the stored satisfaction submission.
type RatingView struct {
	Score     int       `json:"score"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CompanyView is the shop's display block.
type CompanyView struct {
	Name    string `json:"name"`
	LogoURL string `json:"logo_url,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// OrderEventPublisher emits order lifecycle events to downstream consumers
// such as the notification bot. Delivery is best-effort.
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
}

// OrderEvent describes one customer-triggered change on an order.
type OrderEvent struct {
	Type        string    `json:"type"`
	OrderID     string    `json:"order_id"`
	OrderNumber int64     `json:"order_number,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	CommentID   string    `json:"comment_id,omitempty"`
	Score       int       `json:"score,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Order event types consumed downstream.
const (
	OrderEventApproved       = "order.approved"
	OrderEventRejected       = "order.rejected"
	OrderEventCommentCreated = "order.comment.created"
	OrderEventRated          = "order.rated"
)
