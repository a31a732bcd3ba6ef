package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	domain "github.com/praticos/api/internal/domain"
	"github.com/praticos/api/internal/platform/requestctx"
	"github.com/praticos/api/internal/repositories"
)

const (
	commentIDPrefix = "cmt_"

	auditTextApproved = "Quote approved via the tracking link."
	auditTextRejected = "Quote rejected via the tracking link."

	followUpTimeout = 10 * time.Second
)

// OrderServiceDeps bundles collaborators required to construct an OrderService.
type OrderServiceDeps struct {
	Orders    repositories.OrderRepository
	Tokens    repositories.TokenRepository
	Comments  repositories.CommentRepository
	Ratings   repositories.RatingRepository
	Companies repositories.CompanyRepository
	Events    OrderEventPublisher
	Clock     func() time.Time
	// CompanyID selects the shop display document shown on the projection.
	CompanyID   string
	IDGenerator func() string
}

type orderService struct {
	orders    repositories.OrderRepository
	tokens    repositories.TokenRepository
	comments  repositories.CommentRepository
	ratings   repositories.RatingRepository
	companies repositories.CompanyRepository
	events    OrderEventPublisher
	clock     func() time.Time
	companyID string
	newID     func() string
}

// NewOrderService wires dependencies into a concrete OrderService implementation.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	if deps.Comments == nil {
		return nil, errors.New("order service: comment repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return commentIDPrefix + ulid.Make().String()
		}
	}

	return &orderService{
		orders:    deps.Orders,
		tokens:    deps.Tokens,
		comments:  deps.Comments,
		ratings:   deps.Ratings,
		companies: deps.Companies,
		events:    deps.Events,
		clock:     clock,
		companyID: strings.TrimSpace(deps.CompanyID),
		newID:     idGen,
	}, nil
}

// Approve moves the order from quote to approved. Exactly one of N racing
// calls wins; the rest observe the already-approved conflict.
func (s *orderService) Approve(ctx context.Context, cmd ApproveOrderCommand) (domain.Order, error) {
	if !cmd.Token.Permissions.Has(domain.PermissionApprove) {
		return domain.Order{}, ErrPermissionDenied
	}

	now := s.clock().UTC()
	order, err := s.orders.ApplyTransition(ctx, cmd.Token.OrderID, func(current domain.Order) (repositories.OrderMutation, error) {
		if err := checkQuote(current); err != nil {
			return repositories.OrderMutation{}, err
		}
		approvedAt := now
		return repositories.OrderMutation{
			Status:     domain.OrderStatusApproved,
			ApprovedAt: &approvedAt,
			UpdatedAt:  now,
		}, nil
	})
	if err != nil {
		return domain.Order{}, mapOrderError(err)
	}

	go s.afterTransition(requestctx.Detach(ctx), order, cmd.Token, "")
	return order, nil
}

// Reject moves the order from quote to canceled, persisting the customer's
// reason alongside the rejection timestamp.
func (s *orderService) Reject(ctx context.Context, cmd RejectOrderCommand) (domain.Order, error) {
	if !cmd.Token.Permissions.Has(domain.PermissionApprove) {
		return domain.Order{}, ErrPermissionDenied
	}

	now := s.clock().UTC()
	reason := strings.TrimSpace(cmd.Reason)

	order, err := s.orders.ApplyTransition(ctx, cmd.Token.OrderID, func(current domain.Order) (repositories.OrderMutation, error) {
		if err := checkQuote(current); err != nil {
			return repositories.OrderMutation{}, err
		}
		rejectedAt := now
		return repositories.OrderMutation{
			Status:          domain.OrderStatusCanceled,
			RejectedAt:      &rejectedAt,
			RejectionReason: &reason,
			UpdatedAt:       now,
		}, nil
	})
	if err != nil {
		return domain.Order{}, mapOrderError(err)
	}

	go s.afterTransition(requestctx.Detach(ctx), order, cmd.Token, reason)
	return order, nil
}

// Projection assembles the customer-visible view of the token's order. The
// comment thread is included only when the token can see it.
func (s *orderService) Projection(ctx context.Context, cmd ProjectionCommand) (OrderProjection, error) {
	order, err := s.orders.FindByID(ctx, cmd.Token.OrderID)
	if err != nil {
		return OrderProjection{}, mapOrderError(err)
	}

	projection := OrderProjection{
		ID:              order.ID,
		Number:          order.Number,
		Status:          string(order.Status),
		DueDate:         order.DueDate,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
		CustomerName:    order.Customer.Name,
		Services:        serviceLineViews(order.Services),
		Products:        productLineViews(order.Products),
		Photos:          photoViews(order.Photos),
		Totals:          totalsView(order),
		ApprovedAt:      order.ApprovedAt,
		RejectedAt:      order.RejectedAt,
		Permissions:     cmd.Token.Permissions.Strings(),
		RejectionReason: order.RejectionReason,
	}
	if order.Device.Name != "" || order.Device.Serial != "" {
		projection.Device = &DeviceView{Name: order.Device.Name, Serial: order.Device.Serial}
	}

	if s.ratings != nil {
		rating, err := s.ratings.FindByOrder(ctx, order.ID)
		switch {
		case err == nil:
			projection.Rating = &RatingView{Score: rating.Score, Comment: rating.Comment, CreatedAt: rating.CreatedAt}
		case isNotFound(err):
			// no rating yet
		default:
			return OrderProjection{}, fmt.Errorf("order service: projection rating: %w", err)
		}
	}

	if s.companies != nil && s.companyID != "" {
		company, err := s.companies.Get(ctx, s.companyID)
		if err == nil {
			projection.Company = &CompanyView{
				Name:    company.Name,
				LogoURL: company.LogoURL,
				Phone:   company.Phone,
				Email:   company.Email,
				Address: company.Address,
			}
		} else if !isNotFound(err) {
			requestctx.Logger(ctx).Warn("load company display info failed", zap.Error(err))
		}
	}

	if cmd.Token.Permissions.HasAny(domain.PermissionView, domain.PermissionComment) {
		comments, err := s.comments.ListByOrder(ctx, order.ID)
		if err != nil {
			return OrderProjection{}, fmt.Errorf("order service: projection comments: %w", err)
		}
		projection.Comments = publicCommentViews(comments)
	}

	return projection, nil
}

// afterTransition runs the best-effort follow-ups of a successful transition:
// the customer-authored audit comment, the token approval marker, and the
// downstream event. Failures are logged and never surfaced.
func (s *orderService) afterTransition(ctx context.Context, order domain.Order, token domain.ShareToken, reason string) {
	followCtx, cancel := context.WithTimeout(ctx, followUpTimeout)
	defer cancel()

	logger := requestctx.Logger(followCtx)
	approved := order.Status == domain.OrderStatusApproved
	now := s.clock().UTC()

	text := auditTextRejected
	if approved {
		text = auditTextApproved
	} else if reason != "" {
		text = fmt.Sprintf("%s Reason: %s", auditTextRejected, reason)
	}

	if _, err := s.comments.Append(followCtx, order.ID, domain.Comment{
		ID:         s.newID(),
		AuthorType: domain.AuthorTypeCustomer,
		AuthorName: token.Customer.Name,
		Text:       text,
		CreatedAt:  now,
	}); err != nil {
		logger.Warn("append transition audit comment failed", zap.String("order_id", order.ID), zap.Error(err))
	}

	if s.tokens != nil {
		var err error
		if approved {
			err = s.tokens.MarkApproved(followCtx, token.Token, now)
		} else {
			err = s.tokens.MarkRejected(followCtx, token.Token, now)
		}
		if err != nil {
			logger.Debug("mark link decision failed", zap.String("order_id", order.ID), zap.Error(err))
		}
	}

	if s.events != nil {
		eventType := OrderEventRejected
		if approved {
			eventType = OrderEventApproved
		}
		_ = s.events.PublishOrderEvent(followCtx, OrderEvent{
			Type:        eventType,
			OrderID:     order.ID,
			OrderNumber: order.Number,
			Reason:      reason,
			OccurredAt:  now,
		})
	}
}

// checkQuote is the transition guard shared by approve and reject. It runs
// against the order read inside the transaction, so the conflict it reports
// reflects the committed state a racing request produced.
func checkQuote(current domain.Order) error {
	switch {
	case current.Status == domain.OrderStatusQuote:
		return nil
	case current.Status == domain.OrderStatusApproved:
		return ErrAlreadyApproved
	case current.Status == domain.OrderStatusCanceled && current.RejectedAt != nil:
		return ErrAlreadyRejected
	default:
		return fmt.Errorf("%w: status is %s", ErrInvalidTransition, current.Status)
	}
}

func mapOrderError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInvalidTransition) {
		return err
	}
	if isNotFound(err) {
		return ErrOrderNotFound
	}
	return fmt.Errorf("order service: %w", err)
}

func serviceLineViews(lines []domain.ServiceLine) []ServiceLineView {
	views := make([]ServiceLineView, 0, len(lines))
	for _, line := range lines {
		views = append(views, ServiceLineView{Name: line.Name, Description: line.Description, Value: line.Value})
	}
	return views
}

func productLineViews(lines []domain.ProductLine) []ProductLineView {
	views := make([]ProductLineView, 0, len(lines))
	for _, line := range lines {
		views = append(views, ProductLineView{
			Name:        line.Name,
			Description: line.Description,
			UnitValue:   line.UnitValue,
			Quantity:    line.Quantity,
		})
	}
	return views
}

func photoViews(photos []domain.Photo) []PhotoView {
	views := make([]PhotoView, 0, len(photos))
	for _, photo := range photos {
		views = append(views, PhotoView{URL: photo.URL, Description: photo.Description})
	}
	return views
}

func totalsView(order domain.Order) TotalsView {
	return TotalsView{
		Subtotal:  order.Total,
		Discount:  order.Discount,
		Paid:      order.PaidAmount,
		Remaining: order.RemainingBalance(),
	}
}

func publicCommentViews(comments []domain.Comment) []CommentView {
	views := make([]CommentView, 0, len(comments))
	for _, comment := range comments {
		if comment.Internal {
			continue
		}
		views = append(views, CommentView{
			ID:         comment.ID,
			AuthorType: string(comment.AuthorType),
			AuthorName: comment.AuthorName,
			Text:       comment.Text,
			CreatedAt:  comment.CreatedAt,
		})
	}
	return views
}
