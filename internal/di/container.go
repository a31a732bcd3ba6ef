package di

import (
	"context"
	"errors"

	"github.com/praticos/api/internal/platform/config"
	"github.com/praticos/api/internal/repositories"
	"github.com/praticos/api/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon.
// Concrete implementations are assembled via dependency injection in
// NewContainer.
type Services struct {
	Tokens   services.TokenService
	Orders   services.OrderService
	Comments services.CommentService
	Ratings  services.RatingService
}

// Container wires repositories and services for runtime use.
type Container struct {
	Config       config.Config
	Repositories repositories.Registry
	Services     Services
}

// NewContainer constructs the runtime dependencies. Production wiring provides
// Firestore-backed repositories and the Pub/Sub publisher; tests supply
// in-memory registries and capture publishers.
func NewContainer(ctx context.Context, cfg config.Config, reg repositories.Registry, events services.OrderEventPublisher) (*Container, error) {
	if reg == nil {
		return nil, errors.New("repositories registry is required")
	}

	svc, err := buildServices(reg, cfg, events)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:       cfg,
		Repositories: reg,
		Services:     svc,
	}, nil
}

// Close releases resources such as repository clients.
func (c *Container) Close(ctx context.Context) error {
	if c == nil || c.Repositories == nil {
		return nil
	}
	return c.Repositories.Close(ctx)
}

func buildServices(reg repositories.Registry, cfg config.Config, events services.OrderEventPublisher) (Services, error) {
	var svc Services

	tokens, err := services.NewTokenService(services.TokenServiceDeps{
		Tokens: reg.Tokens(),
	})
	if err != nil {
		return svc, err
	}
	svc.Tokens = tokens

	orders, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:    reg.Orders(),
		Tokens:    reg.Tokens(),
		Comments:  reg.Comments(),
		Ratings:   reg.Ratings(),
		Companies: reg.Companies(),
		Events:    events,
		CompanyID: cfg.Public.CompanyDocID,
	})
	if err != nil {
		return svc, err
	}
	svc.Orders = orders

	comments, err := services.NewCommentService(services.CommentServiceDeps{
		Comments:  reg.Comments(),
		Events:    events,
		MaxLength: cfg.Public.CommentMaxLength,
	})
	if err != nil {
		return svc, err
	}
	svc.Comments = comments

	ratings, err := services.NewRatingService(services.RatingServiceDeps{
		Ratings:          reg.Ratings(),
		Events:           events,
		MinScore:         cfg.Public.RatingMin,
		MaxScore:         cfg.Public.RatingMax,
		CommentMaxLength: cfg.Public.RatingCommentMaxLength,
	})
	if err != nil {
		return svc, err
	}
	svc.Ratings = ratings

	return svc, nil
}
