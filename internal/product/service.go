package product

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	customErrors "github.com/mambasports/team-service/internal/errors"
	"github.com/mambasports/team-service/internal/model"
	"go.uber.org/zap"
)

var (
	ErrProductNotFound = customErrors.NotFound("Product not found")
	errInvalidName     = customErrors.Validation("Valid product name is required")
	errInvalidPrice    = customErrors.Validation("Valid price is required and must be non-negative")
)

type Input struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
}

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) Add(ctx context.Context, owner *model.User, input Input) (*model.Product, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, errInvalidName
	}
	if input.Price == nil || *input.Price < 0 {
		return nil, errInvalidPrice
	}

	p := &model.Product{
		ID:     uuid.NewString(),
		Name:   strings.TrimSpace(*input.Name),
		Price:  *input.Price,
		UserID: owner.ID,
	}
	if input.Description != nil {
		p.Description = strings.TrimSpace(*input.Description)
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, customErrors.InternalServerError(err, "failed to add product")
	}
	s.log.Info("product added", zap.String("product_id", p.ID), zap.String("user_id", owner.ID))
	return p, nil
}

func (s *Service) List(ctx context.Context, filter Filter) (model.Page[model.Product], error) {
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return model.Page[model.Product]{}, customErrors.InternalServerError(err, "failed to list products")
	}
	return model.NewPage(products, filter.Page, total), nil
}

// owned loads the product and checks that user owns it.
func (s *Service) owned(ctx context.Context, user *model.User, id, action string) (*model.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, customErrors.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, customErrors.InternalServerError(err, "failed to load product")
	}
	if p.UserID != user.ID {
		return nil, customErrors.Forbidden("Not authorized to %s this product", action)
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, user *model.User, id string, input Input) (*model.Product, error) {
	p, err := s.owned(ctx, user, id, "update")
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, errInvalidName
		}
		p.Name = strings.TrimSpace(*input.Name)
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, errInvalidPrice
		}
		p.Price = *input.Price
	}
	if input.Description != nil {
		p.Description = strings.TrimSpace(*input.Description)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, customErrors.InternalServerError(err, "failed to update product")
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, user *model.User, id string) error {
	if _, err := s.owned(ctx, user, id, "delete"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return customErrors.InternalServerError(err, "failed to delete product")
	}
	return nil
}
