package product

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Input validation errors the HTTP layer maps to bad-request responses.
var (
	ErrInvalidType  = errors.New("invalid product type")
	ErrNameRequired = errors.New("product name is required")
	ErrInvalidPrice = errors.New("base price must be positive")
)

// Service manages the product catalog.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new product service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateInput carries the fields for a new product.
type CreateInput struct {
	Name        string
	Type        string
	BasePrice   float64
	Description string
	Features    map[string]any
}

// Create adds a product to the catalog.
func (s *Service) Create(ctx context.Context, in CreateInput) (Product, error) {
	if in.Name == "" {
		return Product{}, ErrNameRequired
	}
	if !ValidType(in.Type) {
		return Product{}, ErrInvalidType
	}
	if in.BasePrice <= 0 {
		return Product{}, ErrInvalidPrice
	}
	features := in.Features
	if features == nil {
		features = map[string]any{}
	}
	now := s.now().UTC()
	p := Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Type:        in.Type,
		BasePrice:   in.BasePrice,
		Description: in.Description,
		Features:    features,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

// List returns the active catalog.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.ListActive(ctx)
}

// Get returns an active product by id.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	return s.repo.FindActive(ctx, id)
}

// UpdateInput carries optional product mutations; nil pointers are ignored.
type UpdateInput struct {
	Name        *string
	Type        *string
	BasePrice   *float64
	Description *string
	Features    map[string]any
}

// Update applies the provided fields to an existing product.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Product, error) {
	p, err := s.repo.Find(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Type != nil {
		if !ValidType(*in.Type) {
			return Product{}, ErrInvalidType
		}
		p.Type = *in.Type
	}
	if in.BasePrice != nil {
		p.BasePrice = *in.BasePrice
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Features != nil {
		p.Features = in.Features
	}
	p.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

// Delete soft-deletes a product by flipping its active flag.
func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.repo.Find(ctx, id)
	if err != nil {
		return err
	}
	p.IsActive = false
	p.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, p)
}
