package product

import (
	"context"
	"errors"
	"testing"
)

func newTestService() *Service {
	return NewService(NewMemoryRepository())
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	p, err := svc.Create(ctx, CreateInput{
		Name:        "City Ride",
		Type:        TypeSimple,
		BasePrice:   4.50,
		Description: "Everyday rides around town",
		Features:    map[string]any{"seats": 4},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == "" {
		t.Fatal("expected generated product id")
	}
	if !p.IsActive {
		t.Fatal("new products must be active")
	}

	got, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "City Ride" || got.BasePrice != 4.50 {
		t.Fatalf("unexpected product %+v", got)
	}
}

func TestCreateProductValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	if _, err := svc.Create(ctx, CreateInput{Name: "", Type: TypeSimple, BasePrice: 1}); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Name: "X", Type: "luxury", BasePrice: 1}); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Name: "X", Type: TypeElite, BasePrice: 0}); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
}

func TestListReturnsActiveOnly(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	first, err := svc.Create(ctx, CreateInput{Name: "Simple", Type: TypeSimple, BasePrice: 3})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Name: "Comfort", Type: TypeComfortable, BasePrice: 6}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	products, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 active product, got %d", len(products))
	}
	if products[0].Name != "Comfort" {
		t.Fatalf("unexpected product %q", products[0].Name)
	}
}

func TestUpdateAppliesPartialFields(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	p, err := svc.Create(ctx, CreateInput{Name: "Simple", Type: TypeSimple, BasePrice: 3, Description: "base"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	price := 5.25
	updated, err := svc.Update(ctx, p.ID, UpdateInput{BasePrice: &price})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.BasePrice != 5.25 {
		t.Fatalf("price not updated: %v", updated.BasePrice)
	}
	if updated.Name != "Simple" || updated.Description != "base" {
		t.Fatalf("untouched fields changed: %+v", updated)
	}

	bad := "luxury"
	if _, err := svc.Update(ctx, p.ID, UpdateInput{Type: &bad}); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestDeleteIsSoft(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	p, err := svc.Create(ctx, CreateInput{Name: "Elite", Type: TypeElite, BasePrice: 12})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := svc.Get(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for deleted product, got %v", err)
	}

	// The record survives deletion, only the active flag flips.
	raw, err := svc.repo.Find(ctx, p.ID)
	if err != nil {
		t.Fatalf("find raw: %v", err)
	}
	if raw.IsActive {
		t.Fatal("deleted product should be inactive")
	}

	if err := svc.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
