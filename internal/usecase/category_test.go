package usecase

import (
	"context"
	"errors"
	"testing"
)

func TestCategoryService_Create(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := NewCategoryService(repo)

	created, err := svc.Create(context.Background(), CategoryInput{Name: "  Peripherals  "})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected generated id")
	}
	if created.Name != "Peripherals" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}

	if _, err := svc.Create(context.Background(), CategoryInput{Name: "   "}); !errors.Is(err, ErrCategoryNameRequired) {
		t.Fatalf("expected ErrCategoryNameRequired, got %v", err)
	}
}

func TestCategoryService_Update(t *testing.T) {
	repo := newFakeCategoryRepo(5)
	svc := NewCategoryService(repo)

	updated, err := svc.Update(context.Background(), 5, CategoryInput{Name: "Renamed"})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Fatalf("expected Renamed, got %q", updated.Name)
	}

	if _, err := svc.Update(context.Background(), 999, CategoryInput{Name: "Ghost"}); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestCategoryService_Delete(t *testing.T) {
	repo := newFakeCategoryRepo(5, 6)
	repo.inUse[6] = true
	svc := NewCategoryService(repo)

	if err := svc.Delete(context.Background(), 5); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := svc.Delete(context.Background(), 6); !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("expected ErrCategoryInUse, got %v", err)
	}
	if err := svc.Delete(context.Background(), 999); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}
