package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/arklim/orderflow-catalog/internal/repository"
	"github.com/arklim/orderflow-catalog/internal/usecase"
)

type stubStockRepo struct {
	reserveErr error
	releaseErr error

	lastProductID int64
	lastQuantity  int
}

func (s *stubStockRepo) Reserve(_ context.Context, productID int64, quantity int) error {
	s.lastProductID = productID
	s.lastQuantity = quantity
	return s.reserveErr
}

func (s *stubStockRepo) Release(_ context.Context, productID int64, quantity int) error {
	s.lastProductID = productID
	s.lastQuantity = quantity
	return s.releaseErr
}

func newStockRouter(repo *stubStockRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)

	svc := usecase.NewStockService(repo, nil, nil)
	handler := NewStockHandler(svc)

	router := gin.New()
	handler.RegisterRoutes(router.Group("/products"))
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestStockHandler_Reserve(t *testing.T) {
	repo := &stubStockRepo{}
	router := newStockRouter(repo)

	rec := postJSON(router, "/products/42/stock/reserve", `{"quantity": 3}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if repo.lastProductID != 42 || repo.lastQuantity != 3 {
		t.Fatalf("unexpected repo call: product=%d quantity=%d", repo.lastProductID, repo.lastQuantity)
	}
}

func TestStockHandler_Reserve_InsufficientStock(t *testing.T) {
	repo := &stubStockRepo{reserveErr: repository.ErrInsufficientStock}
	router := newStockRouter(repo)

	rec := postJSON(router, "/products/42/stock/reserve", `{"quantity": 10}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	reasons, ok := body["errors"].([]any)
	if !ok {
		t.Fatalf("expected an errors array in the body, got %s", rec.Body.String())
	}
	if len(reasons) != 1 || reasons[0] != "insufficient stock" {
		t.Fatalf("unexpected error reasons: %v", reasons)
	}
	if _, found := body["error"]; found {
		t.Fatalf("stock failures must not carry a singular error field: %s", rec.Body.String())
	}
}

func TestStockHandler_Reserve_ProductMissing(t *testing.T) {
	repo := &stubStockRepo{reserveErr: repository.ErrNotFound}
	router := newStockRouter(repo)

	rec := postJSON(router, "/products/99/stock/reserve", `{"quantity": 1}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var body StockErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(body.Errors) != 1 || body.Errors[0] != "product not found" {
		t.Fatalf("unexpected error reasons: %v", body.Errors)
	}
}

func TestStockHandler_Reserve_InvalidPayload(t *testing.T) {
	repo := &stubStockRepo{}
	router := newStockRouter(repo)

	for _, body := range []string{`{}`, `{"quantity": 0}`, `{"quantity": -2}`, `not json`} {
		rec := postJSON(router, "/products/42/stock/reserve", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
	}

	if repo.lastQuantity != 0 {
		t.Fatal("expected repository to stay untouched on invalid payloads")
	}
}

func TestStockHandler_Reserve_InvalidID(t *testing.T) {
	repo := &stubStockRepo{}
	router := newStockRouter(repo)

	rec := postJSON(router, "/products/abc/stock/reserve", `{"quantity": 1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", rec.Code)
	}
}

func TestStockHandler_Release(t *testing.T) {
	repo := &stubStockRepo{}
	router := newStockRouter(repo)

	rec := postJSON(router, "/products/42/stock/release", `{"quantity": 2}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if repo.lastProductID != 42 || repo.lastQuantity != 2 {
		t.Fatalf("unexpected repo call: product=%d quantity=%d", repo.lastProductID, repo.lastQuantity)
	}
}

func TestStockHandler_Release_ProductMissing(t *testing.T) {
	repo := &stubStockRepo{releaseErr: repository.ErrNotFound}
	router := newStockRouter(repo)

	rec := postJSON(router, "/products/99/stock/release", `{"quantity": 1}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
