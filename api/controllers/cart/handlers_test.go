package cart

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-bot/api/middleware"
	cartsvc "github.com/angelmondragon/storefront-bot/internal/cart"
	"github.com/angelmondragon/storefront-bot/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-bot/pkg/errors"
	"github.com/angelmondragon/storefront-bot/pkg/logger"
)

type stubCartService struct {
	cartsvc.Service
	items   map[uuid.UUID]int
	exists  bool
	removed *int
}

func newStubCart() *stubCartService {
	return &stubCartService{items: map[uuid.UUID]int{}}
}

func (s *stubCartService) View(ctx context.Context, userID int64) (*cartsvc.View, error) {
	s.exists = true
	view := &cartsvc.View{UserID: userID, Items: []cartsvc.LineView{}}
	for id, qty := range s.items {
		view.Items = append(view.Items, cartsvc.LineView{ProductID: id, Quantity: qty, Price: 1000, Total: int64(qty) * 1000, Available: true})
		view.ItemCount += qty
		view.TotalPrice += int64(qty) * 1000
	}
	return view, nil
}

func (s *stubCartService) AddItem(ctx context.Context, userID int64, productID uuid.UUID, qty int) (*models.Cart, error) {
	if qty > 10 {
		return nil, pkgerrors.ProductUnavailable(productID.String(), "insufficient stock")
	}
	s.exists = true
	s.items[productID] += qty
	return &models.Cart{}, nil
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID int64, productID uuid.UUID, qty *int) (*models.Cart, error) {
	s.removed = qty
	if qty == nil || *qty >= s.items[productID] {
		delete(s.items, productID)
	} else {
		s.items[productID] -= *qty
	}
	return &models.Cart{}, nil
}

func (s *stubCartService) Clear(ctx context.Context, userID int64) (*models.Cart, error) {
	if !s.exists {
		return nil, pkgerrors.NotFound("cart")
	}
	s.items = map[uuid.UUID]int{}
	return &models.Cart{}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func request(method, target, body string, userID int64, productID string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := req.Context()
	if userID != 0 {
		ctx = middleware.WithUserID(ctx, userID)
	}
	if productID != "" {
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("productId", productID)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	}
	return req.WithContext(ctx)
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) cartsvc.View {
	t.Helper()
	var body struct {
		Data cartsvc.View `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v (body=%s)", err, rec.Body.String())
	}
	return body.Data
}

func TestCartAddItemAccumulates(t *testing.T) {
	svc := newStubCart()
	productID := uuid.New()
	body := `{"product_id":"` + productID.String() + `","quantity":2}`

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		CartAddItem(svc, testLogger()).ServeHTTP(rec, request(http.MethodPost, "/api/v1/cart/items", body, 42, ""))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	CartFetch(svc, testLogger()).ServeHTTP(rec, request(http.MethodGet, "/api/v1/cart", "", 42, ""))
	view := decodeView(t, rec)
	if view.ItemCount != 4 || view.TotalPrice != 4000 {
		t.Fatalf("expected 4 items totalling 4000, got %+v", view)
	}
}

func TestCartAddItemValidation(t *testing.T) {
	svc := newStubCart()
	cases := []string{
		`{"quantity":1}`,
		`{"product_id":"` + uuid.NewString() + `","quantity":0}`,
		`{"product_id":"` + uuid.NewString() + `","quantity":1,"extra":true}`,
	}
	for _, body := range cases {
		rec := httptest.NewRecorder()
		CartAddItem(svc, testLogger()).ServeHTTP(rec, request(http.MethodPost, "/", body, 42, ""))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	body := `{"product_id":"` + uuid.NewString() + `","quantity":50}`
	CartAddItem(svc, testLogger()).ServeHTTP(rec, request(http.MethodPost, "/", body, 42, ""))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 when stock is short, got %d", rec.Code)
	}
}

func TestCartRemoveItemPartial(t *testing.T) {
	svc := newStubCart()
	productID := uuid.New()
	svc.items[productID] = 5

	rec := httptest.NewRecorder()
	CartRemoveItem(svc, testLogger()).ServeHTTP(rec, request(http.MethodDelete, "/?quantity=2", "", 42, productID.String()))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.removed == nil || *svc.removed != 2 || svc.items[productID] != 3 {
		t.Fatalf("expected 3 left after removing 2, got %d", svc.items[productID])
	}

	rec = httptest.NewRecorder()
	CartRemoveItem(svc, testLogger()).ServeHTTP(rec, request(http.MethodDelete, "/", "", 42, productID.String()))
	if svc.removed != nil {
		t.Fatalf("expected whole line removal without quantity")
	}
	if view := decodeView(t, rec); len(view.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", view.Items)
	}
}

func TestCartClearWithoutCart(t *testing.T) {
	rec := httptest.NewRecorder()
	CartClear(newStubCart(), testLogger()).ServeHTTP(rec, request(http.MethodDelete, "/", "", 42, ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("clearing a missing cart should succeed, got %d", rec.Code)
	}
}

func TestCartRequiresUser(t *testing.T) {
	rec := httptest.NewRecorder()
	CartFetch(newStubCart(), testLogger()).ServeHTTP(rec, request(http.MethodGet, "/", "", 0, ""))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
