package orders

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
	internalorders "github.com/angelmondragon/storefront-bot/internal/orders"
	"github.com/angelmondragon/storefront-bot/pkg/db/models"
	"github.com/angelmondragon/storefront-bot/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-bot/pkg/errors"
	"github.com/angelmondragon/storefront-bot/pkg/logger"
)

type stubOrdersService struct {
	internalorders.Service
	orders     map[uuid.UUID]*models.Order
	lastQuery  internalorders.ListQuery
	lastCursor string
	rated      int
}

func (s *stubOrdersService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if o, ok := s.orders[id]; ok {
		return o, nil
	}
	return nil, pkgerrors.NotFound("order")
}

func (s *stubOrdersService) GetForUser(ctx context.Context, userID int64, id uuid.UUID) (*models.Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil || o.UserID != userID {
		return nil, pkgerrors.NotFound("order")
	}
	return o, nil
}

func (s *stubOrdersService) ListForUser(ctx context.Context, userID int64, limit int, cursor string) (*internalorders.ListResult, error) {
	s.lastCursor = cursor
	var out []models.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return &internalorders.ListResult{Orders: out}, nil
}

func (s *stubOrdersService) List(ctx context.Context, query internalorders.ListQuery) (*internalorders.ListResult, error) {
	s.lastQuery = query
	return &internalorders.ListResult{}, nil
}

func (s *stubOrdersService) Assign(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransitionTo(enums.OrderStatusAssigned) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be assigned")
	}
	o.Status = enums.OrderStatusAssigned
	return o, nil
}

func (s *stubOrdersService) Cancel(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Status = enums.OrderStatusCancelled
	return o, nil
}

func (s *stubOrdersService) Rate(ctx context.Context, userID int64, id uuid.UUID, rating int) (*models.Order, error) {
	o, err := s.GetForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	s.rated = rating
	value := float64(rating)
	o.Rating = &value
	return o, nil
}

func (s *stubOrdersService) CountByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error) {
	return map[enums.OrderStatus]int64{enums.OrderStatusPending: 2, enums.OrderStatusDelivered: 5}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func newStub(orders ...*models.Order) *stubOrdersService {
	s := &stubOrdersService{orders: map[uuid.UUID]*models.Order{}}
	for _, o := range orders {
		s.orders[o.ID] = o
	}
	return s
}

func request(method, target, body string, userID int64, orderID string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := middleware.WithUserID(req.Context(), userID)
	if orderID != "" {
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("orderId", orderID)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	}
	return req.WithContext(ctx)
}

func TestListReturnsOwnOrders(t *testing.T) {
	mine := &models.Order{ID: uuid.New(), UserID: 42, Status: enums.OrderStatusPending}
	theirs := &models.Order{ID: uuid.New(), UserID: 7, Status: enums.OrderStatusPending}
	svc := newStub(mine, theirs)

	rec := httptest.NewRecorder()
	List(svc, testLogger()).ServeHTTP(rec, request(http.MethodGet, "/api/v1/orders?cursor=c1", "", 42, ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Data struct {
			Orders []struct {
				ID uuid.UUID `json:"id"`
			} `json:"orders"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data.Orders) != 1 || body.Data.Orders[0].ID != mine.ID {
		t.Fatalf("expected only own order, got %+v", body.Data.Orders)
	}
	if svc.lastCursor != "c1" {
		t.Fatalf("cursor not forwarded: %q", svc.lastCursor)
	}
}

func TestDetailHidesForeignOrder(t *testing.T) {
	theirs := &models.Order{ID: uuid.New(), UserID: 7}
	rec := httptest.NewRecorder()
	Detail(newStub(theirs), testLogger()).ServeHTTP(rec, request(http.MethodGet, "/", "", 42, theirs.ID.String()))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRateValidatesRange(t *testing.T) {
	order := &models.Order{ID: uuid.New(), UserID: 42, Status: enums.OrderStatusDelivered}
	svc := newStub(order)

	rec := httptest.NewRecorder()
	Rate(svc, testLogger()).ServeHTTP(rec, request(http.MethodPost, "/", `{"rating":6}`, 42, order.ID.String()))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for rating 6, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	Rate(svc, testLogger()).ServeHTTP(rec, request(http.MethodPost, "/", `{"rating":4}`, 42, order.ID.String()))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.rated != 4 || order.Rating == nil || *order.Rating != 4 {
		t.Fatalf("rating not recorded")
	}
}

func TestAdminListParsesFilters(t *testing.T) {
	svc := newStub()
	personID := uuid.New()
	target := "/api/admin/v1/orders?status=assigned&user_id=42&delivery_person_id=" + personID.String()

	rec := httptest.NewRecorder()
	AdminList(svc, testLogger()).ServeHTTP(rec, request(http.MethodGet, target, "", 1, ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	q := svc.lastQuery
	if q.Status == nil || *q.Status != enums.OrderStatusAssigned {
		t.Fatalf("status filter missing: %+v", q)
	}
	if q.UserID == nil || *q.UserID != 42 {
		t.Fatalf("user filter missing: %+v", q)
	}
	if q.DeliveryPersonID == nil || *q.DeliveryPersonID != personID {
		t.Fatalf("delivery person filter missing: %+v", q)
	}

	for _, bad := range []string{"?status=lost", "?user_id=abc", "?delivery_person_id=xyz"} {
		rec = httptest.NewRecorder()
		AdminList(svc, testLogger()).ServeHTTP(rec, request(http.MethodGet, "/api/admin/v1/orders"+bad, "", 1, ""))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", bad, rec.Code)
		}
	}
}

func TestAdminTransitions(t *testing.T) {
	order := &models.Order{ID: uuid.New(), UserID: 42, Status: enums.OrderStatusPending}
	svc := newStub(order)

	rec := httptest.NewRecorder()
	AdminAssign(svc, testLogger()).ServeHTTP(rec, request(http.MethodPost, "/", "", 1, order.ID.String()))
	if rec.Code != http.StatusOK || order.Status != enums.OrderStatusAssigned {
		t.Fatalf("expected assigned, got %d status=%s", rec.Code, order.Status)
	}

	rec = httptest.NewRecorder()
	AdminAssign(svc, testLogger()).ServeHTTP(rec, request(http.MethodPost, "/", "", 1, order.ID.String()))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 on second assign, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	AdminCancel(svc, testLogger()).ServeHTTP(rec, request(http.MethodPost, "/", "", 1, order.ID.String()))
	if rec.Code != http.StatusOK || order.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %d status=%s", rec.Code, order.Status)
	}

	rec = httptest.NewRecorder()
	AdminDetail(svc, testLogger()).ServeHTTP(rec, request(http.MethodGet, "/", "", 1, uuid.NewString()))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown order, got %d", rec.Code)
	}
}

func TestAdminStatsZeroFills(t *testing.T) {
	rec := httptest.NewRecorder()
	AdminStats(newStub(), testLogger()).ServeHTTP(rec, request(http.MethodGet, "/", "", 1, ""))
	var body struct {
		Data struct {
			ByStatus map[string]int64 `json:"by_status"`
			Total    int64            `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data.ByStatus) != len(enums.OrderStatuses()) {
		t.Fatalf("expected every status, got %+v", body.Data.ByStatus)
	}
	if body.Data.ByStatus["cancelled"] != 0 || body.Data.Total != 7 {
		t.Fatalf("unexpected stats %+v", body.Data)
	}
}

func TestHandlersWithoutService(t *testing.T) {
	rec := httptest.NewRecorder()
	AdminAssign(nil, testLogger()).ServeHTTP(rec, request(http.MethodPost, "/", "", 1, uuid.NewString()))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
