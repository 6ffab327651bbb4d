package controllers

import (
	"context"
	"net/http"
	"testing"

	deliverysvc "github.com/angelmondragon/storefront-bot/internal/delivery"
	"github.com/angelmondragon/storefront-bot/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-bot/pkg/errors"
	"github.com/angelmondragon/storefront-bot/pkg/types"
	"github.com/google/uuid"
)

type stubDeliveryService struct {
	deliverysvc.Service
	person   *models.DeliveryPerson
	listed   string
	created  deliverysvc.CreateInput
	location types.Location
	deleted  bool
	noneOn   bool
}

func (s *stubDeliveryService) List(ctx context.Context) ([]models.DeliveryPerson, error) {
	s.listed = "all"
	return []models.DeliveryPerson{*s.person}, nil
}

func (s *stubDeliveryService) ListActive(ctx context.Context) ([]models.DeliveryPerson, error) {
	s.listed = "active"
	return []models.DeliveryPerson{*s.person}, nil
}

func (s *stubDeliveryService) ListOnline(ctx context.Context) ([]models.DeliveryPerson, error) {
	s.listed = "online"
	return nil, nil
}

func (s *stubDeliveryService) Create(ctx context.Context, input deliverysvc.CreateInput) (*models.DeliveryPerson, error) {
	s.created = input
	return &models.DeliveryPerson{ID: uuid.New(), ExternalID: input.ExternalID, Name: input.Name, IsActive: true, Rating: models.DefaultDeliveryRating}, nil
}

func (s *stubDeliveryService) Get(ctx context.Context, id uuid.UUID) (*models.DeliveryPerson, error) {
	if id != s.person.ID {
		return nil, pkgerrors.NotFound("delivery person")
	}
	return s.person, nil
}

func (s *stubDeliveryService) Stats(ctx context.Context, id uuid.UUID) (*deliverysvc.Stats, error) {
	return &deliverysvc.Stats{TotalDeliveries: 4, CompletedDeliveries: 3, CompletionRate: 75, Rating: s.person.Rating}, nil
}

func (s *stubDeliveryService) SetOnlineStatus(ctx context.Context, id uuid.UUID, online bool) (*models.DeliveryPerson, error) {
	s.person.IsOnline = online
	return s.person, nil
}

func (s *stubDeliveryService) UpdateLocation(ctx context.Context, id uuid.UUID, location types.Location) (*models.DeliveryPerson, error) {
	s.location = location
	s.person.CurrentLocation = &location
	return s.person, nil
}

func (s *stubDeliveryService) SoftDelete(ctx context.Context, id uuid.UUID) error {
	s.deleted = true
	return nil
}

func (s *stubDeliveryService) BestCandidate(ctx context.Context) (*deliverysvc.Candidate, error) {
	if s.noneOn {
		return nil, pkgerrors.NoCandidate()
	}
	return &deliverysvc.Candidate{Person: *s.person, Score: 0.9}, nil
}

func newStubDelivery() *stubDeliveryService {
	return &stubDeliveryService{person: &models.DeliveryPerson{ID: uuid.New(), ExternalID: 77, Name: "Rustam", IsActive: true, Rating: 4.5}}
}

func TestAdminDeliveryListFilters(t *testing.T) {
	cases := map[string]string{"": "all", "all": "all", "active": "active", "ONLINE": "online"}
	for filter, want := range cases {
		svc := newStubDelivery()
		rec := serve(AdminDeliveryList(svc, testLogger()), newRequest(http.MethodGet, "/?filter="+filter, "", 1, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("filter %q: expected 200, got %d", filter, rec.Code)
		}
		if svc.listed != want {
			t.Fatalf("filter %q: expected %s listing, got %s", filter, want, svc.listed)
		}
	}

	rec := serve(AdminDeliveryList(newStubDelivery(), testLogger()), newRequest(http.MethodGet, "/?filter=sleeping", "", 1, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown filter, got %d", rec.Code)
	}
}

func TestAdminDeliveryCreateRecordsAdmin(t *testing.T) {
	svc := newStubDelivery()
	body := `{"external_id":555,"name":"Aziz","delivery_zones":["center"]}`
	rec := serve(AdminDeliveryCreate(svc, testLogger()), newRequest(http.MethodPost, "/", body, 1, nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.created.AddedBy != 1 || svc.created.ExternalID != 555 || len(svc.created.DeliveryZones) != 1 {
		t.Fatalf("unexpected create input %+v", svc.created)
	}

	rec = serve(AdminDeliveryCreate(svc, testLogger()), newRequest(http.MethodPost, "/", `{"name":"NoID"}`, 1, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without external_id, got %d", rec.Code)
	}
}

func TestAdminDeliveryDetailIncludesStats(t *testing.T) {
	svc := newStubDelivery()
	rec := serve(AdminDeliveryDetail(svc, testLogger()), newRequest(http.MethodGet, "/", "", 1, map[string]string{"personId": svc.person.ID.String()}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out struct {
		DeliveryPerson struct {
			Name string `json:"name"`
		} `json:"delivery_person"`
		Stats deliverysvc.Stats `json:"stats"`
	}
	decodeData(t, rec, &out)
	if out.DeliveryPerson.Name != "Rustam" || out.Stats.CompletionRate != 75 {
		t.Fatalf("unexpected detail %+v", out)
	}

	rec = serve(AdminDeliveryDetail(svc, testLogger()), newRequest(http.MethodGet, "/", "", 1, map[string]string{"personId": uuid.NewString()}))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown courier, got %d", rec.Code)
	}
}

func TestAdminDeliveryStatusRequiresFlag(t *testing.T) {
	svc := newStubDelivery()
	params := map[string]string{"personId": svc.person.ID.String()}

	rec := serve(AdminDeliveryStatus(svc, testLogger()), newRequest(http.MethodPost, "/", `{}`, 1, params))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without is_online, got %d", rec.Code)
	}

	rec = serve(AdminDeliveryStatus(svc, testLogger()), newRequest(http.MethodPost, "/", `{"is_online":true}`, 1, params))
	if rec.Code != http.StatusOK || !svc.person.IsOnline {
		t.Fatalf("expected courier online, got %d online=%v", rec.Code, svc.person.IsOnline)
	}
}

func TestAdminDeliveryLocationValidatesRange(t *testing.T) {
	svc := newStubDelivery()
	params := map[string]string{"personId": svc.person.ID.String()}

	rec := serve(AdminDeliveryLocation(svc, testLogger()), newRequest(http.MethodPost, "/", `{"lat":120,"lng":69}`, 1, params))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for lat out of range, got %d", rec.Code)
	}

	rec = serve(AdminDeliveryLocation(svc, testLogger()), newRequest(http.MethodPost, "/", `{"lat":41.31,"lng":69.28,"address":"Chorsu"}`, 1, params))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.location.Address != "Chorsu" || svc.location.Lat != 41.31 {
		t.Fatalf("unexpected location %+v", svc.location)
	}
}

func TestAdminDeliveryDeleteAndBest(t *testing.T) {
	svc := newStubDelivery()
	rec := serve(AdminDeliveryDelete(svc, testLogger()), newRequest(http.MethodDelete, "/", "", 1, map[string]string{"personId": svc.person.ID.String()}))
	if rec.Code != http.StatusOK || !svc.deleted {
		t.Fatalf("expected soft delete, got %d deleted=%v", rec.Code, svc.deleted)
	}

	rec = serve(AdminDeliveryBest(svc, testLogger()), newRequest(http.MethodGet, "/", "", 1, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var best struct {
		Score float64 `json:"score"`
	}
	decodeData(t, rec, &best)
	if best.Score != 0.9 {
		t.Fatalf("unexpected score %v", best.Score)
	}

	svc.noneOn = true
	rec = serve(AdminDeliveryBest(svc, testLogger()), newRequest(http.MethodGet, "/", "", 1, nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 with nobody online, got %d", rec.Code)
	}
}
