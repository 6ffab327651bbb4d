package delivery

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/storefront-bot/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-bot/pkg/errors"
	"github.com/angelmondragon/storefront-bot/pkg/metrics"
)

func closeTo(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestScoreScenario(t *testing.T) {
	veteran := models.DeliveryPerson{Rating: 4.0, CompletedDeliveries: 50}
	rookie := models.DeliveryPerson{Rating: 4.5, CompletedDeliveries: 10}

	if got := Score(veteran); !closeTo(got, 2.95) {
		t.Fatalf("veteran: expected 2.95 got %v", got)
	}
	if got := Score(rookie); !closeTo(got, 3.18) {
		t.Fatalf("rookie: expected 3.18 got %v", got)
	}
}

func TestRankIsStableOnTies(t *testing.T) {
	first := models.DeliveryPerson{ID: uuid.New(), Rating: 4.0}
	second := models.DeliveryPerson{ID: uuid.New(), Rating: 4.0}
	better := models.DeliveryPerson{ID: uuid.New(), Rating: 4.0, CompletedDeliveries: 1}

	ranked := Rank([]models.DeliveryPerson{first, second, better})
	got := make([]uuid.UUID, 0, len(ranked))
	for _, c := range ranked {
		got = append(got, c.Person.ID)
	}
	if want := []uuid.UUID{better.ID, first.ID, second.ID}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v got %v", want, got)
	}
}

func TestBestCandidatePicksHighestScore(t *testing.T) {
	veteran := models.DeliveryPerson{ID: uuid.New(), Rating: 4.0, CompletedDeliveries: 50, TotalDeliveries: 50}
	rookie := models.DeliveryPerson{ID: uuid.New(), Rating: 4.5, CompletedDeliveries: 10, TotalDeliveries: 10}
	svc, err := NewService(ServiceParams{Repo: &stubRepo{online: []models.DeliveryPerson{veteran, rookie}}, Logger: testLogger()})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	best, err := svc.BestCandidate(context.Background())
	if err != nil {
		t.Fatalf("best candidate: %v", err)
	}
	if best.Person.ID != rookie.ID || !closeTo(best.Score, 3.18) {
		t.Fatalf("expected rookie with 3.18 got %s with %v", best.Person.ID, best.Score)
	}
}

func TestBestCandidateFromStore(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if _, err := svc.Create(ctx, CreateInput{ExternalID: 1, Name: "offline"}); err != nil {
		t.Fatalf("create offline: %v", err)
	}
	online, err := svc.Create(ctx, CreateInput{ExternalID: 2, Name: "online"})
	if err != nil {
		t.Fatalf("create online: %v", err)
	}
	if _, err := svc.SetOnlineStatus(ctx, online.ID, true); err != nil {
		t.Fatalf("set online: %v", err)
	}

	best, err := svc.BestCandidate(ctx)
	if err != nil {
		t.Fatalf("best candidate: %v", err)
	}
	if best.Person.ID != online.ID {
		t.Fatalf("expected the online courier got %s", best.Person.ID)
	}
}

func TestAssignBestWithoutOnlinePersons(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc, err := NewService(ServiceParams{
		Repo:    &stubRepo{},
		Logger:  testLogger(),
		Metrics: metrics.NewDeliveryMetrics(reg),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	called := false
	_, err = svc.AssignBest(context.Background(), func(context.Context, *models.DeliveryPerson) error {
		called = true
		return nil
	})
	if !pkgerrors.Is(err, pkgerrors.CodeNoCandidate) {
		t.Fatalf("expected no candidate got %v", err)
	}
	if called {
		t.Fatalf("callback must not run without a candidate")
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var outcomes []string
	for _, mf := range mfs {
		if mf.GetName() != "delivery_assignments_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			outcomes = append(outcomes, m.GetLabel()[0].GetValue())
		}
	}
	if want := []string{metrics.AssignmentOutcomeNoCandidate}; !reflect.DeepEqual(outcomes, want) {
		t.Fatalf("expected outcomes %v got %v", want, outcomes)
	}
}

func TestAssignBestInvokesCallbackAndTouchesPerson(t *testing.T) {
	person := models.DeliveryPerson{ID: uuid.New(), Rating: 5, IsActive: true, IsOnline: true}
	repo := &stubRepo{online: []models.DeliveryPerson{person}}
	svc, err := NewService(ServiceParams{Repo: repo, Logger: testLogger()})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	var got uuid.UUID
	best, err := svc.AssignBest(context.Background(), func(_ context.Context, p *models.DeliveryPerson) error {
		got = p.ID
		return nil
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if got != person.ID || best.Person.ID != person.ID {
		t.Fatalf("expected %s to be assigned got callback=%s best=%s", person.ID, got, best.Person.ID)
	}
	if len(repo.saved) != 1 || repo.saved[0].LastActivity.IsZero() {
		t.Fatalf("expected one save touching last activity got %+v", repo.saved)
	}
}

func TestAssignBestPropagatesCallbackError(t *testing.T) {
	person := models.DeliveryPerson{ID: uuid.New(), Rating: 5}
	repo := &stubRepo{online: []models.DeliveryPerson{person}}
	svc, err := NewService(ServiceParams{Repo: repo, Logger: testLogger()})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	boom := errors.New("order vanished")
	_, err = svc.AssignBest(context.Background(), func(context.Context, *models.DeliveryPerson) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error got %v", err)
	}
	if len(repo.saved) != 0 {
		t.Fatalf("person must not be touched when the callback fails")
	}
}
