package delivery

import (
	"context"
	"sort"

	"github.com/angelmondragon/storefront-bot/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-bot/pkg/errors"
	"github.com/angelmondragon/storefront-bot/pkg/metrics"
)

const (
	ratingWeight     = 0.7
	experienceWeight = 0.3
	experienceScale  = 100.0
)

// Candidate is a ranked online delivery person.
type Candidate struct {
	Person models.DeliveryPerson `json:"person"`
	Score  float64               `json:"score"`
}

// AssignFunc records the chosen person against the caller's unit of work.
type AssignFunc func(ctx context.Context, person *models.DeliveryPerson) error

// Score weighs rating against experience measured in hundreds of completed
// deliveries.
func Score(p models.DeliveryPerson) float64 {
	return p.Rating*ratingWeight + (float64(p.CompletedDeliveries)/experienceScale)*experienceWeight
}

// Rank orders persons by score, highest first. Equal scores keep input order.
func Rank(persons []models.DeliveryPerson) []Candidate {
	ranked := make([]Candidate, 0, len(persons))
	for _, p := range persons {
		ranked = append(ranked, Candidate{Person: p, Score: Score(p)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func (s *service) BestCandidate(ctx context.Context) (*Candidate, error) {
	online, err := s.repo.ListOnline(ctx)
	if err != nil {
		return nil, pkgerrors.Store(err, "list online delivery persons")
	}
	if len(online) == 0 {
		return nil, pkgerrors.NoCandidate()
	}
	best := Rank(online)[0]
	return &best, nil
}

// AssignBest picks the best online person, hands it to assign and bumps the
// person's last activity once assign succeeds.
func (s *service) AssignBest(ctx context.Context, assign AssignFunc) (*Candidate, error) {
	if assign == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "assign callback required")
	}

	best, err := s.BestCandidate(ctx)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeNoCandidate) {
			s.metrics.IncAssignment(metrics.AssignmentOutcomeNoCandidate)
		} else {
			s.metrics.IncAssignment(metrics.AssignmentOutcomeError)
		}
		return nil, err
	}

	if err := assign(ctx, &best.Person); err != nil {
		s.metrics.IncAssignment(metrics.AssignmentOutcomeError)
		return nil, err
	}

	best.Person.LastActivity = s.now().UTC()
	if err := s.repo.Save(ctx, &best.Person); err != nil {
		return nil, pkgerrors.Store(err, "touch delivery person")
	}
	s.metrics.IncAssignment(metrics.AssignmentOutcomeAssigned)

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"delivery_person_id": best.Person.ID.String(),
		"score":              best.Score,
	})
	s.logg.Info(logCtx, "delivery person assigned")
	return best, nil
}
