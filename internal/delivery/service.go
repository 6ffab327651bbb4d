package delivery

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-bot/pkg/db"
	"github.com/angelmondragon/storefront-bot/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-bot/pkg/errors"
	"github.com/angelmondragon/storefront-bot/pkg/logger"
	"github.com/angelmondragon/storefront-bot/pkg/metrics"
	"github.com/angelmondragon/storefront-bot/pkg/types"
)

type personRepository interface {
	Create(ctx context.Context, person *models.DeliveryPerson) error
	Save(ctx context.Context, person *models.DeliveryPerson) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryPerson, error)
	FindByExternalID(ctx context.Context, externalID int64) (*models.DeliveryPerson, error)
	ExistsByExternalID(ctx context.Context, externalID int64) (bool, error)
	List(ctx context.Context) ([]models.DeliveryPerson, error)
	ListActive(ctx context.Context) ([]models.DeliveryPerson, error)
	ListOnline(ctx context.Context) ([]models.DeliveryPerson, error)
}

// Service manages the delivery-person directory and courier selection.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.DeliveryPerson, error)
	List(ctx context.Context) ([]models.DeliveryPerson, error)
	ListActive(ctx context.Context) ([]models.DeliveryPerson, error)
	ListOnline(ctx context.Context) ([]models.DeliveryPerson, error)
	Get(ctx context.Context, id uuid.UUID) (*models.DeliveryPerson, error)
	GetByExternalID(ctx context.Context, externalID int64) (*models.DeliveryPerson, error)
	SetOnlineStatus(ctx context.Context, id uuid.UUID, online bool) (*models.DeliveryPerson, error)
	UpdateLocation(ctx context.Context, id uuid.UUID, location types.Location) (*models.DeliveryPerson, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	RecordDelivery(ctx context.Context, id uuid.UUID, minutes int) (*models.DeliveryPerson, error)
	UpdateRating(ctx context.Context, id uuid.UUID, rating float64) (*models.DeliveryPerson, error)
	Stats(ctx context.Context, id uuid.UUID) (*Stats, error)
	BestCandidate(ctx context.Context) (*Candidate, error)
	AssignBest(ctx context.Context, assign AssignFunc) (*Candidate, error)
}

// CreateInput registers a new delivery person.
type CreateInput struct {
	ExternalID    int64
	Name          string
	Phone         string
	Username      string
	WorkingHours  *types.WorkingHours
	DeliveryZones []string
	AddedBy       int64
}

// Stats summarises a person's delivery record.
type Stats struct {
	TotalDeliveries     int       `json:"total_deliveries"`
	CompletedDeliveries int       `json:"completed_deliveries"`
	CompletionRate      float64   `json:"completion_rate"`
	AverageDeliveryTime int       `json:"average_delivery_time"`
	Rating              float64   `json:"rating"`
	IsOnline            bool      `json:"is_online"`
	LastActivity        time.Time `json:"last_activity"`
}

type ServiceParams struct {
	Repo    personRepository
	Logger  *logger.Logger
	Metrics *metrics.DeliveryMetrics
}

type service struct {
	repo    personRepository
	logg    *logger.Logger
	metrics *metrics.DeliveryMetrics
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("delivery person repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    params.Repo,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.DeliveryPerson, error) {
	name := strings.TrimSpace(input.Name)
	if input.ExternalID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "external id is required")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	hours := types.DefaultWorkingHours()
	if input.WorkingHours != nil {
		if err := input.WorkingHours.Validate(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid working hours")
		}
		hours = *input.WorkingHours
	}

	identity := strconv.FormatInt(input.ExternalID, 10)
	exists, err := s.repo.ExistsByExternalID(ctx, input.ExternalID)
	if err != nil {
		return nil, pkgerrors.Store(err, "check delivery person")
	}
	if exists {
		return nil, pkgerrors.Duplicate("delivery person", identity)
	}

	now := s.now().UTC()
	person := &models.DeliveryPerson{
		ExternalID:    input.ExternalID,
		Name:          name,
		Phone:         strings.TrimSpace(input.Phone),
		Username:      strings.TrimPrefix(strings.TrimSpace(input.Username), "@"),
		IsActive:      true,
		Rating:        models.DefaultDeliveryRating,
		WorkingHours:  hours,
		DeliveryZones: input.DeliveryZones,
		AddedBy:       input.AddedBy,
		AddedAt:       now,
		LastActivity:  now,
	}
	if err := s.repo.Create(ctx, person); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Duplicate("delivery person", identity)
		}
		return nil, pkgerrors.Store(err, "create delivery person")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"delivery_person_id": person.ID.String(),
		"external_id":        person.ExternalID,
	})
	s.logg.Info(logCtx, "delivery person registered")
	return person, nil
}

func (s *service) List(ctx context.Context) ([]models.DeliveryPerson, error) {
	persons, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Store(err, "list delivery persons")
	}
	return persons, nil
}

func (s *service) ListActive(ctx context.Context) ([]models.DeliveryPerson, error) {
	persons, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Store(err, "list active delivery persons")
	}
	return persons, nil
}

func (s *service) ListOnline(ctx context.Context) ([]models.DeliveryPerson, error) {
	persons, err := s.repo.ListOnline(ctx)
	if err != nil {
		return nil, pkgerrors.Store(err, "list online delivery persons")
	}
	return persons, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.DeliveryPerson, error) {
	person, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return person, nil
}

func (s *service) GetByExternalID(ctx context.Context, externalID int64) (*models.DeliveryPerson, error) {
	person, err := s.repo.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return person, nil
}

func (s *service) SetOnlineStatus(ctx context.Context, id uuid.UUID, online bool) (*models.DeliveryPerson, error) {
	return s.mutate(ctx, id, "set online status", func(p *models.DeliveryPerson) error {
		if !p.IsActive && online {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "delivery person is deactivated")
		}
		p.IsOnline = online
		p.LastActivity = s.now().UTC()
		return nil
	})
}

func (s *service) UpdateLocation(ctx context.Context, id uuid.UUID, location types.Location) (*models.DeliveryPerson, error) {
	if err := location.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location")
	}
	return s.mutate(ctx, id, "update location", func(p *models.DeliveryPerson) error {
		loc := location
		p.CurrentLocation = &loc
		p.LastActivity = s.now().UTC()
		return nil
	})
}

func (s *service) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := s.mutate(ctx, id, "deactivate delivery person", func(p *models.DeliveryPerson) error {
		p.IsActive = false
		p.IsOnline = false
		return nil
	})
	return err
}

// RecordDelivery counts one completed delivery and folds minutes into the
// rounded running mean.
func (s *service) RecordDelivery(ctx context.Context, id uuid.UUID, minutes int) (*models.DeliveryPerson, error) {
	if minutes < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery minutes must be non-negative")
	}
	person, err := s.mutate(ctx, id, "record delivery", func(p *models.DeliveryPerson) error {
		p.AverageDeliveryTime = RunningMean(p.AverageDeliveryTime, p.TotalDeliveries, minutes)
		p.TotalDeliveries++
		p.CompletedDeliveries++
		p.LastActivity = s.now().UTC()
		return p.Validate()
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveDelivery(minutes)
	return person, nil
}

// UpdateRating blends the current rating with the new one.
func (s *service) UpdateRating(ctx context.Context, id uuid.UUID, rating float64) (*models.DeliveryPerson, error) {
	if rating < 0 || rating > models.MaxDeliveryRating {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 0 and 5")
	}
	return s.mutate(ctx, id, "update rating", func(p *models.DeliveryPerson) error {
		p.Rating = BlendRating(p.Rating, rating)
		return nil
	})
}

func (s *service) Stats(ctx context.Context, id uuid.UUID) (*Stats, error) {
	person, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Stats{
		TotalDeliveries:     person.TotalDeliveries,
		CompletedDeliveries: person.CompletedDeliveries,
		CompletionRate:      person.CompletionRate(),
		AverageDeliveryTime: person.AverageDeliveryTime,
		Rating:              person.Rating,
		IsOnline:            person.IsOnline,
		LastActivity:        person.LastActivity,
	}, nil
}

func (s *service) mutate(ctx context.Context, id uuid.UUID, op string, fn func(p *models.DeliveryPerson) error) (*models.DeliveryPerson, error) {
	person, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(person); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, op)
	}
	if err := s.repo.Save(ctx, person); err != nil {
		return nil, pkgerrors.Store(err, op)
	}
	return person, nil
}

// RunningMean returns round((avg*count + sample) / (count+1)).
func RunningMean(avg, count, sample int) int {
	sum := decimal.NewFromInt(int64(avg)).
		Mul(decimal.NewFromInt(int64(count))).
		Add(decimal.NewFromInt(int64(sample)))
	return int(sum.Div(decimal.NewFromInt(int64(count + 1))).Round(0).IntPart())
}

// BlendRating averages only the current and the new rating, rounded to one
// decimal. Older ratings are not weighted in.
func BlendRating(current, next float64) float64 {
	blended := decimal.NewFromFloat(current).
		Add(decimal.NewFromFloat(next)).
		Div(decimal.NewFromInt(2)).
		Round(1)
	return blended.InexactFloat64()
}

func mapLookupError(err error) error {
	if db.IsNotFound(err) {
		return pkgerrors.NotFound("delivery person")
	}
	return pkgerrors.Store(err, "load delivery person")
}
