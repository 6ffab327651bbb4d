package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-bot/pkg/db"
	"github.com/angelmondragon/storefront-bot/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-bot/pkg/errors"
	"github.com/angelmondragon/storefront-bot/pkg/logger"
	"github.com/angelmondragon/storefront-bot/pkg/types"
)

type settingsRepository interface {
	Ensure(ctx context.Context, defaults models.DeliverySettings) error
	Find(ctx context.Context) (*models.DeliverySettings, error)
	Save(ctx context.Context, s *models.DeliverySettings) error
}

// Service exposes the delivery settings singleton and the pricing rules
// evaluated against it.
type Service interface {
	Get(ctx context.Context) (*models.DeliverySettings, error)
	Update(ctx context.Context, input UpdateInput) (*models.DeliverySettings, error)
	UpdateZones(ctx context.Context, zones types.DeliveryZones, updatedBy int64) (*models.DeliverySettings, error)
	Quote(ctx context.Context, orderAmount int64, zone string) (*Quote, error)
}

// UpdateInput carries a partial settings patch; nil fields are left as is.
type UpdateInput struct {
	IsDeliveryEnabled           *bool
	BaseDeliveryPrice           *int64
	FreeDeliveryThreshold       *int64
	MaxDeliveryDistance         *float64
	DeliveryTimeEstimate        *int
	WorkingHours                *types.WorkingHours
	Zones                       *types.DeliveryZones
	AutoAssignDelivery          *bool
	RequireDeliveryConfirmation *bool
	UpdatedBy                   int64
}

// Quote is the delivery price and ETA for a prospective order.
type Quote struct {
	OrderAmount      int64  `json:"order_amount"`
	Zone             string `json:"zone,omitempty"`
	DeliveryPrice    int64  `json:"delivery_price"`
	Total            int64  `json:"total"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	FreeDelivery     bool   `json:"free_delivery"`
	DeliveryEnabled  bool   `json:"delivery_enabled"`
	WithinHours      bool   `json:"within_working_hours"`
}

type ServiceParams struct {
	Repo     settingsRepository
	Logger   *logger.Logger
	Location *time.Location
}

type service struct {
	repo     settingsRepository
	logg     *logger.Logger
	location *time.Location
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		repo:     params.Repo,
		logg:     params.Logger,
		location: loc,
		now:      time.Now,
	}, nil
}

func (s *service) Get(ctx context.Context) (*models.DeliverySettings, error) {
	current, err := s.repo.Find(ctx)
	if err == nil {
		return current, nil
	}
	if !db.IsNotFound(err) {
		return nil, pkgerrors.Store(err, "load delivery settings")
	}

	if err := s.repo.Ensure(ctx, models.DefaultDeliverySettings()); err != nil {
		return nil, pkgerrors.Store(err, "initialise delivery settings")
	}
	s.logg.Info(ctx, "delivery settings initialised with defaults")

	current, err = s.repo.Find(ctx)
	if err != nil {
		return nil, pkgerrors.Store(err, "load delivery settings")
	}
	return current, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.DeliverySettings, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	input.apply(current)
	if input.UpdatedBy != 0 {
		updatedBy := input.UpdatedBy
		current.UpdatedBy = &updatedBy
	}

	if err := s.repo.Save(ctx, current); err != nil {
		return nil, pkgerrors.Store(err, "save delivery settings")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"updated_by": input.UpdatedBy})
	s.logg.Info(logCtx, "delivery settings updated")
	return current, nil
}

func (s *service) UpdateZones(ctx context.Context, zones types.DeliveryZones, updatedBy int64) (*models.DeliverySettings, error) {
	if zones == nil {
		zones = types.DeliveryZones{}
	}
	return s.Update(ctx, UpdateInput{Zones: &zones, UpdatedBy: updatedBy})
}

func (s *service) Quote(ctx context.Context, orderAmount int64, zone string) (*Quote, error) {
	if orderAmount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order amount must be non-negative")
	}
	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	within, err := IsWithinWorkingHours(current.WorkingHours, s.now().In(s.location))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stored working hours are malformed")
	}

	price := CalculateDeliveryPrice(current, orderAmount, zone)
	return &Quote{
		OrderAmount:      orderAmount,
		Zone:             zone,
		DeliveryPrice:    price,
		Total:            orderAmount + price,
		EstimatedMinutes: EstimatedTime(current, zone),
		FreeDelivery:     orderAmount >= current.FreeDeliveryThreshold,
		DeliveryEnabled:  current.IsDeliveryEnabled,
		WithinHours:      within,
	}, nil
}

func (in UpdateInput) validate() error {
	if in.BaseDeliveryPrice != nil && *in.BaseDeliveryPrice < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "base delivery price must be non-negative")
	}
	if in.FreeDeliveryThreshold != nil && *in.FreeDeliveryThreshold < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "free delivery threshold must be non-negative")
	}
	if in.MaxDeliveryDistance != nil && *in.MaxDeliveryDistance < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "max delivery distance must be non-negative")
	}
	if in.DeliveryTimeEstimate != nil && *in.DeliveryTimeEstimate < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery time estimate must be non-negative")
	}
	if in.WorkingHours != nil {
		if err := in.WorkingHours.Validate(); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid working hours")
		}
	}
	if in.Zones != nil {
		if err := in.Zones.Validate(); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery zones").
				WithDetails(map[string]any{"reason": err.Error()})
		}
	}
	return nil
}

func (in UpdateInput) apply(s *models.DeliverySettings) {
	if in.IsDeliveryEnabled != nil {
		s.IsDeliveryEnabled = *in.IsDeliveryEnabled
	}
	if in.BaseDeliveryPrice != nil {
		s.BaseDeliveryPrice = *in.BaseDeliveryPrice
	}
	if in.FreeDeliveryThreshold != nil {
		s.FreeDeliveryThreshold = *in.FreeDeliveryThreshold
	}
	if in.MaxDeliveryDistance != nil {
		s.MaxDeliveryDistance = *in.MaxDeliveryDistance
	}
	if in.DeliveryTimeEstimate != nil {
		s.DeliveryTimeEstimate = *in.DeliveryTimeEstimate
	}
	if in.WorkingHours != nil {
		s.WorkingHours = *in.WorkingHours
	}
	if in.Zones != nil {
		s.Zones = in.Zones.Normalized()
	}
	if in.AutoAssignDelivery != nil {
		s.AutoAssignDelivery = *in.AutoAssignDelivery
	}
	if in.RequireDeliveryConfirmation != nil {
		s.RequireDeliveryConfirmation = *in.RequireDeliveryConfirmation
	}
}
