package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-bot/pkg/db"
	"github.com/angelmondragon/storefront-bot/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-bot/pkg/errors"
	"github.com/angelmondragon/storefront-bot/pkg/logger"
)

const DefaultLanguage = "ru"

var supportedLanguages = map[string]struct{}{
	"ru": {},
	"uz": {},
	"en": {},
}

type userRepository interface {
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id int64) (*models.User, error)
	Count(ctx context.Context) (int64, error)
}

// AdminChecker decides whether a Telegram id is the shop admin.
type AdminChecker func(userID int64) bool

// Service manages Telegram users and their preference lists.
type Service interface {
	Register(ctx context.Context, profile Profile) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	SetLanguage(ctx context.Context, id int64, lang string) (*models.User, error)
	SetPhone(ctx context.Context, id int64, phone string) (*models.User, error)
	ToggleFavorite(ctx context.Context, id int64, productID uuid.UUID) (bool, error)
	Favorites(ctx context.Context, id int64) ([]uuid.UUID, error)
	AppendOrder(ctx context.Context, id int64, orderID uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type service struct {
	repo    userRepository
	isAdmin AdminChecker
	logg    *logger.Logger
}

func NewService(repo userRepository, isAdmin AdminChecker, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if isAdmin == nil {
		return nil, fmt.Errorf("admin checker required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, isAdmin: isAdmin, logg: logg}, nil
}

// Register creates the user on first contact and refreshes the profile and
// admin flag afterwards.
func (s *service) Register(ctx context.Context, profile Profile) (*models.User, error) {
	if profile.ID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "telegram user id is required")
	}
	profile.LanguageCode = normalizeLanguage(profile.LanguageCode)

	existing, err := s.repo.FindByID(ctx, profile.ID)
	if err != nil && !db.IsNotFound(err) {
		return nil, pkgerrors.Store(err, "load user")
	}
	if existing == nil {
		user := profile.ToModel(s.isAdmin(profile.ID))
		if err := s.repo.Create(ctx, user); err != nil {
			if db.IsUniqueViolation(err, "") {
				return s.Get(ctx, profile.ID)
			}
			return nil, pkgerrors.Store(err, "create user")
		}
		s.logg.Info(s.logg.WithUserID(ctx, user.ID), "user registered")
		return user, nil
	}

	existing.FirstName = profile.FirstName
	existing.LastName = profile.LastName
	existing.Username = profile.Username
	existing.IsAdmin = s.isAdmin(profile.ID)
	if err := s.repo.Save(ctx, existing); err != nil {
		return nil, pkgerrors.Store(err, "update user")
	}
	return existing, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("user")
		}
		return nil, pkgerrors.Store(err, "load user")
	}
	return user, nil
}

func (s *service) SetLanguage(ctx context.Context, id int64, lang string) (*models.User, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if _, ok := supportedLanguages[lang]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported language").
			WithDetails(map[string]any{"language": lang})
	}
	return s.mutate(ctx, id, "set language", func(u *models.User) bool {
		u.LanguageCode = lang
		return true
	})
}

func (s *service) SetPhone(ctx context.Context, id int64, phone string) (*models.User, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	return s.mutate(ctx, id, "set phone", func(u *models.User) bool {
		u.Phone = phone
		return true
	})
}

// ToggleFavorite adds productID when absent and removes it otherwise. It
// reports whether the product is now a favorite.
func (s *service) ToggleFavorite(ctx context.Context, id int64, productID uuid.UUID) (bool, error) {
	if productID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	added := false
	_, err := s.mutate(ctx, id, "toggle favorite", func(u *models.User) bool {
		if u.HasFavorite(productID) {
			kept := u.FavoriteIDs[:0]
			for _, fav := range u.FavoriteIDs {
				if fav != productID {
					kept = append(kept, fav)
				}
			}
			u.FavoriteIDs = kept
			return true
		}
		u.FavoriteIDs = append(u.FavoriteIDs, productID)
		added = true
		return true
	})
	return added, err
}

func (s *service) Favorites(ctx context.Context, id int64) ([]uuid.UUID, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return append([]uuid.UUID{}, user.FavoriteIDs...), nil
}

func (s *service) AppendOrder(ctx context.Context, id int64, orderID uuid.UUID) error {
	_, err := s.mutate(ctx, id, "append order", func(u *models.User) bool {
		for _, existing := range u.OrderIDs {
			if existing == orderID {
				return false
			}
		}
		u.OrderIDs = append(u.OrderIDs, orderID)
		return true
	})
	return err
}

func (s *service) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, pkgerrors.Store(err, "count users")
	}
	return count, nil
}

func (s *service) mutate(ctx context.Context, id int64, op string, fn func(u *models.User) bool) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !fn(user) {
		return user, nil
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, pkgerrors.Store(err, op)
	}
	return user, nil
}

func normalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	if _, ok := supportedLanguages[lang]; ok {
		return lang
	}
	return DefaultLanguage
}
