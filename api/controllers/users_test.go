package controllers

import (
	"context"
	"net/http"
	"testing"

	usersvc "github.com/angelmondragon/storefront-bot/internal/users"
	"github.com/angelmondragon/storefront-bot/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-bot/pkg/errors"
	"github.com/google/uuid"
)

type stubUserService struct {
	usersvc.Service
	user *models.User
}

func (s *stubUserService) Get(ctx context.Context, id int64) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, pkgerrors.NotFound("user")
	}
	return s.user, nil
}

func (s *stubUserService) SetPhone(ctx context.Context, id int64, phone string) (*models.User, error) {
	s.user.Phone = phone
	return s.user, nil
}

func (s *stubUserService) SetLanguage(ctx context.Context, id int64, lang string) (*models.User, error) {
	s.user.LanguageCode = lang
	return s.user, nil
}

func (s *stubUserService) Favorites(ctx context.Context, id int64) ([]uuid.UUID, error) {
	return s.user.FavoriteIDs, nil
}

func (s *stubUserService) ToggleFavorite(ctx context.Context, id int64, productID uuid.UUID) (bool, error) {
	if s.user.HasFavorite(productID) {
		s.user.FavoriteIDs = nil
		return false, nil
	}
	s.user.FavoriteIDs = append(s.user.FavoriteIDs, productID)
	return true, nil
}

func TestUserMe(t *testing.T) {
	svc := &stubUserService{user: &models.User{ID: 42, FirstName: "Dilnoza", LanguageCode: "uz"}}
	rec := serve(UserMe(svc, testLogger()), newRequest(http.MethodGet, "/", "", 42, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out struct {
		FirstName string `json:"first_name"`
	}
	decodeData(t, rec, &out)
	if out.FirstName != "Dilnoza" {
		t.Fatalf("unexpected user %+v", out)
	}

	rec = serve(UserMe(svc, testLogger()), newRequest(http.MethodGet, "/", "", 7, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unregistered user, got %d", rec.Code)
	}
}

func TestUserUpdateMe(t *testing.T) {
	svc := &stubUserService{user: &models.User{ID: 42, LanguageCode: "uz"}}
	rec := serve(UserUpdateMe(svc, testLogger()), newRequest(http.MethodPatch, "/", `{"phone":"+998 90 000","language_code":"ru"}`, 42, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.user.Phone != "+998 90 000" || svc.user.LanguageCode != "ru" {
		t.Fatalf("unexpected user %+v", svc.user)
	}

	rec = serve(UserUpdateMe(svc, testLogger()), newRequest(http.MethodPatch, "/", `{"language_code":"x"}`, 42, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short language code, got %d", rec.Code)
	}
}

func TestUserToggleFavorite(t *testing.T) {
	svc := &stubUserService{user: &models.User{ID: 42}}
	productID := uuid.New()
	params := map[string]string{"productId": productID.String()}

	rec := serve(UserToggleFavorite(svc, testLogger()), newRequest(http.MethodPost, "/", "", 42, params))
	var out struct {
		Favorite bool `json:"favorite"`
	}
	decodeData(t, rec, &out)
	if !out.Favorite {
		t.Fatalf("first toggle should add the favorite")
	}

	rec = serve(UserFavorites(svc, testLogger()), newRequest(http.MethodGet, "/", "", 42, nil))
	var list struct {
		Favorites []uuid.UUID `json:"favorites"`
	}
	decodeData(t, rec, &list)
	if len(list.Favorites) != 1 || list.Favorites[0] != productID {
		t.Fatalf("unexpected favorites %+v", list.Favorites)
	}

	rec = serve(UserToggleFavorite(svc, testLogger()), newRequest(http.MethodPost, "/", "", 42, params))
	decodeData(t, rec, &out)
	if out.Favorite {
		t.Fatalf("second toggle should remove the favorite")
	}
}
