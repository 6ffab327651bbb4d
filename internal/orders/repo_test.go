package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-bot/pkg/db/models"
	"github.com/angelmondragon/storefront-bot/pkg/enums"
	"github.com/angelmondragon/storefront-bot/pkg/pagination"
	"github.com/angelmondragon/storefront-bot/pkg/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Order{}))
	return conn
}

func seedOrder(t *testing.T, repo *Repository, userID int64, status enums.OrderStatus, createdAt time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		UserID:    userID,
		Items:     []types.OrderLine{{ProductID: uuid.New(), Name: "Plov", Price: 30000, Quantity: 1}},
		Subtotal:  30000,
		Total:     30000,
		Address:   "Chilonzor 5",
		Phone:     "+998901112233",
		Status:    status,
		CreatedAt: createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), order))
	return order
}

func TestRepositoryCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))
	order := seedOrder(t, repo, 7, enums.OrderStatusPending, time.Now().UTC())

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), found.UserID)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Plov", found.Items[0].Name)
	assert.Nil(t, found.DeliveryPersonID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListFiltersAndPages(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := seedOrder(t, repo, 1, enums.OrderStatusPending, base)
	second := seedOrder(t, repo, 1, enums.OrderStatusDelivered, base.Add(time.Minute))
	third := seedOrder(t, repo, 1, enums.OrderStatusPending, base.Add(2*time.Minute))
	seedOrder(t, repo, 2, enums.OrderStatusPending, base.Add(3*time.Minute))

	userID := int64(1)
	query := ListQuery{UserID: &userID}
	query.Pagination.Limit = 2
	page, err := repo.List(ctx, query)
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	assert.Equal(t, third.ID, page.Orders[0].ID)
	assert.Equal(t, second.ID, page.Orders[1].ID)
	require.NotEmpty(t, page.NextCursor)

	query.Pagination.Cursor = page.NextCursor
	next, err := repo.List(ctx, query)
	require.NoError(t, err)
	require.Len(t, next.Orders, 1)
	assert.Equal(t, first.ID, next.Orders[0].ID)
	assert.Empty(t, next.NextCursor)

	status := enums.OrderStatusPending
	pending, err := repo.List(ctx, ListQuery{Status: &status})
	require.NoError(t, err)
	assert.Len(t, pending.Orders, 3)

	_, err = repo.List(ctx, ListQuery{Pagination: pagination.Params{Cursor: "%%%"}})
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestRepositoryCountByStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))
	now := time.Now().UTC()
	seedOrder(t, repo, 1, enums.OrderStatusPending, now)
	seedOrder(t, repo, 1, enums.OrderStatusPending, now)
	seedOrder(t, repo, 2, enums.OrderStatusCancelled, now)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[enums.OrderStatusPending])
	assert.Equal(t, int64(1), counts[enums.OrderStatusCancelled])
	assert.Zero(t, counts[enums.OrderStatusDelivered])
}
