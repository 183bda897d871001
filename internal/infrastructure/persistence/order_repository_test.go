package persistence

import (
	"testing"
	"time"

	"github.com/dentalshop/backend/internal/domain/catalog"
	"github.com/dentalshop/backend/internal/domain/identity"
	"github.com/dentalshop/backend/internal/domain/order"
	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newStoredOrder(t *testing.T, db *gorm.DB, customer string, userID *uuid.UUID, createdAt time.Time) *order.Order {
	t.Helper()
	p := newStoredProduct(t, db, "Kit "+customer, catalog.CategoryConsumables, "25.50", 50)
	o, err := order.NewOrder(customer, userID, []order.LineItem{
		order.NewLineItem(p.ID, p.Name, 2, p.Price),
	})
	require.NoError(t, err)
	o.CreatedAt = createdAt
	require.NoError(t, NewGormOrderRepository(db).Create(t.Context(), o))
	return o
}

func TestGormOrderRepository_CreateAndFind(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := t.Context()

	o := newStoredOrder(t, db, "Cabinet Atlas", nil, time.Now())

	got, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cabinet Atlas", got.CustomerName)
	assert.Equal(t, order.StatusPending, got.Status)
	assert.Nil(t, got.UserID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.True(t, got.Items[0].Subtotal.Equal(decimal.RequireFromString("51")))
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("51")))

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_StatusUpdate(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := t.Context()

	o := newStoredOrder(t, db, "Clinique du Sourire", nil, time.Now())
	stale, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)

	require.NoError(t, o.ChangeStatus(order.StatusShipped))
	require.NoError(t, repo.Save(ctx, o))

	got, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, got.Status)

	require.NoError(t, stale.ChangeStatus(order.StatusCancelled))
	assert.ErrorIs(t, repo.Save(ctx, stale), shared.ErrConcurrencyConflict)
}

func TestGormOrderRepository_List(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := t.Context()

	u, err := identity.NewUser("cabinet_nord", "nord@example.ma", "motdepasse1")
	require.NoError(t, err)
	require.NoError(t, NewGormUserRepository(db).Create(ctx, u))

	now := time.Now()
	oldest := newStoredOrder(t, db, "Dr. Idrissi", nil, now.Add(-48*time.Hour))
	newStoredOrder(t, db, "Dr. Tazi", &u.ID, now.Add(-24*time.Hour))
	newest := newStoredOrder(t, db, "Centre Dentaire Nord", &u.ID, now)

	all, err := repo.FindAll(ctx, shared.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, newest.ID, all[0].ID)
	assert.Equal(t, oldest.ID, all[2].ID)

	page, err := repo.FindAll(ctx, shared.Filter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, oldest.ID, page[0].ID)

	mine, err := repo.Count(ctx, shared.Filter{Filters: map[string]any{"user_id": u.ID}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), mine)

	searched, err := repo.Count(ctx, shared.Filter{Search: "dr."})
	require.NoError(t, err)
	assert.Equal(t, int64(2), searched)

	pending, err := repo.Count(ctx, shared.Filter{Filters: map[string]any{order.FilterStatus: string(order.StatusPending)}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), pending)
}
