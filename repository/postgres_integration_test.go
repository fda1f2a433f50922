//go:build integration

package repository

import (
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-ordering/config"
	"github.com/yeremiapane/table-ordering/database"
	"github.com/yeremiapane/table-ordering/domain"
)

func newPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	require.NoError(t, err)
	pool.MaxWait = 2 * time.Minute

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=restaurant",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=restaurant",
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Purge(resource) })
	require.NoError(t, resource.Expire(300))

	dsn := fmt.Sprintf("postgres://restaurant:secret@%s/restaurant?sslmode=disable", resource.GetHostPort("5432/tcp"))
	logger, _ := test.NewNullLogger()

	var db *gorm.DB
	err = pool.Retry(func() error {
		var err error
		db, err = database.Open(config.DBConfig{
			Driver:       "postgres",
			URL:          dsn,
			MaxOpenConns: 20,
			MaxIdleConns: 5,
			ConnTimeout:  2 * time.Second,
		}, logger)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Ping()
	})
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Seed(db, logger))
	return db
}

func TestPostgresConcurrentOrderNumbering(t *testing.T) {
	db := newPostgres(t)
	now := time.Now().UTC()
	session := newSession(t, db, 1, now)
	orders := NewOrderRepository(db)

	const n = 40
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, err := orders.Create(ctx, NewOrder{
				SessionID:   &session.ID,
				TableNumber: 1,
				TotalPrice:  decimal.RequireFromString("2.99"),
				Items:       []NewOrderItem{{MenuItemID: 14, Quantity: 1, UnitPrice: decimal.RequireFromString("2.99")}},
				CreatedAt:   time.Now().UTC(),
			})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			numbers = append(numbers, o.OrderNumber)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Ints(numbers)
	require.Len(t, numbers, n)
	for i, num := range numbers {
		assert.Equal(t, i+1, num)
	}

	total, err := orders.UnpaidTotal(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "119.60", total.StringFixed(2))
}

func TestPostgresErrorTranslation(t *testing.T) {
	db := newPostgres(t)
	users := NewUserRepository(db)
	name := "waiter1"

	_, err := users.Insert(ctx, domain.User{Username: &name, Role: domain.RoleWaiter}, "hash")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = NewOrderRepository(db).Create(ctx, NewOrder{TableNumber: 77, CreatedAt: time.Now().UTC()})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
