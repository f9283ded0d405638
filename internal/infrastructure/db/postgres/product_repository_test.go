package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/product-api/internal/core/domain"
	"github.com/99minutos/product-api/internal/core/ports"
)

const testProductID = "6f1c2a0e-8a4b-4d0a-9d7e-0b1f2c3d4e5f"

var productRowColumns = []string{"id", "name", "price", "created_at", "updated_at"}

func TestBuildListQuery(t *testing.T) {
	minP, maxP := 5.0, 10.0

	query, args := buildListQuery(ports.ListProductsFilter{})
	assert.Equal(t, queryListProducts+" ORDER BY name ASC", query)
	assert.Empty(t, args)

	query, args = buildListQuery(ports.ListProductsFilter{Name: "50%_off", MinPrice: &minP, MaxPrice: &maxP})
	assert.Equal(t, queryListProducts+" WHERE name ILIKE $1 AND price >= $2 AND price <= $3 ORDER BY name ASC", query)
	assert.Equal(t, []any{`%50\%\_off%`, 5.0, 10.0}, args)

	query, args = buildListQuery(ports.ListProductsFilter{MaxPrice: &maxP})
	assert.Equal(t, queryListProducts+" WHERE price <= $1 ORDER BY name ASC", query)
	assert.Equal(t, []any{10.0}, args)
}

func TestProductRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(queryListProducts + " WHERE name ILIKE $1 ORDER BY name ASC")).
		WithArgs("%mouse%").
		WillReturnRows(sqlmock.NewRows(productRowColumns).
			AddRow("a", "Gaming Mouse", 80.0, now, now).
			AddRow("b", "mouse pad", 5.0, now, now))

	got, err := NewProductRepository(db).List(context.Background(), ports.ListProductsFilter{Name: "mouse"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Gaming Mouse", got[0].Name)
	assert.Equal(t, 5.0, got[1].Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_CreateFind(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	p := &domain.Product{ID: testProductID, Name: "Lamp", Price: 20, CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec(regexp.QuoteMeta(queryInsertProduct)).
		WithArgs(p.ID, p.Name, p.Price, p.CreatedAt, p.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(queryFindProduct)).
		WithArgs(testProductID).
		WillReturnRows(sqlmock.NewRows(productRowColumns).AddRow(p.ID, p.Name, p.Price, now, now))
	mock.ExpectQuery(regexp.QuoteMeta(queryFindProduct)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(productRowColumns))

	repo := NewProductRepository(db)
	require.NoError(t, repo.Create(context.Background(), p))

	got, err := repo.FindByID(context.Background(), testProductID)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", got.Name)

	_, err = repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_UpdateDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	p := &domain.Product{ID: testProductID, Name: "Lamp", Price: 25, UpdatedAt: now}

	mock.ExpectExec(regexp.QuoteMeta(queryUpdateProduct)).
		WithArgs(p.ID, p.Name, p.Price, p.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(queryUpdateProduct)).
		WithArgs(p.ID, p.Name, p.Price, p.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(queryDeleteProduct)).
		WithArgs(testProductID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(queryDeleteProduct)).
		WithArgs(testProductID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewProductRepository(db)
	assert.NoError(t, repo.Update(context.Background(), p))
	assert.ErrorIs(t, repo.Update(context.Background(), p), domain.ErrProductNotFound)
	assert.NoError(t, repo.Delete(context.Background(), testProductID))
	assert.ErrorIs(t, repo.Delete(context.Background(), testProductID), domain.ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepository_InsertEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta(queryInsertAuthEvent)).
		WithArgs("login_succeeded", "alice", "ADMIN", at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = NewAuditRepository(db).InsertEvent(context.Background(), &domain.AuthEvent{
		Type:       domain.EventLoginSucceeded,
		Username:   "alice",
		Role:       domain.RoleAdmin,
		OccurredAt: at,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
