package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_CreateLine(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "user_id", "product_id", "quantity", "created_at", "updated_at"}).
			AddRow(1, 1, 7, 2, time.Now(), time.Now())

		mock.ExpectQuery("INSERT INTO carts").
			WithArgs(uint(1), uint(7), 2).
			WillReturnRows(rows)

		line, err := repo.CreateLine(context.Background(), 1, 7, 2)
		assert.NoError(t, err)
		assert.Equal(t, uint(1), line.ID)
		assert.Equal(t, 2, line.Quantity)
	})

	t.Run("Error", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO carts").
			WillReturnError(errors.New("db error"))

		_, err := repo.CreateLine(context.Background(), 1, 7, 2)
		assert.Error(t, err)
	})
}

func TestRepository_UpdateQuantity(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE carts").
			WithArgs(5, uint(1), uint(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateQuantity(context.Background(), 1, 7, 5)
		assert.NoError(t, err)
	})

	t.Run("LineMissing", func(t *testing.T) {
		mock.ExpectExec("UPDATE carts").
			WithArgs(5, uint(1), uint(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateQuantity(context.Background(), 1, 99, 5)
		assert.ErrorIs(t, err, ErrLineNotFound)
	})
}

func TestRepository_DeleteLine(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM carts").
			WithArgs(uint(1), uint(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.DeleteLine(context.Background(), 1, 7)
		assert.NoError(t, err)
	})

	t.Run("LineMissing", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM carts").
			WithArgs(uint(1), uint(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DeleteLine(context.Background(), 1, 99)
		assert.ErrorIs(t, err, ErrLineNotFound)
	})
}

func TestRepository_Clear(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectExec("DELETE FROM carts WHERE user_id").
		WithArgs(uint(1)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	err = repo.Clear(context.Background(), 1)
	assert.NoError(t, err)
}

func TestRepository_GetLineRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{
			"product_id", "name", "price", "promo_price", "promo", "stock", "quantity",
		}).AddRow(7, "Vestido", 25.0, nil, false, 10, 2)

		mock.ExpectQuery("SELECT .* FROM carts c").
			WithArgs(uint(1)).
			WillReturnRows(rows)

		result, err := repo.GetLineRows(context.Background(), 1)
		assert.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, uint(7), result[0].ProductID)
		assert.Equal(t, 2, result[0].Quantity)
	})

	t.Run("Error", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM carts c").
			WillReturnError(errors.New("db error"))

		_, err := repo.GetLineRows(context.Background(), 1)
		assert.Error(t, err)
	})
}
