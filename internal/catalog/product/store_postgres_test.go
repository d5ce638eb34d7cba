// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package product_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/storefront/internal/catalog/product"
	"github.com/taibuivan/storefront/internal/platform/apperr"
)

func sampleProduct() *product.Product {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &product.Product{
		ID:         "p1",
		Item:       "Mug",
		Slug:       "mug",
		Categories: []string{"kitchen"},
		CreatedAt:  now,
		UpdatedAt:  now,
		SKUs: []product.SKU{
			{ID: "s1", ProductID: "p1", Code: "MUG-1", Quantity: 3, IsAvailable: true, Price: product.Price{Buy: 1, Sell: 2}},
			{ID: "s2", ProductID: "p1", Code: "MUG-2", Quantity: 0, IsAvailable: false, Price: product.Price{Buy: 1, Sell: 2}},
		},
	}
}

/*
TestPostgresRepository_CreateCommits verifies the product and SKU rows share
one transaction.
*/
func TestPostgresRepository_CreateCommits(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	p := sampleProduct()
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO catalog.product`).
		WithArgs("p1", "Mug", "mug", []string{"kitchen"}, p.CreatedAt, p.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO catalog.sku`).
		WithArgs("s1", "p1", "MUG-1", "", 3, 1.0, 2.0, 0.0, true, []byte("null"), p.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO catalog.sku`).
		WithArgs("s2", "p1", "MUG-2", "", 0, 1.0, 2.0, 0.0, false, []byte("null"), p.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, product.NewRepository(mock).Create(context.Background(), p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresRepository_SKUConflictRollsBack verifies a stored SKU code aborts
the whole product.
*/
func TestPostgresRepository_SKUConflictRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO catalog.product`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO catalog.sku`).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: product.ConstraintSKUCode})
	mock.ExpectRollback()

	err = product.NewRepository(mock).Create(context.Background(), sampleProduct())
	require.Error(t, err)

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperr.CodeValidation, appErr.Code)
	assert.Equal(t, "SKU is already used", appErr.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}
