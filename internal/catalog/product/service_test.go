// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package product_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/storefront/internal/catalog/product"
	"github.com/taibuivan/storefront/internal/platform/apperr"
	"github.com/taibuivan/storefront/pkg/pointer"
)

// memoryRepository records created products.
type memoryRepository struct {
	created []*product.Product
	err     error
}

func (repository *memoryRepository) Create(_ context.Context, p *product.Product) error {
	if repository.err != nil {
		return repository.err
	}
	repository.created = append(repository.created, p)
	return nil
}

func newService() (*product.Service, *memoryRepository) {
	repository := &memoryRepository{}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return product.NewService(repository, logger), repository
}

func validSKU(code string) product.SKUInput {
	return product.SKUInput{
		SKU:      code,
		Quantity: pointer.To(4),
		Price:    product.PriceInput{Buy: pointer.To(8.0), Sell: pointer.To(12.5)},
	}
}

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	appErr := apperr.As(err)
	require.NotNil(t, appErr, "expected an AppError, got %v", err)
	require.Equal(t, apperr.CodeValidation, appErr.Code)

	fields := make([]string, 0, len(appErr.Details))
	for _, detail := range appErr.Details {
		fields = append(fields, detail.Field)
	}
	return fields
}

/*
TestCreate_AppliesDefaults verifies a minimal payload is completed before it
is stored.
*/
func TestCreate_AppliesDefaults(t *testing.T) {
	service, repository := newService()

	created, err := service.Create(context.Background(), product.CreateInput{
		Item: "  Crème Brûlée Mug ",
		SKUs: []product.SKUInput{validSKU("MUG-RED")},
	})
	require.NoError(t, err)

	assert.Equal(t, "Crème Brûlée Mug", created.Item)
	assert.Equal(t, "creme-brulee-mug", created.Slug)
	assert.Equal(t, []string{}, created.Categories)
	require.Len(t, created.SKUs, 1)

	sku := created.SKUs[0]
	assert.Equal(t, created.ID, sku.ProductID)
	assert.True(t, sku.IsAvailable)
	assert.Zero(t, sku.Price.Discount)
	assert.Equal(t, 12.5, sku.Price.Sell)
	assert.Len(t, repository.created, 1)
}

/*
TestCreate_SlugFallsBackToID verifies names without Latin letters still get a
unique slug.
*/
func TestCreate_SlugFallsBackToID(t *testing.T) {
	service, _ := newService()

	created, err := service.Create(context.Background(), product.CreateInput{
		Item: "فنجان",
		SKUs: []product.SKUInput{validSKU("CUP-1")},
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, created.Slug)
}

/*
TestCreate_RejectsInvalidPayloads verifies nested rules report dotted field
paths.
*/
func TestCreate_RejectsInvalidPayloads(t *testing.T) {
	noQuantity := validSKU("A")
	noQuantity.Quantity = nil

	negativeSell := validSKU("B")
	negativeSell.Price.Sell = pointer.To(-1.0)

	tests := []struct {
		name  string
		input product.CreateInput
		field string
	}{
		{"missing_item", product.CreateInput{SKUs: []product.SKUInput{validSKU("A")}}, "item"},
		{"no_skus", product.CreateInput{Item: "Mug"}, "skus"},
		{"missing_quantity", product.CreateInput{Item: "Mug", SKUs: []product.SKUInput{noQuantity}}, "skus.0.quantity"},
		{"negative_price", product.CreateInput{Item: "Mug", SKUs: []product.SKUInput{validSKU("A"), negativeSell}}, "skus.1.price.sell"},
		{"blank_code", product.CreateInput{Item: "Mug", SKUs: []product.SKUInput{validSKU("   ")}}, "skus.0.sku"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repository := newService()

			_, err := service.Create(context.Background(), tt.input)
			assert.Contains(t, fieldsOf(t, err), tt.field)
			assert.Empty(t, repository.created)
		})
	}
}

/*
TestCreate_RejectsDuplicateSKUs verifies codes must be unique within one
payload.
*/
func TestCreate_RejectsDuplicateSKUs(t *testing.T) {
	service, repository := newService()

	_, err := service.Create(context.Background(), product.CreateInput{
		Item: "Mug",
		SKUs: []product.SKUInput{validSKU("MUG-1"), validSKU("MUG-2"), validSKU("MUG-1")},
	})
	require.Error(t, err)

	assert.Equal(t, []string{"skus"}, fieldsOf(t, err))
	assert.Equal(t, "Duplicate SKU: MUG-1", err.Error())
	assert.Empty(t, repository.created)
}

/*
TestCreate_StorageConflictPassesThrough verifies repository 400s reach the
caller unchanged.
*/
func TestCreate_StorageConflictPassesThrough(t *testing.T) {
	service, repository := newService()
	repository.err = apperr.ValidationError("SKU is already used")

	_, err := service.Create(context.Background(), product.CreateInput{
		Item: "Mug",
		SKUs: []product.SKUInput{validSKU("MUG-1")},
	})
	assert.Equal(t, "SKU is already used", err.Error())
}
