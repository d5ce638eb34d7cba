// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package product

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taibuivan/storefront/internal/platform/apperr"
	"github.com/taibuivan/storefront/internal/platform/dberr"
	"github.com/taibuivan/storefront/internal/platform/postgres"
)

// Unique index names on the catalog tables.
const (
	ConstraintProductItem = "product_item_key"
	ConstraintProductSlug = "product_slug_key"
	ConstraintSKUCode     = "sku_code_key"
)

// # Repository Implementation

// PostgresRepository implements [Repository] on catalog.product and catalog.sku.
type PostgresRepository struct {
	db postgres.DBTX
}

// NewRepository creates a new PostgreSQL implementation of [Repository].
func NewRepository(db postgres.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

/*
Create inserts the product row and every SKU row in one transaction.

Parameters:
  - context: context.Context
  - product: *Product

Returns:
  - error: VALIDATION_ERROR on unique violations, or transactional failures
*/
func (repository *PostgresRepository) Create(context context.Context, product *Product) error {

	// Establish Transactional Boundary
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_product_begin_failed: %w", err)
	}
	defer transaction.Rollback(context)

	// Step 1: Product row
	const productQuery = `
		INSERT INTO catalog.product (id, item, slug, categories, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = transaction.Exec(context, productQuery,
		product.ID,
		product.Item,
		product.Slug,
		product.Categories,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, "postgres_product_insert_failed")
	}

	// Step 2: SKU rows
	const skuQuery = `
		INSERT INTO catalog.sku (
			id, product_id, code, image, quantity,
			price_buy, price_sell, price_discount, is_available, attributes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	for _, sku := range product.SKUs {
		attributes, err := json.Marshal(sku.Attributes)
		if err != nil {
			return fmt.Errorf("postgres_sku_encode_attributes_failed: %w", err)
		}

		_, err = transaction.Exec(context, skuQuery,
			sku.ID,
			product.ID,
			sku.Code,
			sku.Image,
			sku.Quantity,
			sku.Price.Buy,
			sku.Price.Sell,
			sku.Price.Discount,
			sku.IsAvailable,
			attributes,
			product.CreatedAt,
		)
		if err != nil {
			return mapWriteError(err, "postgres_sku_insert_failed")
		}
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_product_commit_failed: %w", err)
	}

	return nil
}

// mapWriteError turns catalog unique violations into field-level 400s.
func mapWriteError(err error, tag string) error {
	constraint, ok := dberr.UniqueViolation(err)
	if !ok {
		return fmt.Errorf("%s: %w", tag, err)
	}

	switch constraint {
	case ConstraintProductItem, ConstraintProductSlug:
		return apperr.ValidationError("Item is already used",
			apperr.FieldError{Field: FieldItem, Message: "Item is already used"}).WithCause(err)
	case ConstraintSKUCode:
		return apperr.ValidationError("SKU is already used",
			apperr.FieldError{Field: FieldSKUs, Message: "SKU is already used"}).WithCause(err)
	default:
		return apperr.ValidationError("Product already exists").WithCause(err)
	}
}
