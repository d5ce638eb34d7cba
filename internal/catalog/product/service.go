// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package product

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/storefront/internal/platform/apperr"
	"github.com/taibuivan/storefront/pkg/pointer"
	"github.com/taibuivan/storefront/pkg/slice"
	"github.com/taibuivan/storefront/pkg/slug"
	"github.com/taibuivan/storefront/pkg/uuid"
)

// Field names used in product validation errors.
const (
	FieldItem = "item"
	FieldSKUs = "skus"
)

// # Service Layer

// Service implements product creation.
type Service struct {
	productRepository Repository
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its repository dependency.
func NewService(productRepo Repository, logger *slog.Logger) *Service {
	return &Service{productRepository: productRepo, logger: logger}
}

/*
Create validates the payload and persists the product with its SKUs.

Description: SKU codes must be unique inside the payload; uniqueness against
stored SKUs is enforced by the repository. A missing discount means 0 and a
missing availability flag means available.

Parameters:
  - context: context.Context
  - input: CreateInput

Returns:
  - *Product: Persisted product
  - error: VALIDATION_ERROR or storage failures
*/
func (service *Service) Create(context context.Context, input CreateInput) (*Product, error) {
	input.Item = strings.TrimSpace(input.Item)
	for i := range input.SKUs {
		input.SKUs[i].SKU = strings.TrimSpace(input.SKUs[i].SKU)
	}

	if err := input.Validate(); err != nil {
		return nil, validationError(err)
	}

	if repeated := slice.Duplicates(input.SKUs, func(sku SKUInput) string { return sku.SKU }); len(repeated) > 0 {
		return nil, apperr.ValidationError(
			fmt.Sprintf("Duplicate SKU: %s", strings.Join(repeated, ", ")),
			apperr.FieldError{Field: FieldSKUs, Message: "SKU codes must be unique"},
		)
	}

	now := time.Now().UTC()
	product := &Product{
		ID:         uuid.New(),
		Item:       input.Item,
		Categories: input.Categories,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if product.Categories == nil {
		product.Categories = []string{}
	}

	product.Slug = slug.From(product.Item)
	if product.Slug == "" {
		product.Slug = product.ID
	}

	product.SKUs = slice.Map(input.SKUs, func(sku SKUInput) SKU {
		return SKU{
			ID:          uuid.New(),
			ProductID:   product.ID,
			Code:        sku.SKU,
			Image:       sku.Image,
			Quantity:    pointer.Val(sku.Quantity),
			IsAvailable: pointer.Fallback(sku.IsAvailable, true),
			Attributes:  sku.Attributes,
			Price: Price{
				Buy:      pointer.Val(sku.Price.Buy),
				Sell:     pointer.Val(sku.Price.Sell),
				Discount: pointer.Fallback(sku.Price.Discount, 0),
			},
		}
	})

	if err := service.productRepository.Create(context, product); err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("product_service_create_failed: %w", err)
	}

	service.logger.Info("product_created",
		slog.String("product_id", product.ID),
		slog.Int("sku_count", len(product.SKUs)),
	)

	return product, nil
}
