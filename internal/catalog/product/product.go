// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package product manages catalog products and their stock keeping units.

A product groups one or more SKUs under an item name. Each SKU carries its own
code, stock quantity, price triple and free-form attributes (size, colour).

# Architecture

  - Entities: Product, SKU, Price.
  - Validation: Nested payload rules are declared with ozzo-validation and
    converted into the platform VALIDATION_ERROR shape.
  - Storage: A product and its SKUs are written in one transaction.
*/
package product

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/taibuivan/storefront/internal/platform/apperr"
)

// Payload limits.
const (
	maxItemLength       = 200
	maxCategories       = 20
	maxSKUCodeLength    = 64
	maxImageLength      = 2048
	maxSKUsPerProduct   = 100
	maxAttributeEntries = 20
)

// # Domain Entities

// Product is a catalog entry with at least one SKU.
type Product struct {
	ID         string    `json:"id"`
	Item       string    `json:"item"`
	Slug       string    `json:"slug"`
	Categories []string  `json:"categories"`
	SKUs       []SKU     `json:"skus"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// SKU is one sellable variant of a product.
type SKU struct {
	ID          string            `json:"id"`
	ProductID   string            `json:"-"`
	Code        string            `json:"sku"`
	Image       string            `json:"image,omitempty"`
	Quantity    int               `json:"quantity"`
	Price       Price             `json:"price"`
	IsAvailable bool              `json:"isAvailable"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// Price holds the purchase, selling and discount amounts of a SKU.
type Price struct {
	Buy      float64 `json:"buy"`
	Sell     float64 `json:"sell"`
	Discount float64 `json:"discount"`
}

// # Inputs

// CreateInput is the decoded payload of a product creation request.
type CreateInput struct {
	Item       string     `json:"item"`
	Categories []string   `json:"categories"`
	SKUs       []SKUInput `json:"skus"`
}

// SKUInput is one SKU of a [CreateInput]. Pointer fields tell "absent" apart
// from zero.
type SKUInput struct {
	SKU         string            `json:"sku"`
	Image       string            `json:"image"`
	Quantity    *int              `json:"quantity"`
	Price       PriceInput        `json:"price"`
	IsAvailable *bool             `json:"isAvailable"`
	Attributes  map[string]string `json:"attributes"`
}

// PriceInput is the price block of a [SKUInput].
type PriceInput struct {
	Buy      *float64 `json:"buy"`
	Sell     *float64 `json:"sell"`
	Discount *float64 `json:"discount"`
}

// # Validation

// Validate implements validation.Validatable.
func (input CreateInput) Validate() error {
	return validation.ValidateStruct(&input,
		validation.Field(&input.Item, validation.Required, validation.Length(1, maxItemLength)),
		validation.Field(&input.Categories, validation.Length(0, maxCategories)),
		validation.Field(&input.SKUs, validation.Required, validation.Length(1, maxSKUsPerProduct)),
	)
}

// Validate implements validation.Validatable.
func (input SKUInput) Validate() error {
	return validation.ValidateStruct(&input,
		validation.Field(&input.SKU, validation.Required, validation.Length(1, maxSKUCodeLength)),
		validation.Field(&input.Image, validation.Length(0, maxImageLength)),
		validation.Field(&input.Quantity, validation.NotNil, validation.Min(0)),
		validation.Field(&input.Price),
		validation.Field(&input.Attributes, validation.Length(0, maxAttributeEntries)),
	)
}

// Validate implements validation.Validatable.
func (input PriceInput) Validate() error {
	return validation.ValidateStruct(&input,
		validation.Field(&input.Buy, validation.NotNil, validation.Min(0.0)),
		validation.Field(&input.Sell, validation.NotNil, validation.Min(0.0)),
		validation.Field(&input.Discount, validation.Min(0.0)),
	)
}

// validationError converts ozzo-validation errors into a VALIDATION_ERROR.
// Nested keys are joined with dots, e.g. "skus.0.quantity".
func validationError(err error) error {
	var fieldErrors validation.Errors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("product_validation_failed: %w", err)
	}

	var details []apperr.FieldError
	flattenErrors("", fieldErrors, &details)
	sort.Slice(details, func(i, j int) bool { return details[i].Field < details[j].Field })

	first := details[0]
	return apperr.ValidationError(fmt.Sprintf("%q: %s", first.Field, first.Message), details...)
}

func flattenErrors(prefix string, fieldErrors validation.Errors, details *[]apperr.FieldError) {
	for key, err := range fieldErrors {
		field := key
		if prefix != "" {
			field = prefix + "." + key
		}

		var nested validation.Errors
		if errors.As(err, &nested) {
			flattenErrors(field, nested, details)
			continue
		}

		message := err.Error()
		if message != "" {
			message = strings.ToUpper(message[:1]) + message[1:]
		}
		*details = append(*details, apperr.FieldError{Field: field, Message: message})
	}
}

// # Repository Contracts

// Repository defines the persistence contract for products.
type Repository interface {
	/*
		Create persists a product and all of its SKUs atomically.

		Parameters:
		  - context: context.Context
		  - product: *Product

		Returns:
		  - error: VALIDATION_ERROR on a duplicate item or SKU code, or
		    storage failures
	*/
	Create(context context.Context, product *Product) error
}
