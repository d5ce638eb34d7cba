// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package product

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/storefront/internal/platform/middleware"
	requestutil "github.com/taibuivan/storefront/internal/platform/request"
	"github.com/taibuivan/storefront/internal/platform/respond"
	"github.com/taibuivan/storefront/internal/platform/sec"
)

// Handler implements the catalog administration endpoints.
type Handler struct {
	productService *Service
}

// NewHandler constructs a new product [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{productService: service}
}

// Routes returns the /admin/products routes. Every route needs manageUser.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireRight(sec.RightManageUser))

	router.Post("/", handler.create)

	return router
}

/*
POST /api/v1/admin/products.

Request:
  - body: CreateInput {item, categories[], skus[{sku, image, quantity, price{buy, sell, discount}, isAvailable, attributes}]}

Response:
  - 201: Product: Created product with its SKUs
  - 400: VALIDATION_ERROR (missing item, duplicate SKU, unknown field)
  - 403: FORBIDDEN
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput
	if err := requestutil.DecodeStrictJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	product, err := handler.productService.Create(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, product)
}
