package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shop-backend/internal/domains/catalog/model"
	"shop-backend/internal/domains/catalog/service"
	"shop-backend/internal/shared/response"
)

type CatalogHandler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var req model.ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}
	req.Normalize()

	products, total, err := h.service.ListProducts(c.Request.Context(), req)
	if err != nil {
		handleCatalogError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, products, &response.Meta{
		Page:  req.Page,
		Limit: req.Limit,
		Total: total,
	})
}

// GetProduct handles GET /api/v1/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}

	detail, err := h.service.GetProduct(c.Request.Context(), productID)
	if err != nil {
		handleCatalogError(c, err)
		return
	}

	response.Success(c, http.StatusOK, detail)
}

func handleCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrProductNotFound):
		response.ErrorResponse(c, http.StatusNotFound, model.ErrCodeProductNotFound, model.ErrProductNotFound.Error())
	case errors.Is(err, model.ErrVariantNotFound):
		response.ErrorResponse(c, http.StatusNotFound, model.ErrCodeVariantNotFound, model.ErrVariantNotFound.Error())
	case errors.Is(err, model.ErrOutOfStock):
		response.ErrorResponse(c, http.StatusConflict, model.ErrCodeOutOfStock, err.Error())
	case errors.Is(err, model.ErrInvalidQuantity):
		response.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeInvalidQuantity, err.Error())
	default:
		response.InternalServerError(c, "failed to process catalog request")
	}
}
