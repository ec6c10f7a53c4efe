package handlers

import (
	"math"
	"net/http"
	"strconv"

	"artsstore/models"
	"artsstore/services"
	"artsstore/utils"

	"github.com/gin-gonic/gin"
)

type ProductRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	PriceCents  int64                `json:"price_cents"`
	Stock       int                  `json:"stock"`
	CategoryID  uint                 `json:"category_id"`
	Images      []models.StoredAsset `json:"images"`
	ModelAsset  *models.StoredAsset  `json:"model_asset"`
	Published   *bool                `json:"published"`
}

func (r *ProductRequest) toInput() services.ProductInput {
	return services.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		PriceCents:  r.PriceCents,
		Stock:       r.Stock,
		CategoryID:  r.CategoryID,
		Images:      r.Images,
		ModelAsset:  r.ModelAsset,
		Published:   r.Published,
	}
}

func paginationData(page, pageSize int, total int64) utils.PaginationData {
	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))
	return utils.PaginationData{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// ListProducts serves the public catalog: published products only.
func ListProducts(c *gin.Context) {
	categoryID, _ := strconv.ParseUint(c.DefaultQuery("category_id", "0"), 10, 32)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))

	result, err := getServices().Product.ListProducts(c.Request.Context(), services.ListProductsQuery{
		CategoryID:    uint(categoryID),
		PublishedOnly: true,
		Page:          page,
		PageSize:      pageSize,
	})
	if respondServiceError(c, err) {
		return
	}

	utils.Success(c, gin.H{
		"products":   result.Items,
		"pagination": paginationData(result.Page, result.PageSize, result.Total),
	})
}

func GetProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid product id")
		return
	}

	product, svcErr := getServices().Product.GetProduct(c.Request.Context(), uint(productID), true)
	if respondServiceError(c, svcErr) {
		return
	}
	utils.Success(c, product)
}

func CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	product, err := getServices().Product.CreateProduct(c.Request.Context(), req.toInput())
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, product)
}

func UpdateProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid product id")
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	product, svcErr := getServices().Product.UpdateProduct(c.Request.Context(), uint(productID), req.toInput())
	if respondServiceError(c, svcErr) {
		return
	}
	utils.Success(c, product)
}

func DeleteProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid product id")
		return
	}

	if respondServiceError(c, getServices().Product.DeleteProduct(c.Request.Context(), uint(productID))) {
		return
	}
	utils.SuccessWithMessage(c, "product deleted", nil)
}
