package handlers

import (
	"net/http"
	"strconv"

	"artsstore/utils"

	"github.com/gin-gonic/gin"
)

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	ParentID    uint   `json:"parent_id"`
	Description string `json:"description" binding:"max=500"`
}

type UpdateCategoryRequest struct {
	Name        string `json:"name" binding:"max=100"`
	Description string `json:"description" binding:"max=500"`
}

func ListCategories(c *gin.Context) {
	list, err := getServices().Category.ListCategories(c.Request.Context())
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, list)
}

func CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	category, err := getServices().Category.CreateCategory(c.Request.Context(), req.Name, req.ParentID, req.Description)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, category)
}

func UpdateCategory(c *gin.Context) {
	categoryID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid category id")
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	category, svcErr := getServices().Category.UpdateCategory(c.Request.Context(), uint(categoryID), req.Name, req.Description)
	if respondServiceError(c, svcErr) {
		return
	}
	utils.Success(c, category)
}

func DeleteCategory(c *gin.Context) {
	categoryID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid category id")
		return
	}

	if respondServiceError(c, getServices().Category.DeleteCategory(c.Request.Context(), uint(categoryID))) {
		return
	}
	utils.SuccessWithMessage(c, "category deleted", nil)
}
