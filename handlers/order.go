package handlers

import (
	"net/http"
	"strconv"

	"artsstore/services"
	"artsstore/utils"

	"github.com/gin-gonic/gin"
)

type CreateOrderRequest struct {
	Address string `json:"address" binding:"required,max=500"`
	Items   []struct {
		ProductID uint `json:"product_id" binding:"required"`
		Quantity  int  `json:"quantity" binding:"required,min=1"`
	} `json:"items" binding:"required,min=1"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func CreateOrder(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	in := services.CreateOrderInput{UserID: userID, Address: req.Address}
	for _, item := range req.Items {
		in.Items = append(in.Items, services.OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := getServices().Order.CreateOrder(c.Request.Context(), in)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, order)
}

func ListOrders(c *gin.Context) {
	userID := c.GetUint("user_id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))

	result, err := getServices().Order.ListOrders(c.Request.Context(), services.ListOrdersQuery{
		UserID:   userID,
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	})
	if respondServiceError(c, err) {
		return
	}

	utils.Success(c, gin.H{
		"orders":     result.Items,
		"pagination": paginationData(result.Page, result.PageSize, result.Total),
	})
}

func GetOrder(c *gin.Context) {
	userID := c.GetUint("user_id")

	order, err := getServices().Order.GetOrder(c.Request.Context(), c.Param("order_no"), userID)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, order)
}

// AdminListOrders lists orders across all users.
func AdminListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))
	userID, _ := strconv.ParseUint(c.DefaultQuery("user_id", "0"), 10, 32)

	result, err := getServices().Order.ListOrders(c.Request.Context(), services.ListOrdersQuery{
		UserID:   uint(userID),
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	})
	if respondServiceError(c, err) {
		return
	}

	utils.Success(c, gin.H{
		"orders":     result.Items,
		"pagination": paginationData(result.Page, result.PageSize, result.Total),
	})
}

func UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	order, err := getServices().Order.UpdateOrderStatus(c.Request.Context(), c.Param("order_no"), req.Status)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, order)
}
