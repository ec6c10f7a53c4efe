package services

import (
	"context"
	"errors"
	"net/http"

	"artsstore/models"
	"artsstore/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderItemInput struct {
	ProductID uint
	Quantity  int
}

type CreateOrderInput struct {
	UserID  uint
	Address string
	Items   []OrderItemInput
}

type ListOrdersQuery struct {
	UserID   uint
	Status   string
	Page     int
	PageSize int
}

type OrderPage struct {
	Items    []models.Order
	Page     int
	PageSize int
	Total    int64
}

type OrderService interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (models.Order, error)
	ListOrders(ctx context.Context, q ListOrdersQuery) (OrderPage, error)
	GetOrder(ctx context.Context, orderNo string, userID uint) (models.Order, error)
	GetOrderForAdmin(ctx context.Context, orderNo string) (models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderNo, status string) (models.Order, error)
}

type orderService struct {
	txManager TxManager
	orders    repositories.OrderRepository
	products  repositories.ProductRepository
}

func NewOrderService(txManager TxManager, orders repositories.OrderRepository, products repositories.ProductRepository) OrderService {
	return &orderService{txManager: txManager, orders: orders, products: products}
}

// CreateOrder snapshots product name and price into order items and decrements
// stock, all inside one transaction. Stock rows are locked so two concurrent
// orders cannot both take the last unit.
func (s *orderService) CreateOrder(ctx context.Context, in CreateOrderInput) (models.Order, error) {
	if len(in.Items) == 0 {
		return models.Order{}, newAppError(http.StatusBadRequest, "order has no items", nil)
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return models.Order{}, newAppError(http.StatusBadRequest, "item quantity must be positive", nil)
		}
	}

	order := models.Order{
		OrderNo: uuid.New().String(),
		UserID:  in.UserID,
		Status:  models.OrderStatusPending,
		Address: in.Address,
	}

	err := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		var total int64
		for _, item := range in.Items {
			product, err := s.products.GetByIDForUpdate(ctx, tx, item.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return newAppError(http.StatusNotFound, "product not found", nil)
				}
				return err
			}
			if !product.Published {
				return newAppError(http.StatusBadRequest, "product is not available", nil)
			}
			if product.Stock < item.Quantity {
				return newAppError(http.StatusBadRequest, "insufficient stock for "+product.Name, nil)
			}
			if err := s.products.AddStock(ctx, tx, product.ID, -item.Quantity); err != nil {
				return err
			}

			order.Items = append(order.Items, models.OrderItem{
				ProductID:  product.ID,
				Name:       product.Name,
				PriceCents: product.PriceCents,
				Quantity:   item.Quantity,
			})
			total += product.PriceCents * int64(item.Quantity)
		}
		order.TotalCents = total

		return s.orders.Create(ctx, tx, &order)
	})
	if err != nil {
		var appErr *AppError
		if errors.As(err, &appErr) {
			return models.Order{}, appErr
		}
		return models.Order{}, newAppError(http.StatusInternalServerError, "failed to create order", err)
	}

	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, q ListOrdersQuery) (OrderPage, error) {
	page, pageSize := normalizePage(q.Page, q.PageSize)
	in := repositories.ListOrdersInput{
		UserID: q.UserID,
		Status: q.Status,
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	}

	total, err := s.orders.Count(ctx, nil, in)
	if err != nil {
		return OrderPage{}, newAppError(http.StatusInternalServerError, "failed to count orders", err)
	}
	items, err := s.orders.List(ctx, nil, in)
	if err != nil {
		return OrderPage{}, newAppError(http.StatusInternalServerError, "failed to list orders", err)
	}
	return OrderPage{Items: items, Page: page, PageSize: pageSize, Total: total}, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderNo string, userID uint) (models.Order, error) {
	order, err := s.orders.GetByOrderNoAndUser(ctx, nil, orderNo, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Order{}, newAppError(http.StatusNotFound, "order not found", nil)
		}
		return models.Order{}, newAppError(http.StatusInternalServerError, "failed to query order", err)
	}
	return order, nil
}

func (s *orderService) GetOrderForAdmin(ctx context.Context, orderNo string) (models.Order, error) {
	order, err := s.orders.GetByOrderNo(ctx, nil, orderNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Order{}, newAppError(http.StatusNotFound, "order not found", nil)
		}
		return models.Order{}, newAppError(http.StatusInternalServerError, "failed to query order", err)
	}
	return order, nil
}

// validOrderTransitions maps current status to the statuses an admin may move
// the order into.
var validOrderTransitions = map[string][]string{
	models.OrderStatusPending: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped: {models.OrderStatusCompleted, models.OrderStatusCancelled},
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, orderNo, status string) (models.Order, error) {
	order, err := s.orders.GetByOrderNo(ctx, nil, orderNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Order{}, newAppError(http.StatusNotFound, "order not found", nil)
		}
		return models.Order{}, newAppError(http.StatusInternalServerError, "failed to query order", err)
	}

	allowed := false
	for _, next := range validOrderTransitions[order.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return models.Order{}, newAppError(http.StatusBadRequest, "invalid status transition", nil)
	}

	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		if status == models.OrderStatusCancelled {
			for _, item := range order.Items {
				if err := s.products.AddStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}
		return s.orders.UpdateStatus(ctx, tx, orderNo, status)
	})
	if err != nil {
		return models.Order{}, newAppError(http.StatusInternalServerError, "failed to update order status", err)
	}

	order.Status = status
	return order, nil
}
