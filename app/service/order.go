package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fooddelivery/ms-go-checkout/app/entity"
	"github.com/fooddelivery/ms-go-checkout/app/repository"
	"github.com/fooddelivery/ms-go-checkout/app/types"
)

type orderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	FindByID(ctx context.Context, id uint64) (*entity.Order, error)
	UpdateStatus(ctx context.Context, id uint64, fromStatus, toStatus string, updatedAt time.Time) error
	ListByPayerEmail(ctx context.Context, payerEmail string) ([]*entity.Order, error)
}

type transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type OrderService struct {
	orderRepo orderRepository
	tx        transactor
}

func NewOrderService(orderRepo orderRepository, tx transactor) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		tx:        tx,
	}
}

// CreateOrder computes the item subtotals and the order total server-side and
// persists the order with its items in one transaction. Orders start PENDING
// and only settlement moves them on.
func (s *OrderService) CreateOrder(ctx context.Context, req *types.CreateOrderRequest) (*entity.Order, error) {
	payerEmail := strings.TrimSpace(req.PayerEmail)
	if payerEmail == "" || len(req.Items) == 0 {
		return nil, ErrInvalidRequest
	}

	items := make([]entity.OrderItem, 0, len(req.Items))
	var totalPaise int64
	for _, item := range req.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" || item.Quantity <= 0 || item.UnitPrice <= 0 {
			return nil, ErrInvalidRequest
		}
		unitPricePaise := toPaise(item.UnitPrice)
		subtotalPaise := unitPricePaise * int64(item.Quantity)
		totalPaise += subtotalPaise
		items = append(items, entity.OrderItem{
			Name:           name,
			Quantity:       item.Quantity,
			UnitPricePaise: unitPricePaise,
			SubtotalPaise:  subtotalPaise,
		})
	}

	now := time.Now().UTC()
	order := &entity.Order{
		PayerEmail:       payerEmail,
		TotalAmountPaise: totalPaise,
		Status:           entity.OrderStatusPending,
		PaymentMethod:    strings.ToUpper(strings.TrimSpace(req.PaymentMethod)),
		DeliveryAddress:  strings.TrimSpace(req.DeliveryAddress),
		OrderDate:        now,
		Items:            items,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err := s.tx.InTx(ctx, func(txCtx context.Context) error {
		return s.orderRepo.Create(txCtx, order)
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uint64) (*entity.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// SettleOrder finalizes a pending order from a verification outcome.
func (s *OrderService) SettleOrder(ctx context.Context, id uint64, verified bool) (*entity.Order, error) {
	var settled *entity.Order
	err := s.tx.InTx(ctx, func(txCtx context.Context) error {
		order, err := settleOrder(txCtx, s.orderRepo, id, verified, time.Now().UTC())
		if err != nil {
			return err
		}
		settled = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settled, nil
}

func (s *OrderService) ListOrdersByPayer(ctx context.Context, payerEmail string) ([]*entity.Order, error) {
	payerEmail = strings.TrimSpace(payerEmail)
	if payerEmail == "" {
		return nil, ErrInvalidRequest
	}
	return s.orderRepo.ListByPayerEmail(ctx, payerEmail)
}

// settleOrder applies the PENDING -> SUCCESS / PENDING -> CANCELLED
// transition. Terminal orders reject the attempt; the status-guarded update
// catches a settlement that raced past the read.
func settleOrder(ctx context.Context, repo orderRepository, orderID uint64, verified bool, now time.Time) (*entity.Order, error) {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Terminal() {
		return nil, ErrOrderAlreadySettled
	}

	toStatus := entity.OrderStatusCancelled
	if verified {
		toStatus = entity.OrderStatusSuccess
	}

	if err := repo.UpdateStatus(ctx, orderID, entity.OrderStatusPending, toStatus, now); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderAlreadySettled
		}
		return nil, err
	}

	order.Status = toStatus
	order.UpdatedAt = now
	return order, nil
}
