package mapper

import (
	"time"

	"github.com/fooddelivery/ms-go-checkout/app/entity"
	"github.com/fooddelivery/ms-go-checkout/app/service"
	"github.com/fooddelivery/ms-go-checkout/app/types"
)

func IntentToResponse(intent *service.PaymentIntent) *types.PaymentIntentResponse {
	if intent == nil {
		return nil
	}

	return &types.PaymentIntentResponse{
		OrderID:  intent.OrderID,
		Amount:   paiseToAmount(intent.AmountPaise),
		Currency: intent.Currency,
		Status:   intent.Status,
	}
}

func PaymentRecordToResponse(record *entity.PaymentRecord) *types.PaymentRecordResponse {
	if record == nil {
		return nil
	}

	return &types.PaymentRecordResponse{
		ID:               record.ID,
		GatewayOrderID:   record.GatewayOrderID,
		GatewayPaymentID: record.GatewayPaymentID,
		Signature:        record.Signature,
		Status:           record.Status,
		Amount:           paiseToAmount(record.AmountPaise),
		Currency:         record.Currency,
		PayerEmail:       record.PayerEmail,
		CreatedAt:        record.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func PaymentRecordsToResponse(records []*entity.PaymentRecord) []*types.PaymentRecordResponse {
	result := make([]*types.PaymentRecordResponse, 0, len(records))
	for _, record := range records {
		result = append(result, PaymentRecordToResponse(record))
	}
	return result
}

func OrderToResponse(order *entity.Order) *types.OrderResponse {
	if order == nil {
		return nil
	}

	items := make([]*types.OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, &types.OrderItemResponse{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: paiseToAmount(item.UnitPricePaise),
			Subtotal:  paiseToAmount(item.SubtotalPaise),
		})
	}

	return &types.OrderResponse{
		ID:              order.ID,
		PayerEmail:      order.PayerEmail,
		TotalAmount:     paiseToAmount(order.TotalAmountPaise),
		Status:          order.Status,
		PaymentMethod:   order.PaymentMethod,
		DeliveryAddress: order.DeliveryAddress,
		OrderDate:       order.OrderDate.UTC().Format(time.RFC3339),
		Items:           items,
	}
}

func OrdersToResponse(orders []*entity.Order) []*types.OrderResponse {
	result := make([]*types.OrderResponse, 0, len(orders))
	for _, order := range orders {
		result = append(result, OrderToResponse(order))
	}
	return result
}

func paiseToAmount(paise int64) float64 {
	return float64(paise) / 100
}
