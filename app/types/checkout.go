package types

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

var allowedPaymentMethods = map[string]struct{}{
	"RAZORPAY": {},
	"UPI":      {},
	"CARD":     {},
	"COD":      {},
}

type CreateIntentRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Receipt  string  `json:"receipt"`
}

func NewCreateIntentRequestFromContext(ctx echo.Context) (*CreateIntentRequest, error) {
	var body CreateIntentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.Currency = strings.ToUpper(strings.TrimSpace(body.Currency))
	body.Receipt = strings.TrimSpace(body.Receipt)

	return &body, nil
}

func (r *CreateIntentRequest) Validate() error {
	if r.Amount <= 0 {
		return errors.New("Amount must be greater than 0")
	}
	if r.Currency != "" && len(r.Currency) != 3 {
		return errors.New("currency must be 3 letters")
	}
	return nil
}

type VerifyPaymentRequest struct {
	GatewayOrderID   string  `json:"gatewayOrderId"`
	GatewayPaymentID string  `json:"gatewayPaymentId"`
	Signature        string  `json:"signature"`
	Email            string  `json:"email"`
	Amount           float64 `json:"amount"`
	OrderID          uint64  `json:"orderId"`
}

func NewVerifyPaymentRequestFromContext(ctx echo.Context) (*VerifyPaymentRequest, error) {
	var body VerifyPaymentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	// The signature is deliberately not trimmed: the ledger stores it
	// byte-identical to what the caller submitted.
	body.GatewayOrderID = strings.TrimSpace(body.GatewayOrderID)
	body.GatewayPaymentID = strings.TrimSpace(body.GatewayPaymentID)
	body.Email = strings.TrimSpace(body.Email)

	return &body, nil
}

func (r *VerifyPaymentRequest) Validate() error {
	if r.GatewayOrderID == "" {
		return errors.New("gatewayOrderId is required")
	}
	if r.GatewayPaymentID == "" {
		return errors.New("gatewayPaymentId is required")
	}
	if strings.TrimSpace(r.Signature) == "" {
		return errors.New("signature is required")
	}
	if r.Email == "" {
		return errors.New("email is required")
	}
	if r.Amount <= 0 {
		return errors.New("Amount must be greater than 0")
	}
	return nil
}

type OrderItemRequest struct {
	Name      string  `json:"name"`
	Quantity  int32   `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type CreateOrderRequest struct {
	PayerEmail      string             `json:"payerEmail"`
	Items           []OrderItemRequest `json:"items"`
	DeliveryAddress string             `json:"deliveryAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
}

func NewCreateOrderRequestFromContext(ctx echo.Context) (*CreateOrderRequest, error) {
	var body CreateOrderRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.PayerEmail = strings.TrimSpace(body.PayerEmail)
	body.DeliveryAddress = strings.TrimSpace(body.DeliveryAddress)
	body.PaymentMethod = strings.ToUpper(strings.TrimSpace(body.PaymentMethod))
	for i := range body.Items {
		body.Items[i].Name = strings.TrimSpace(body.Items[i].Name)
	}

	return &body, nil
}

func (r *CreateOrderRequest) Validate() error {
	if r.PayerEmail == "" {
		return errors.New("payerEmail is required")
	}
	if !strings.Contains(r.PayerEmail, "@") {
		return errors.New("payerEmail is invalid")
	}
	if len(r.Items) == 0 {
		return errors.New("order must contain at least one item")
	}
	for _, item := range r.Items {
		if item.Name == "" {
			return errors.New("item name is required")
		}
		if item.Quantity <= 0 {
			return errors.New("item quantity must be greater than 0")
		}
		if item.UnitPrice <= 0 {
			return errors.New("item unit price must be greater than 0")
		}
	}
	if r.PaymentMethod == "" {
		return errors.New("paymentMethod is required")
	}
	if _, ok := allowedPaymentMethods[r.PaymentMethod]; !ok {
		return errors.New("paymentMethod must be one of RAZORPAY, UPI, CARD, COD")
	}
	if r.DeliveryAddress == "" {
		return errors.New("deliveryAddress is required")
	}
	return nil
}

type GetOrderRequest struct {
	ID uint64
}

func NewGetOrderRequestFromContext(ctx echo.Context) (*GetOrderRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}
	return &GetOrderRequest{ID: id}, nil
}

func (r *GetOrderRequest) Validate() error {
	if r.ID == 0 {
		return errors.New("invalid order id")
	}
	return nil
}

type ListOrdersByPayerRequest struct {
	PayerEmail string
}

func NewListOrdersByPayerRequestFromContext(ctx echo.Context) (*ListOrdersByPayerRequest, error) {
	return &ListOrdersByPayerRequest{PayerEmail: strings.TrimSpace(ctx.Param("email"))}, nil
}

func (r *ListOrdersByPayerRequest) Validate() error {
	if r.PayerEmail == "" {
		return errors.New("email is required")
	}
	return nil
}

type ListPaymentRecordsRequest struct {
	PayerEmail string
}

func NewListPaymentRecordsRequestFromContext(ctx echo.Context) (*ListPaymentRecordsRequest, error) {
	return &ListPaymentRecordsRequest{PayerEmail: strings.TrimSpace(ctx.QueryParam("email"))}, nil
}

func (r *ListPaymentRecordsRequest) Validate() error {
	if r.PayerEmail == "" {
		return errors.New("email query parameter is required")
	}
	return nil
}

type PaymentIntentResponse struct {
	OrderID  string  `json:"orderId"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Status   string  `json:"status"`
}

type PaymentRecordResponse struct {
	ID               uint64  `json:"id"`
	GatewayOrderID   string  `json:"gatewayOrderId"`
	GatewayPaymentID string  `json:"gatewayPaymentId"`
	Signature        string  `json:"signature"`
	Status           string  `json:"status"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	PayerEmail       string  `json:"payerEmail"`
	CreatedAt        string  `json:"createdAt"`
}

type ListPaymentRecordsResponse struct {
	Records []*PaymentRecordResponse `json:"records"`
}

type OrderItemResponse struct {
	Name      string  `json:"name"`
	Quantity  int32   `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Subtotal  float64 `json:"subtotal"`
}

type OrderResponse struct {
	ID              uint64               `json:"id"`
	PayerEmail      string               `json:"payerEmail"`
	TotalAmount     float64              `json:"totalAmount"`
	Status          string               `json:"status"`
	PaymentMethod   string               `json:"paymentMethod"`
	DeliveryAddress string               `json:"deliveryAddress"`
	OrderDate       string               `json:"orderDate"`
	Items           []*OrderItemResponse `json:"items"`
}

type ListOrdersResponse struct {
	Orders []*OrderResponse `json:"orders"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
