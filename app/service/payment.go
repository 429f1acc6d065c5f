package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fooddelivery/ms-go-checkout/app/entity"
	"github.com/fooddelivery/ms-go-checkout/app/gateway"
	"github.com/fooddelivery/ms-go-checkout/app/repository"
	"github.com/fooddelivery/ms-go-checkout/app/types"
)

const defaultCurrency = "INR"

type paymentRecordRepository interface {
	Create(ctx context.Context, record *entity.PaymentRecord) error
	FindByGatewayIDs(ctx context.Context, gatewayOrderID, gatewayPaymentID string) (*entity.PaymentRecord, error)
	ListByPayerEmail(ctx context.Context, payerEmail string) ([]*entity.PaymentRecord, error)
}

// PaymentIntent is the transient result of create-order. Nothing is persisted
// until the payer comes back through the verify call.
type PaymentIntent struct {
	OrderID     string
	AmountPaise int64
	Currency    string
	Status      string
}

// VerificationResult carries the outcome of one verify call. Duplicate means
// the same gateway order/payment pair was already recorded and the original
// outcome is being replayed.
type VerificationResult struct {
	Verified  bool
	Record    *entity.PaymentRecord
	Duplicate bool
}

type PaymentService struct {
	recordRepo paymentRecordRepository
	orderRepo  orderRepository
	tx         transactor
	gw         gateway.Gateway
}

func NewPaymentService(
	recordRepo paymentRecordRepository,
	orderRepo orderRepository,
	tx transactor,
	gw gateway.Gateway,
) *PaymentService {
	return &PaymentService{
		recordRepo: recordRepo,
		orderRepo:  orderRepo,
		tx:         tx,
		gw:         gw,
	}
}

func (s *PaymentService) CreateIntent(ctx context.Context, req *types.CreateIntentRequest) (*PaymentIntent, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	receipt := strings.TrimSpace(req.Receipt)
	if receipt == "" {
		receipt = "txn_" + strconv.FormatInt(time.Now().UnixMilli(), 10)
	}

	amountPaise := toPaise(req.Amount)
	out, err := s.gw.CreateOrder(ctx, &gateway.CreateOrderInput{
		AmountPaise: amountPaise,
		Currency:    currency,
		Receipt:     receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	return &PaymentIntent{
		OrderID:     out.OrderID,
		AmountPaise: amountPaise,
		Currency:    out.Currency,
		Status:      out.Status,
	}, nil
}

// VerifyPayment checks the submitted signature against the selected gateway
// and records the outcome in the ledger. The ledger append and, when an order
// id is supplied, the order settlement run in one transaction. A duplicate
// delivery of the same gateway order/payment pair writes nothing and returns
// the originally recorded outcome.
func (s *PaymentService) VerifyPayment(ctx context.Context, req *types.VerifyPaymentRequest) (*VerificationResult, error) {
	gatewayOrderID := strings.TrimSpace(req.GatewayOrderID)
	gatewayPaymentID := strings.TrimSpace(req.GatewayPaymentID)
	payerEmail := strings.TrimSpace(req.Email)
	if gatewayOrderID == "" || gatewayPaymentID == "" || payerEmail == "" {
		return nil, ErrInvalidRequest
	}
	if strings.TrimSpace(req.Signature) == "" {
		return nil, ErrInvalidRequest
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	existing, err := s.recordRepo.FindByGatewayIDs(ctx, gatewayOrderID, gatewayPaymentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return replayedResult(existing), nil
	}

	verified := s.gw.VerifySignature(gatewayOrderID, gatewayPaymentID, req.Signature)
	status := entity.PaymentStatusFailed
	if verified {
		status = entity.PaymentStatusSuccess
	}

	now := time.Now().UTC()
	record := &entity.PaymentRecord{
		GatewayOrderID:   gatewayOrderID,
		GatewayPaymentID: gatewayPaymentID,
		// Stored byte-identical to the submission; the gateway trims for
		// its own comparison.
		Signature: req.Signature,
		Status:    status,
		// Verify callbacks carry no currency field; the checkout flow
		// charges INR only, so ledger rows pin it here.
		Currency:    defaultCurrency,
		AmountPaise: toPaise(req.Amount),
		PayerEmail:  payerEmail,
		CreatedAt:   now,
	}

	err = s.tx.InTx(ctx, func(txCtx context.Context) error {
		if err := s.recordRepo.Create(txCtx, record); err != nil {
			return err
		}
		if req.OrderID > 0 {
			if _, err := settleOrder(txCtx, s.orderRepo, req.OrderID, verified, now); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, repository.ErrPaymentRecordAlreadyExists) {
		// Lost the race against a concurrent delivery of the same callback.
		existing, ferr := s.recordRepo.FindByGatewayIDs(ctx, gatewayOrderID, gatewayPaymentID)
		if ferr != nil {
			return nil, ferr
		}
		if existing == nil {
			return nil, err
		}
		return replayedResult(existing), nil
	}
	if err != nil {
		return nil, err
	}

	return &VerificationResult{Verified: verified, Record: record}, nil
}

func (s *PaymentService) ListRecords(ctx context.Context, payerEmail string) ([]*entity.PaymentRecord, error) {
	payerEmail = strings.TrimSpace(payerEmail)
	if payerEmail == "" {
		return nil, ErrInvalidRequest
	}
	return s.recordRepo.ListByPayerEmail(ctx, payerEmail)
}

func replayedResult(record *entity.PaymentRecord) *VerificationResult {
	return &VerificationResult{
		Verified:  record.Status == entity.PaymentStatusSuccess,
		Record:    record,
		Duplicate: true,
	}
}

func toPaise(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
