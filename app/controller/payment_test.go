package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fooddelivery/ms-go-checkout/app/entity"
	"github.com/fooddelivery/ms-go-checkout/app/gateway"
	"github.com/fooddelivery/ms-go-checkout/app/repository"
	"github.com/fooddelivery/ms-go-checkout/app/service"
	"github.com/fooddelivery/ms-go-checkout/app/types"
)

type controllerRecordRepo struct {
	records map[uint64]*entity.PaymentRecord
	nextID  uint64
}

func newControllerRecordRepo() *controllerRecordRepo {
	return &controllerRecordRepo{
		records: map[uint64]*entity.PaymentRecord{},
		nextID:  1,
	}
}

func (r *controllerRecordRepo) Create(_ context.Context, record *entity.PaymentRecord) error {
	for _, item := range r.records {
		if item.GatewayOrderID == record.GatewayOrderID && item.GatewayPaymentID == record.GatewayPaymentID {
			return repository.ErrPaymentRecordAlreadyExists
		}
	}
	id := r.nextID
	r.nextID++
	copyItem := *record
	copyItem.ID = id
	r.records[id] = &copyItem
	record.ID = id
	return nil
}

func (r *controllerRecordRepo) FindByGatewayIDs(_ context.Context, gatewayOrderID, gatewayPaymentID string) (*entity.PaymentRecord, error) {
	for _, item := range r.records {
		if item.GatewayOrderID == gatewayOrderID && item.GatewayPaymentID == gatewayPaymentID {
			copyItem := *item
			return &copyItem, nil
		}
	}
	return nil, nil
}

func (r *controllerRecordRepo) ListByPayerEmail(_ context.Context, payerEmail string) ([]*entity.PaymentRecord, error) {
	items := make([]*entity.PaymentRecord, 0)
	for _, item := range r.records {
		if item.PayerEmail == payerEmail {
			copyItem := *item
			items = append(items, &copyItem)
		}
	}
	return items, nil
}

type controllerOrderRepo struct {
	orders map[uint64]*entity.Order
	nextID uint64
}

func newControllerOrderRepo() *controllerOrderRepo {
	return &controllerOrderRepo{
		orders: map[uint64]*entity.Order{},
		nextID: 1,
	}
}

func (r *controllerOrderRepo) Create(_ context.Context, order *entity.Order) error {
	id := r.nextID
	r.nextID++
	copyItem := *order
	copyItem.ID = id
	r.orders[id] = &copyItem
	order.ID = id
	return nil
}

func (r *controllerOrderRepo) FindByID(_ context.Context, id uint64) (*entity.Order, error) {
	item, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	copyItem := *item
	return &copyItem, nil
}

func (r *controllerOrderRepo) UpdateStatus(_ context.Context, id uint64, fromStatus, toStatus string, updatedAt time.Time) error {
	item, ok := r.orders[id]
	if !ok || item.Status != fromStatus {
		return repository.ErrOrderNotFound
	}
	item.Status = toStatus
	item.UpdatedAt = updatedAt
	return nil
}

func (r *controllerOrderRepo) ListByPayerEmail(_ context.Context, payerEmail string) ([]*entity.Order, error) {
	items := make([]*entity.Order, 0)
	for _, item := range r.orders {
		if item.PayerEmail == payerEmail {
			copyItem := *item
			items = append(items, &copyItem)
		}
	}
	return items, nil
}

type controllerTx struct{}

func (controllerTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type rejectingGateway struct{}

func (rejectingGateway) Mode() string {
	return gateway.ModeLive
}

func (rejectingGateway) CreateOrder(_ context.Context, input *gateway.CreateOrderInput) (*gateway.CreateOrderOutput, error) {
	return &gateway.CreateOrderOutput{OrderID: "order_live_1", Currency: input.Currency, Status: "created"}, nil
}

func (rejectingGateway) VerifySignature(_, _, _ string) bool {
	return false
}

func newPaymentControllerForTest(gw gateway.Gateway) (*PaymentController, *controllerRecordRepo, *controllerOrderRepo) {
	recordRepo := newControllerRecordRepo()
	orderRepo := newControllerOrderRepo()
	svc := service.NewPaymentService(recordRepo, orderRepo, controllerTx{}, gw)
	return NewPaymentController(svc), recordRepo, orderRepo
}

func doJSONRequest(t *testing.T, handler echo.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response body %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	controller, _, _ := newPaymentControllerForTest(gateway.NewMockGateway())

	rec := doJSONRequest(t, controller.Health, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body types.HealthResponse
	decodeBody(t, rec, &body)
	if body.Status != "ok" {
		t.Fatalf("unexpected health body: %+v", body)
	}
}

func TestCreateIntentMockGateway(t *testing.T) {
	controller, _, _ := newPaymentControllerForTest(gateway.NewMockGateway())

	rec := doJSONRequest(t, controller.CreateIntent, http.MethodPost, "/payments/create-order", `{"amount": 250.0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body types.PaymentIntentResponse
	decodeBody(t, rec, &body)
	if !strings.HasPrefix(body.OrderID, "order_mock_") {
		t.Fatalf("unexpected order id: %s", body.OrderID)
	}
	if body.Amount != 250.0 || body.Currency != "INR" || body.Status != "created" {
		t.Fatalf("unexpected intent body: %+v", body)
	}
}

func TestCreateIntentRejectsZeroAmount(t *testing.T) {
	controller, _, _ := newPaymentControllerForTest(gateway.NewMockGateway())

	rec := doJSONRequest(t, controller.CreateIntent, http.MethodPost, "/payments/create-order", `{"amount": 0}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body types.ErrorResponse
	decodeBody(t, rec, &body)
	if body.Error != "Amount must be greater than 0" {
		t.Fatalf("unexpected error message: %q", body.Error)
	}
}

func TestCreateIntentRejectsMalformedBody(t *testing.T) {
	controller, _, _ := newPaymentControllerForTest(gateway.NewMockGateway())

	rec := doJSONRequest(t, controller.CreateIntent, http.MethodPost, "/payments/create-order", `{"amount": `)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestVerifyPaymentMockGateway(t *testing.T) {
	controller, recordRepo, _ := newPaymentControllerForTest(gateway.NewMockGateway())

	rec := doJSONRequest(t, controller.VerifyPayment, http.MethodPost, "/payments/verify",
		`{"gatewayOrderId":"order_mock_1","gatewayPaymentId":"pay_1","signature":"sig","email":"a@x.com","amount":250.0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body types.MessageResponse
	decodeBody(t, rec, &body)
	if body.Message != "Payment verified successfully" {
		t.Fatalf("unexpected message: %q", body.Message)
	}
	if len(recordRepo.records) != 1 {
		t.Fatalf("expected one ledger row, got %d", len(recordRepo.records))
	}
}

func TestVerifyPaymentStoresSubmittedSignatureByteIdentical(t *testing.T) {
	controller, recordRepo, _ := newPaymentControllerForTest(gateway.NewMockGateway())

	rec := doJSONRequest(t, controller.VerifyPayment, http.MethodPost, "/payments/verify",
		`{"gatewayOrderId":"order_mock_1","gatewayPaymentId":"pay_1","signature":"  sig  ","email":"a@x.com","amount":250.0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(recordRepo.records) != 1 {
		t.Fatalf("expected one ledger row, got %d", len(recordRepo.records))
	}
	for _, record := range recordRepo.records {
		if record.Signature != "  sig  " {
			t.Fatalf("expected signature stored byte-identical, got %q", record.Signature)
		}
	}
}

func TestVerifyPaymentRejectedSignature(t *testing.T) {
	controller, recordRepo, _ := newPaymentControllerForTest(rejectingGateway{})

	rec := doJSONRequest(t, controller.VerifyPayment, http.MethodPost, "/payments/verify",
		`{"gatewayOrderId":"order_1","gatewayPaymentId":"pay_1","signature":"deadbeef","email":"a@x.com","amount":250.0}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body types.ErrorResponse
	decodeBody(t, rec, &body)
	if body.Error != "Payment verification failed" {
		t.Fatalf("unexpected error message: %q", body.Error)
	}
	if len(recordRepo.records) != 1 {
		t.Fatalf("expected failed attempt recorded, got %d rows", len(recordRepo.records))
	}
}

func TestVerifyPaymentMissingFields(t *testing.T) {
	controller, _, _ := newPaymentControllerForTest(gateway.NewMockGateway())

	rec := doJSONRequest(t, controller.VerifyPayment, http.MethodPost, "/payments/verify",
		`{"gatewayOrderId":"order_mock_1","email":"a@x.com","amount":250.0}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestVerifyPaymentUnknownOrderID(t *testing.T) {
	controller, _, _ := newPaymentControllerForTest(gateway.NewMockGateway())

	rec := doJSONRequest(t, controller.VerifyPayment, http.MethodPost, "/payments/verify",
		`{"gatewayOrderId":"order_mock_1","gatewayPaymentId":"pay_1","signature":"sig","email":"a@x.com","amount":250.0,"orderId":99}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestVerifyPaymentAlreadySettledOrder(t *testing.T) {
	controller, _, orderRepo := newPaymentControllerForTest(gateway.NewMockGateway())
	orderRepo.orders[1] = &entity.Order{ID: 1, PayerEmail: "a@x.com", Status: entity.OrderStatusSuccess}
	orderRepo.nextID = 2

	rec := doJSONRequest(t, controller.VerifyPayment, http.MethodPost, "/payments/verify",
		`{"gatewayOrderId":"order_mock_1","gatewayPaymentId":"pay_1","signature":"sig","email":"a@x.com","amount":250.0,"orderId":1}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var body types.ErrorResponse
	decodeBody(t, rec, &body)
	if body.Error != "order already settled" {
		t.Fatalf("unexpected error message: %q", body.Error)
	}
}

func TestListRecordsRequiresEmail(t *testing.T) {
	controller, _, _ := newPaymentControllerForTest(gateway.NewMockGateway())

	rec := doJSONRequest(t, controller.ListRecords, http.MethodGet, "/payments/records", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListRecordsFiltersByEmail(t *testing.T) {
	controller, recordRepo, _ := newPaymentControllerForTest(gateway.NewMockGateway())
	recordRepo.records[1] = &entity.PaymentRecord{
		ID:               1,
		GatewayOrderID:   "o1",
		GatewayPaymentID: "p1",
		Status:           entity.PaymentStatusSuccess,
		AmountPaise:      25000,
		Currency:         "INR",
		PayerEmail:       "a@x.com",
		CreatedAt:        time.Now().UTC(),
	}
	recordRepo.records[2] = &entity.PaymentRecord{
		ID:               2,
		GatewayOrderID:   "o2",
		GatewayPaymentID: "p2",
		Status:           entity.PaymentStatusFailed,
		PayerEmail:       "b@x.com",
		CreatedAt:        time.Now().UTC(),
	}
	recordRepo.nextID = 3

	rec := doJSONRequest(t, controller.ListRecords, http.MethodGet, "/payments/records?email=a%40x.com", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body types.ListPaymentRecordsResponse
	decodeBody(t, rec, &body)
	if len(body.Records) != 1 {
		t.Fatalf("expected one record, got %d", len(body.Records))
	}
	if body.Records[0].PayerEmail != "a@x.com" || body.Records[0].Amount != 250.0 {
		t.Fatalf("unexpected record: %+v", body.Records[0])
	}
}
