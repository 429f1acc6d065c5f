package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/fooddelivery/ms-go-checkout/app/factory"
	"github.com/fooddelivery/ms-go-checkout/app/mapper"
	"github.com/fooddelivery/ms-go-checkout/app/service"
	"github.com/fooddelivery/ms-go-checkout/app/types"
)

type PaymentController struct {
	paymentService *service.PaymentService
	logger         logrus.FieldLogger
}

func NewPaymentController(paymentService *service.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		logger:         factory.NewModuleLogger("checkout-payment-controller"),
	}
}

func (c *PaymentController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *PaymentController) CreateIntent(ctx echo.Context) error {
	req, err := types.NewCreateIntentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	intent, err := c.paymentService.CreateIntent(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			return c.writeError(ctx, http.StatusBadRequest, "Amount must be greater than 0")
		case errors.Is(err, service.ErrGatewayUnavailable):
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Create payment intent failed at gateway")
			return c.writeError(ctx, http.StatusInternalServerError, "error creating gateway order")
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Create payment intent failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, mapper.IntentToResponse(intent))
}

func (c *PaymentController) VerifyPayment(ctx echo.Context) error {
	req, err := types.NewVerifyPaymentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.paymentService.VerifyPayment(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrInvalidAmount):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOrderNotFound):
			return c.writeError(ctx, http.StatusNotFound, "order not found")
		case errors.Is(err, service.ErrOrderAlreadySettled):
			return c.writeError(ctx, http.StatusConflict, "order already settled")
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Verify payment failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	if !result.Verified {
		return c.writeError(ctx, http.StatusBadRequest, "Payment verification failed")
	}

	return ctx.JSON(http.StatusOK, &types.MessageResponse{Message: "Payment verified successfully"})
}

func (c *PaymentController) ListRecords(ctx echo.Context) error {
	req, err := types.NewListPaymentRecordsRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	records, err := c.paymentService.ListRecords(ctx.Request().Context(), req.PayerEmail)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("List payment records failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.ListPaymentRecordsResponse{Records: mapper.PaymentRecordsToResponse(records)})
}

func (c *PaymentController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
