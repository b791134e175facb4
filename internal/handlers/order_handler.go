package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nayeemx/gymstore/internal/gateway"
	"github.com/nayeemx/gymstore/internal/helpers"
	"github.com/nayeemx/gymstore/internal/models"
	"github.com/nayeemx/gymstore/internal/orders"
)

// OrderHandler is the HTTP boundary of one product domain's order workflow.
// API routes answer JSON; the gateway callback routes always answer a 200
// HTML page whose only job is a client-side redirect back to the frontend.
type OrderHandler struct {
	engine      *orders.Engine
	queries     *orders.Queries
	frontendURL string
	log         *zap.Logger
}

func NewOrderHandler(engine *orders.Engine, queries *orders.Queries, frontendURL string, log *zap.Logger) *OrderHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderHandler{
		engine:      engine,
		queries:     queries,
		frontendURL: frontendURL,
		log:         log,
	}
}

type ProductPayload struct {
	ID    string `json:"id"`
	Title string `json:"title" binding:"required"`
	Price int64  `json:"price"`
	Image string `json:"image"`
}

type ShippingPayload struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
	Phone    string `json:"phone"`
}

type CreateOrderRequest struct {
	UserID        string          `json:"userId" binding:"required"`
	Product       ProductPayload  `json:"product" binding:"required"`
	ShippingInfo  ShippingPayload `json:"shippingInfo" binding:"required"`
	TotalAmount   int64           `json:"totalAmount" binding:"required,gt=0"`
	PaymentMethod string          `json:"paymentMethod"`
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	result, err := h.engine.Initiate(c.Request.Context(), orders.InitiateInput{
		UserID: req.UserID,
		Product: models.ProductRef{
			ID:    req.Product.ID,
			Title: req.Product.Title,
			Price: req.Product.Price,
			Image: req.Product.Image,
		},
		Shipping: models.ShippingInfo{
			Name:     req.ShippingInfo.Name,
			Email:    req.ShippingInfo.Email,
			Address:  req.ShippingInfo.Address,
			City:     req.ShippingInfo.City,
			Postcode: req.ShippingInfo.Postcode,
			Phone:    req.ShippingInfo.Phone,
		},
		TotalAmount:   req.TotalAmount,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		h.respondInitiateError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"url":     result.RedirectURL,
		"orderId": result.OrderID,
	})
}

func (h *OrderHandler) respondInitiateError(c *gin.Context, err error) {
	var gatewayErr *gateway.Error
	switch {
	case errors.Is(err, orders.ErrInvalidInput):
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
	case errors.As(err, &gatewayErr):
		helpers.RespondWithError(c, http.StatusBadGateway, "Failed to initiate payment session.")
	case errors.Is(err, orders.ErrUnavailable):
		helpers.RespondWithError(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.")
	default:
		h.log.Error("initiate order", zap.Error(err))
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create order.")
	}
}

func (h *OrderHandler) PaymentSuccess(c *gin.Context) {
	h.handleCallback(c, orders.OutcomeSuccess)
}

func (h *OrderHandler) PaymentFail(c *gin.Context) {
	h.handleCallback(c, orders.OutcomeFail)
}

func (h *OrderHandler) PaymentCancel(c *gin.Context) {
	h.handleCallback(c, orders.OutcomeCancel)
}

func (h *OrderHandler) handleCallback(c *gin.Context, outcome orders.Outcome) {
	trnID := c.Param("trnID")
	resolution := h.engine.HandleOutcome(c.Request.Context(), trnID, outcome)
	h.renderRedirect(c, resolution, trnID)
}

// renderRedirect answers 200 regardless of business outcome. The gateway
// drives the user's browser here with a top-level redirect, so the business
// result travels only in the query string of the page we bounce it to.
func (h *OrderHandler) renderRedirect(c *gin.Context, resolution orders.Resolution, trnID string) {
	target := fmt.Sprintf("%s/gym/account?status=%s&trnID=%s", h.frontendURL, resolution, url.QueryEscape(trnID))
	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <title>Payment Processing</title>
  <script>
    window.location.href = %q;
  </script>
</head>
<body>
  <p>Redirecting...</p>
</body>
</html>
`, target)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

type CaptureOrderRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

func (h *OrderHandler) CaptureOrder(c *gin.Context) {
	var req CaptureOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid order ID.")
		return
	}

	order, err := h.engine.Capture(c.Request.Context(), orderID)
	if err != nil {
		h.respondQueryError(c, err, "Order not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order confirmed",
		"data":    order,
	})
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID := c.Param("userId")

	list, err := h.queries.ListByUser(c.Request.Context(), h.engine.Domain().Name, userID)
	if err != nil {
		h.respondQueryError(c, err, "No orders found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    list,
	})
}

func (h *OrderHandler) OrderDetails(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid order ID.")
		return
	}

	order, err := h.queries.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondQueryError(c, err, "Order not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

func (h *OrderHandler) respondQueryError(c *gin.Context, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, orders.ErrNotFound):
		helpers.RespondWithError(c, http.StatusNotFound, notFoundMessage)
	case errors.Is(err, orders.ErrUnavailable):
		helpers.RespondWithError(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.")
	default:
		h.log.Error("order query", zap.Error(err))
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error happened.")
	}
}
