package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nayeemx/gymstore/internal/gateway"
	"github.com/nayeemx/gymstore/internal/models"
	"github.com/nayeemx/gymstore/internal/orders"
)

const frontendURL = "https://shop.example"

type fakeGateway struct {
	err error
}

func (g *fakeGateway) CreateSession(_ context.Context, req gateway.SessionRequest) (*gateway.Session, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &gateway.Session{CheckoutURL: "https://gateway.example/checkout/" + req.TransactionID}, nil
}

type fixture struct {
	router *gin.Engine
	store  *orders.MemoryStore
}

func newFixture(t *testing.T, gw orders.SessionCreator) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := orders.NewMemoryStore()
	engine := orders.NewEngine(orders.EngineConfig{
		Domain:       orders.DomainCourse,
		Store:        store,
		Gateway:      gw,
		CallbackBase: "https://api.example",
	})
	h := NewOrderHandler(engine, orders.NewQueries(store), frontendURL, nil)

	router := gin.New()
	g := router.Group("/api/gym/course/order")
	g.POST("/payment", h.CreateOrder)
	g.GET("/payment/success/:trnID", h.PaymentSuccess)
	g.GET("/payment/fail/:trnID", h.PaymentFail)
	g.GET("/payment/cancel/:trnID", h.PaymentCancel)
	g.POST("/captureOrder", h.CaptureOrder)
	g.GET("/list/:userId", h.ListOrders)
	g.GET("/details/:id", h.OrderDetails)

	return &fixture{router: router, store: store}
}

func (f *fixture) do(t *testing.T, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func orderPayload() []byte {
	return []byte(`{
		"userId": "u1",
		"product": {"id": "c-1", "title": "Strength Basics", "price": 50000},
		"shippingInfo": {"name": "Rahim", "email": "rahim@example.com", "city": "Dhaka"},
		"totalAmount": 50000
	}`)
}

type createResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	OrderID string `json:"orderId"`
}

func (f *fixture) createOrder(t *testing.T) createResponse {
	t.Helper()

	w := f.do(t, http.MethodPost, "/api/gym/course/order/payment", orderPayload())
	if w.Code != http.StatusCreated {
		t.Fatalf("create order: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp createResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if !resp.Success || resp.URL == "" || resp.OrderID == "" {
		t.Fatalf("incomplete create response: %+v", resp)
	}
	return resp
}

func (f *fixture) transactionID(t *testing.T, userID string) string {
	t.Helper()

	list, err := f.store.ListByUser(context.Background(), "course", userID)
	if err != nil || len(list) == 0 {
		t.Fatalf("no orders for %s: %v", userID, err)
	}
	return list[0].PaymentID
}

func TestCreateOrderAndSuccessCallback(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeGateway{})
	f.createOrder(t)
	trnID := f.transactionID(t, "u1")

	w := f.do(t, http.MethodGet, "/api/gym/course/order/payment/success/"+trnID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("callback must answer 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected HTML response, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), "status=success") {
		t.Fatalf("redirect should carry status=success: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "trnID="+trnID) {
		t.Fatal("redirect should carry the transaction id")
	}

	order, err := f.store.FindByPaymentID(context.Background(), trnID)
	if err != nil {
		t.Fatalf("FindByPaymentID: %v", err)
	}
	if order.PaymentStatus != models.PaymentPaid || order.OrderStatus != models.OrderConfirmed {
		t.Fatalf("expected Paid/Confirmed, got %s/%s", order.PaymentStatus, order.OrderStatus)
	}
}

func TestFailCallback(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeGateway{})
	f.createOrder(t)
	trnID := f.transactionID(t, "u1")

	w := f.do(t, http.MethodGet, "/api/gym/course/order/payment/fail/"+trnID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("callback must answer 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "status=failed") {
		t.Fatalf("redirect should carry status=failed: %s", w.Body.String())
	}

	order, _ := f.store.FindByPaymentID(context.Background(), trnID)
	if order.PaymentStatus != models.PaymentFailed {
		t.Fatalf("expected Failed, got %s", order.PaymentStatus)
	}
	if order.OrderStatus != models.OrderPending {
		t.Fatalf("fail callback must leave orderStatus, got %s", order.OrderStatus)
	}
}

func TestCancelCallback(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeGateway{})
	f.createOrder(t)
	trnID := f.transactionID(t, "u1")

	w := f.do(t, http.MethodGet, "/api/gym/course/order/payment/cancel/"+trnID, nil)
	if !strings.Contains(w.Body.String(), "status=failed") {
		t.Fatalf("cancel should redirect with status=failed: %s", w.Body.String())
	}

	order, _ := f.store.FindByPaymentID(context.Background(), trnID)
	if order.PaymentStatus != models.PaymentFailed || order.OrderStatus != models.OrderCancelled {
		t.Fatalf("expected Failed/Cancelled, got %s/%s", order.PaymentStatus, order.OrderStatus)
	}
}

func TestUnknownTransactionCallback(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeGateway{})

	w := f.do(t, http.MethodGet, "/api/gym/course/order/payment/success/deadbeef", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unknown transaction must still answer 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "status=error") {
		t.Fatalf("redirect should carry status=error: %s", w.Body.String())
	}
}

func TestCreateOrderValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeGateway{})

	w := f.do(t, http.MethodPost, "/api/gym/course/order/payment", []byte(`{"userId":"u1"}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCreateOrderGatewayDown(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeGateway{err: &gateway.Error{Reason: "session declined"}})

	w := f.do(t, http.MethodPost, "/api/gym/course/order/payment", orderPayload())
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Success {
		t.Fatal("expected success=false")
	}

	if list, _ := f.store.ListByUser(context.Background(), "course", "u1"); len(list) != 0 {
		t.Fatalf("no order may persist after a gateway failure, got %d", len(list))
	}
}

func TestCaptureOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeGateway{})
	created := f.createOrder(t)

	w := f.do(t, http.MethodPost, "/api/gym/course/order/captureOrder",
		[]byte(`{"orderId":"`+created.OrderID+`"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	order, _ := f.store.FindByPaymentID(context.Background(), f.transactionID(t, "u1"))
	if order.OrderStatus != models.OrderConfirmed {
		t.Fatalf("expected Confirmed, got %s", order.OrderStatus)
	}
	if order.PaymentStatus != models.PaymentPending {
		t.Fatalf("capture must not touch paymentStatus, got %s", order.PaymentStatus)
	}

	w = f.do(t, http.MethodPost, "/api/gym/course/order/captureOrder",
		[]byte(`{"orderId":"00000000-0000-0000-0000-000000000000"}`))
	if w.Code != http.StatusBadRequest && w.Code != http.StatusNotFound {
		t.Fatalf("expected rejection for nil order id, got %d", w.Code)
	}

	w = f.do(t, http.MethodPost, "/api/gym/course/order/captureOrder",
		[]byte(`{"orderId":"3f9e8a34-29cf-4a19-9d6b-0f9a6c1d2e3f"}`))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown order, got %d", w.Code)
	}
}

func TestListOrders(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeGateway{})
	f.createOrder(t)

	w := f.do(t, http.MethodGet, "/api/gym/course/order/list/u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Success bool           `json:"success"`
		Data    []models.Order `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if !resp.Success || len(resp.Data) != 1 {
		t.Fatalf("expected one order, got %+v", resp)
	}

	w = f.do(t, http.MethodGet, "/api/gym/course/order/list/nonexistent", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for user without orders, got %d", w.Code)
	}
}

func TestOrderDetails(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeGateway{})
	created := f.createOrder(t)

	w := f.do(t, http.MethodGet, "/api/gym/course/order/details/"+created.OrderID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = f.do(t, http.MethodGet, "/api/gym/course/order/details/not-a-uuid", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", w.Code)
	}

	w = f.do(t, http.MethodGet, "/api/gym/course/order/details/3f9e8a34-29cf-4a19-9d6b-0f9a6c1d2e3f", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", w.Code)
	}
}
