// Package gateway wraps the hosted-checkout session API of the external
// payment processor. The processor renders its own payment page; we only
// create a session and hand the browser its URL. The definitive outcome
// arrives later as a top-level browser redirect to our callback routes.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const sessionPath = "/gwprocess/v4/api.php"

type Config struct {
	BaseURL       string
	StoreID       string
	StorePassword string
	Timeout       time.Duration
}

type Client struct {
	httpClient *http.Client
	cfg        Config
	log        *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		log:        log,
	}
}

// SessionRequest carries everything the processor needs to host a checkout
// page for one transaction. Amount is in minor units.
type SessionRequest struct {
	TransactionID string
	Amount        int64
	Currency      string

	SuccessURL string
	FailURL    string
	CancelURL  string

	ProductName     string
	ProductCategory string
	ProductProfile  string

	CustomerName     string
	CustomerEmail    string
	CustomerPhone    string
	CustomerAddress  string
	CustomerCity     string
	CustomerPostcode string
}

type Session struct {
	CheckoutURL string
	SessionKey  string
}

// Error is returned for every failure mode of session creation: transport
// errors, non-2xx responses and sessions the processor itself declined.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment gateway: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("payment gateway: %s", e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

type sessionResponse struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

func (c *Client) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	form := url.Values{}
	form.Set("store_id", c.cfg.StoreID)
	form.Set("store_passwd", c.cfg.StorePassword)
	form.Set("tran_id", req.TransactionID)
	form.Set("total_amount", formatAmount(req.Amount))
	form.Set("currency", req.Currency)
	form.Set("success_url", req.SuccessURL)
	form.Set("fail_url", req.FailURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("shipping_method", "Courier")
	form.Set("product_name", req.ProductName)
	form.Set("product_category", req.ProductCategory)
	form.Set("product_profile", req.ProductProfile)
	form.Set("cus_name", req.CustomerName)
	form.Set("cus_email", req.CustomerEmail)
	form.Set("cus_phone", req.CustomerPhone)
	form.Set("cus_add1", req.CustomerAddress)
	form.Set("cus_city", req.CustomerCity)
	form.Set("cus_postcode", req.CustomerPostcode)
	form.Set("cus_country", "Bangladesh")
	form.Set("ship_name", req.CustomerName)
	form.Set("ship_add1", req.CustomerAddress)
	form.Set("ship_city", req.CustomerCity)
	form.Set("ship_postcode", req.CustomerPostcode)
	form.Set("ship_country", "Bangladesh")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+sessionPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &Error{Reason: "build session request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &Error{Reason: "send session request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Reason: "read session response", Err: err}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &Error{Reason: fmt.Sprintf("session request rejected with status %d", resp.StatusCode)}
	}

	var sessionResp sessionResponse
	if err := json.Unmarshal(body, &sessionResp); err != nil {
		return nil, &Error{Reason: "parse session response", Err: err}
	}

	if !strings.EqualFold(sessionResp.Status, "SUCCESS") {
		reason := sessionResp.FailedReason
		if reason == "" {
			reason = "session declined"
		}
		return nil, &Error{Reason: reason}
	}
	if sessionResp.GatewayPageURL == "" {
		return nil, &Error{Reason: "session response missing checkout url"}
	}

	c.log.Info("gateway session created",
		zap.String("tran_id", req.TransactionID),
		zap.String("sessionkey", sessionResp.SessionKey),
	)

	return &Session{
		CheckoutURL: sessionResp.GatewayPageURL,
		SessionKey:  sessionResp.SessionKey,
	}, nil
}

// formatAmount renders minor units as the "123.45" decimal string the
// processor expects.
func formatAmount(minorUnits int64) string {
	return decimal.NewFromInt(minorUnits).Div(decimal.NewFromInt(100)).StringFixed(2)
}
