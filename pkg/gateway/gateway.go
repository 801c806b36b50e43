package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/gigmarket/internal/config"
	"github.com/GlebRadaev/gigmarket/internal/metrics"
	"github.com/GlebRadaev/gigmarket/pkg/clients"
)

const (
	maxRetries    = 3
	retryInterval = time.Second * 1
)

const (
	StatusRequiresPaymentMethod = "requires_payment_method"
	StatusRequiresConfirmation  = "requires_confirmation"
	StatusRequiresAction        = "requires_action"
	StatusProcessing            = "processing"
	StatusSucceeded             = "succeeded"
	StatusCanceled              = "canceled"
)

var (
	ErrGateway             = errors.New("payment gateway error")
	ErrPaymentNotSucceeded = errors.New("payment did not succeed")
)

// Error is a non-retryable answer from the provider.
type Error struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway %s: %d %s: %s", e.Op, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("gateway %s: %d: %s", e.Op, e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error {
	return ErrGateway
}

type IntentRequest struct {
	Amount         decimal.Decimal
	Currency       string
	ContractID     int
	MilestoneID    int
	FreelancerID   int
	IdempotencyKey string
}

type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       decimal.Decimal
	Currency     string
	LastError    string
}

func (i *Intent) Succeeded() bool {
	return i.Status == StatusSucceeded
}

type ReleaseRequest struct {
	IntentID       string
	FreelancerID   int
	Amount         decimal.Decimal
	IdempotencyKey string
}

type Transfer struct {
	ID     string
	Status string
	Amount decimal.Decimal
}

type RefundRequest struct {
	IntentID       string
	Amount         decimal.Decimal
	IdempotencyKey string
}

type Refund struct {
	ID     string
	Status string
	Amount decimal.Decimal
}

type intentPayload struct {
	ID           string            `json:"id,omitempty"`
	ClientSecret string            `json:"client_secret,omitempty"`
	Status       string            `json:"status,omitempty"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastError    *struct {
		Message string `json:"message"`
	} `json:"last_payment_error,omitempty"`
}

type confirmPayload struct {
	PaymentMethod string `json:"payment_method"`
}

type transferPayload struct {
	ID                string `json:"id,omitempty"`
	Status            string `json:"status,omitempty"`
	Amount            int64  `json:"amount"`
	Currency          string `json:"currency"`
	Destination       string `json:"destination"`
	SourceTransaction string `json:"source_transaction"`
}

type refundPayload struct {
	ID            string `json:"id,omitempty"`
	Status        string `json:"status,omitempty"`
	PaymentIntent string `json:"payment_intent"`
	Amount        int64  `json:"amount"`
}

type errorPayload struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type Client struct {
	url           string
	secret        string
	currency      string
	client        clients.HTTPClientI
	retryInterval time.Duration
}

func New(cfg *config.Config, client clients.HTTPClientI) *Client {
	return &Client{
		url:           cfg.GatewayAddress,
		secret:        cfg.GatewaySecret,
		currency:      cfg.Currency,
		client:        client,
		retryInterval: retryInterval,
	}
}

func (c *Client) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	currency := req.Currency
	if currency == "" {
		currency = c.currency
	}
	body := intentPayload{
		Amount:   toMinor(req.Amount),
		Currency: currency,
		Metadata: map[string]string{
			"contract_id":   strconv.Itoa(req.ContractID),
			"milestone_id":  strconv.Itoa(req.MilestoneID),
			"freelancer_id": strconv.Itoa(req.FreelancerID),
		},
	}
	var resp intentPayload
	if err := c.do(ctx, "create_intent", http.MethodPost, "/v1/payment_intents", req.IdempotencyKey, body, &resp); err != nil {
		return nil, err
	}
	return resp.toIntent(), nil
}

func (c *Client) ConfirmPayment(ctx context.Context, intentID, paymentMethod string) (*Intent, error) {
	var resp intentPayload
	path := "/v1/payment_intents/" + intentID + "/confirm"
	if err := c.do(ctx, "confirm_intent", http.MethodPost, path, "confirm:"+intentID, confirmPayload{PaymentMethod: paymentMethod}, &resp); err != nil {
		return nil, err
	}
	return resp.toIntent(), nil
}

func (c *Client) RetrieveIntent(ctx context.Context, intentID string) (*Intent, error) {
	var resp intentPayload
	if err := c.do(ctx, "retrieve_intent", http.MethodGet, "/v1/payment_intents/"+intentID, "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.toIntent(), nil
}

func (c *Client) CancelPaymentIntent(ctx context.Context, intentID string) error {
	path := "/v1/payment_intents/" + intentID + "/cancel"
	return c.do(ctx, "cancel_intent", http.MethodPost, path, "cancel:"+intentID, struct{}{}, nil)
}

func (c *Client) ReleaseFunds(ctx context.Context, req ReleaseRequest) (*Transfer, error) {
	body := transferPayload{
		Amount:            toMinor(req.Amount),
		Currency:          c.currency,
		Destination:       strconv.Itoa(req.FreelancerID),
		SourceTransaction: req.IntentID,
	}
	var resp transferPayload
	if err := c.do(ctx, "release_funds", http.MethodPost, "/v1/transfers", req.IdempotencyKey, body, &resp); err != nil {
		return nil, err
	}
	return &Transfer{ID: resp.ID, Status: resp.Status, Amount: fromMinor(resp.Amount)}, nil
}

// Refund returns a succeeded charge to the client. Cancelling only works on
// intents that have not been captured yet.
func (c *Client) Refund(ctx context.Context, req RefundRequest) (*Refund, error) {
	body := refundPayload{
		PaymentIntent: req.IntentID,
		Amount:        toMinor(req.Amount),
	}
	var resp refundPayload
	if err := c.do(ctx, "refund", http.MethodPost, "/v1/refunds", req.IdempotencyKey, body, &resp); err != nil {
		return nil, err
	}
	return &Refund{ID: resp.ID, Status: resp.Status, Amount: fromMinor(resp.Amount)}, nil
}

func (c *Client) do(ctx context.Context, op, method, path, idempotencyKey string, in, out any) error {
	url := c.url + path
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+c.secret)
	headers.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		headers.Set("Idempotency-Key", idempotencyKey)
	}

	var reqBody []byte
	if in != nil {
		var err error
		if reqBody, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
	}

	var err error
	var statusCode int
	var respBody []byte
	var respHeaders http.Header

	for attempt := 1; attempt <= maxRetries; attempt++ {
		start := time.Now()
		if method == http.MethodGet {
			statusCode, respBody, respHeaders, err = c.client.Get(ctx, url, headers)
		} else {
			statusCode, respBody, respHeaders, err = c.client.Post(ctx, url, headers, reqBody)
		}
		metrics.RecordGatewayCall(op, callStatus(statusCode, err), time.Since(start))

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if attempt < maxRetries {
				zap.L().Warn("Gateway call failed, retrying", zap.String("op", op), zap.Int("attempt", attempt), zap.Error(err))
				if err := c.sleep(ctx, c.retryInterval*time.Duration(attempt)); err != nil {
					return err
				}
				continue
			}
			return fmt.Errorf("%w: %s failed after %d retries: %w", ErrGateway, op, maxRetries, err)
		}

		switch {
		case statusCode == http.StatusTooManyRequests:
			if attempt < maxRetries {
				if err := c.sleep(ctx, c.rateLimitDelay(op, respHeaders, attempt)); err != nil {
					return err
				}
				continue
			}
			return decodeError(op, statusCode, respBody)
		case statusCode >= http.StatusInternalServerError:
			zap.L().Warn("Gateway unavailable, retrying", zap.String("op", op), zap.Int("status", statusCode), zap.Int("attempt", attempt))
			if attempt < maxRetries {
				if err := c.sleep(ctx, c.retryInterval*time.Duration(attempt)); err != nil {
					return err
				}
				continue
			}
			return decodeError(op, statusCode, respBody)
		case statusCode >= http.StatusBadRequest:
			return decodeError(op, statusCode, respBody)
		}

		if out == nil || len(respBody) == 0 {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("%w: failed to parse %s response: %w", ErrGateway, op, err)
		}
		return nil
	}
	return nil
}

func (c *Client) rateLimitDelay(op string, respHeaders http.Header, attempt int) time.Duration {
	retryAfter := c.retryInterval * time.Duration(attempt)
	if header := respHeaders.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			retryAfter = time.Duration(seconds) * time.Second
		}
	}
	zap.L().Warn(
		"Gateway rate limit detected, retrying",
		zap.String("op", op),
		zap.Int("attempt", attempt),
		zap.Duration("retryAfter", retryAfter),
	)
	return retryAfter
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func decodeError(op string, statusCode int, body []byte) error {
	gerr := &Error{Op: op, StatusCode: statusCode, Message: http.StatusText(statusCode)}
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		gerr.Code = payload.Error.Code
		gerr.Message = payload.Error.Message
	}
	return gerr
}

func callStatus(statusCode int, err error) string {
	if err != nil {
		return "error"
	}
	return strconv.Itoa(statusCode)
}

func (p *intentPayload) toIntent() *Intent {
	intent := &Intent{
		ID:           p.ID,
		ClientSecret: p.ClientSecret,
		Status:       p.Status,
		Amount:       fromMinor(p.Amount),
		Currency:     p.Currency,
	}
	if p.LastError != nil {
		intent.LastError = p.LastError.Message
	}
	return intent
}

func toMinor(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func fromMinor(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}
