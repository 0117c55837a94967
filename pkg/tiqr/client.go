// Package tiqr talks to the TiQR booking/payment API. The provider mode is
// chosen once at startup: live traffic goes through the HTTP client, mock
// mode fabricates bookings that settle through the same reconciliation path.
package tiqr

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prakida/festival-backend/config"
)

type Mode string

const (
	ModeLive Mode = "live"
	ModeMock Mode = "mock"
)

// BookingRequest is the provider payload for creating a payment session.
type BookingRequest struct {
	EventID     int                      `json:"event_id,omitempty"`
	Amount      float64                  `json:"amount"`
	Customer    map[string]interface{}   `json:"customer,omitempty"`
	Items       []map[string]interface{} `json:"items,omitempty"`
	CallbackURL string                   `json:"callback_url,omitempty"`
	Reference   string                   `json:"reference,omitempty"`
}

type BookingResponse struct {
	BookingUID string `json:"booking_uid"`
	PaymentURL string `json:"payment_url"`
	Status     string `json:"status"`
}

type Order struct {
	Status     string                 `json:"status"`
	PaymentURL string                 `json:"paymentUrl"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Provider is the payment/booking capability injected into the services, so
// tests can substitute a deterministic fake without process-wide state.
type Provider interface {
	CreateBooking(ctx context.Context, req *BookingRequest) (*BookingResponse, error)
	GetOrder(ctx context.Context, id string) (*Order, error)
	Mode() Mode
}

// New selects the provider implementation from config. Missing session id
// forces mock mode, matching how the original site behaved without live
// credentials.
func New(cfg *config.TiqrConfig, appBaseURL string) Provider {
	if Mode(cfg.Mode) == ModeLive && cfg.SessionID != "" {
		return newLiveClient(cfg)
	}
	return NewMockClient(appBaseURL)
}

type liveClient struct {
	http        *resty.Client
	sessionID   string
	callbackURL string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func newLiveClient(cfg *config.TiqrConfig) *liveClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &liveClient{
		http:        client,
		sessionID:   cfg.SessionID,
		callbackURL: cfg.CallbackURL,
	}
}

func (c *liveClient) Mode() Mode {
	return ModeLive
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// accessToken exchanges the static session id for a temporary token and
// caches it in process. The provider issues ~30 day tokens; 29 days leaves a
// safe margin.
func (c *liveClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	var tr tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"session_id": c.sessionID}).
		SetResult(&tr).
		Post("/participant/booking/custom-token/")
	if err != nil {
		return "", fmt.Errorf("tiqr token request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("tiqr token request failed: %s", resp.Status())
	}

	c.token = tr.AccessToken
	c.tokenExpiry = time.Now().Add(29 * 24 * time.Hour)
	return c.token, nil
}

func (c *liveClient) CreateBooking(ctx context.Context, req *BookingRequest) (*BookingResponse, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	if req.CallbackURL == "" {
		req.CallbackURL = c.callbackURL
	}

	var out BookingResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(req).
		SetResult(&out).
		Post("/participant/booking/")
	if err != nil {
		return nil, fmt.Errorf("tiqr booking failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("tiqr booking failed: %s", resp.Status())
	}

	return &out, nil
}

func (c *liveClient) GetOrder(ctx context.Context, id string) (*Order, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var out Order
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&out).
		Get("/participant/booking/order/" + id)
	if err != nil {
		return nil, fmt.Errorf("tiqr order lookup failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("tiqr order lookup failed: %s", resp.Status())
	}

	return &out, nil
}
