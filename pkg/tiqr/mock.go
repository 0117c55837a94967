package tiqr

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockClient fabricates bookings for development. The payment url points back
// at the dashboard with ?mock_payment_success=true&uid=… so the mock
// settlement path exercises the same reconciliation code as the webhook.
type MockClient struct {
	appBaseURL string

	mu     sync.Mutex
	orders map[string]string
}

func NewMockClient(appBaseURL string) *MockClient {
	return &MockClient{
		appBaseURL: appBaseURL,
		orders:     make(map[string]string),
	}
}

func (c *MockClient) Mode() Mode {
	return ModeMock
}

func (c *MockClient) CreateBooking(ctx context.Context, req *BookingRequest) (*BookingResponse, error) {
	uid := fmt.Sprintf("mock_uid_%d", time.Now().UnixNano())

	c.mu.Lock()
	c.orders[uid] = "pending"
	c.mu.Unlock()

	return &BookingResponse{
		BookingUID: uid,
		PaymentURL: fmt.Sprintf("%s/dashboard?mock_payment_success=true&uid=%s", c.appBaseURL, uid),
		Status:     "pending",
	}, nil
}

func (c *MockClient) GetOrder(ctx context.Context, id string) (*Order, error) {
	c.mu.Lock()
	status, ok := c.orders[id]
	c.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("mock order not found: %s", id)
	}
	return &Order{Status: status}, nil
}

// SettleOrder flips a mock order's status; used by tests and by the mock
// payment redirect flow.
func (c *MockClient) SettleOrder(id, status string) {
	c.mu.Lock()
	c.orders[id] = status
	c.mu.Unlock()
}
