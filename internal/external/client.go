package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var (
	ErrNotFound = errors.New("backend: not found")
	ErrConflict = errors.New("backend: conflict")
	// transport failures and 5xx
	ErrUnavailable = errors.New("backend unavailable")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusConflict:
		return ErrConflict
	case e.StatusCode >= 500:
		return ErrUnavailable
	}
	return nil
}

// Client talks to the facility backend REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new backend API client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) ListServices(ctx context.Context) ([]ServiceItem, error) {
	var out []ServiceItem
	if err := c.do(ctx, http.MethodGet, "/api/customer/services", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchVouchers returns vouchers matching a code or free-text query.
func (c *Client) SearchVouchers(ctx context.Context, query string) ([]Voucher, error) {
	var out []Voucher
	path := "/api/customer/vouchers/search?q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSlotPrice(ctx context.Context, courtID string, start, end time.Time) (*SlotPrice, error) {
	q := url.Values{}
	q.Set("start", start.Format(time.RFC3339))
	q.Set("end", end.Format(time.RFC3339))
	path := fmt.Sprintf("/api/customer/courts/%s/price?%s", url.PathEscape(courtID), q.Encode())

	var out SlotPrice
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateBooking(ctx context.Context, req *BookingRequest) (*BookingInvoice, error) {
	var out BookingInvoice
	if err := c.do(ctx, http.MethodPost, "/api/customer/bookings", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PayInvoice(ctx context.Context, invoiceID string, req *PaymentRequest) (*PaymentResult, error) {
	var out PaymentResult
	path := fmt.Sprintf("/api/customer/invoices/%s/payments", url.PathEscape(invoiceID))
	if err := c.do(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelBooking(ctx context.Context, bookingID string) error {
	path := fmt.Sprintf("/api/admin/bookings/%s/cancel", url.PathEscape(bookingID))
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := c.makeRequest(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(msg))}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) makeRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.httpClient.Do(req)
}
