package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"fabricstore/internal/domain"
)

const requestIDHeader = "X-Request-ID"

// StatusError is returned for non-2xx responses other than 404.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Client talks to the order backend. The zero timeout on the default
// http.Client is intentional: order submission relies on platform defaults.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// SendBeacon posts a submission to the fire-and-forget intake. The response
// body is discarded; only transport failures and non-2xx codes are reported.
func (c *Client) SendBeacon(ctx context.Context, sub domain.OrderSubmission) error {
	body, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders/beacon", bytes.NewReader(body))
	if err != nil {
		return err
	}
	// Browsers send beacons as text/plain to avoid CORS preflight.
	req.Header.Set("Content-Type", "text/plain;charset=UTF-8")
	if sub.RequestID != "" {
		req.Header.Set(requestIDHeader, sub.RequestID)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode/100 != 2 {
		return &StatusError{Method: http.MethodPost, Path: "/orders/beacon", Code: resp.StatusCode}
	}
	return nil
}

// CreateOrder is the conventional JSON submission used when a beacon fails.
// It repeats the beacon's request id, so the backend returns the order the
// beacon already created instead of recording a second one.
func (c *Client) CreateOrder(ctx context.Context, sub domain.OrderSubmission) (*domain.Order, error) {
	var out domain.Order
	hdr := http.Header{}
	if sub.RequestID != "" {
		hdr.Set(requestIDHeader, sub.RequestID)
	}
	if err := c.do(ctx, http.MethodPost, "/orders", hdr, sub, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TrackByID fetches tracking info for an order id.
func (c *Client) TrackByID(ctx context.Context, id string) (*domain.TrackingInfo, error) {
	var out domain.TrackingInfo
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id)+"/track", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TrackByNumber fetches tracking info for an unauthenticated (order number, phone) pair.
func (c *Client) TrackByNumber(ctx context.Context, orderNumber, phone string) (*domain.TrackingInfo, error) {
	q := url.Values{}
	q.Set("orderNumber", orderNumber)
	q.Set("phone", phone)
	var out domain.TrackingInfo
	if err := c.do(ctx, http.MethodGet, "/tracking?"+q.Encode(), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMyOrders returns the orders of the customer identified by token.
func (c *Client) ListMyOrders(ctx context.Context, token string) ([]domain.Order, error) {
	var out struct {
		Results []domain.Order `json:"results"`
	}
	if err := c.do(ctx, http.MethodGet, "/me/orders", bearer(token), nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func bearer(token string) http.Header {
	hdr := http.Header{}
	if token != "" {
		hdr.Set("Authorization", "Bearer "+token)
	}
	return hdr
}

func (c *Client) do(ctx context.Context, method, path string, hdr http.Header, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header[k] = v
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
