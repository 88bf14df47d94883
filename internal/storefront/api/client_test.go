package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"fabricstore/internal/domain"
)

func TestSendBeaconPostsSubmission(t *testing.T) {
	var got domain.OrderSubmission
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders/beacon" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := New(srv.URL+"/", nil)
	sub := domain.OrderSubmission{
		CustomerName:   "Aline",
		CustomerPhone:  "0788123456",
		Channel:        domain.OrderChannelWhatsApp,
		Subtotal:       30000,
		DeliveryOption: domain.DeliveryKigali,
		DeliveryFee:    2000,
		Items:          []domain.OrderItem{{ProductID: "1", Quantity: 2, UnitPrice: 15000}},
	}
	if err := c.SendBeacon(context.Background(), sub); err != nil {
		t.Fatalf("SendBeacon: %v", err)
	}
	if contentType != "text/plain;charset=UTF-8" {
		t.Fatalf("unexpected content type %q", contentType)
	}
	if got.CustomerPhone != "0788123456" || len(got.Items) != 1 || got.Items[0].UnitPrice != 15000 {
		t.Fatalf("unexpected submission %+v", got)
	}
}

func TestSendBeaconReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := New(srv.URL, nil).SendBeacon(context.Background(), domain.OrderSubmission{})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestTrackByIDNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := New(srv.URL, nil).TrackByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTrackByNumberSendsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tracking" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("orderNumber") != "FAB-250101-0001" || r.URL.Query().Get("phone") != "+250 788" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"SHIPPED","orderNumber":"FAB-250101-0001","trackingNumber":"TRK1"}`))
	}))
	defer srv.Close()

	info, err := New(srv.URL, nil).TrackByNumber(context.Background(), "FAB-250101-0001", "+250 788")
	if err != nil {
		t.Fatalf("TrackByNumber: %v", err)
	}
	if info.Status != domain.StatusShipped || info.TrackingNumber != "TRK1" {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestListMyOrdersSendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid token"}`))
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"id":"o1","orderNumber":"FAB-1","status":"PENDING","items":[]}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	orders, err := c.ListMyOrders(context.Background(), "tok")
	if err != nil {
		t.Fatalf("ListMyOrders: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != "o1" {
		t.Fatalf("unexpected orders %+v", orders)
	}

	_, err = c.ListMyOrders(context.Background(), "bad")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestBeaconAndCreateOrderShareRequestID(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.Path+" "+r.Header.Get("X-Request-ID"))
		if r.URL.Path == "/orders" {
			_ = json.NewEncoder(w).Encode(domain.Order{ID: "o-1", OrderNumber: "FAB-1"})
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	sub := domain.OrderSubmission{RequestID: "req-42", CustomerPhone: "0788123456"}
	if err := c.SendBeacon(context.Background(), sub); err != nil {
		t.Fatalf("SendBeacon: %v", err)
	}
	if _, err := c.CreateOrder(context.Background(), sub); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if len(seen) != 2 || seen[0] != "/orders/beacon req-42" || seen[1] != "/orders req-42" {
		t.Fatalf("unexpected requests %v", seen)
	}
}
