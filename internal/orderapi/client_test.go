package orderapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/copiiworld/cajita-go/internal/orderapi"
)

func TestGetOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/orders/42/" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":42,"client_name":"Manuel","variant":"madera"}`))
	}))
	defer srv.Close()

	c := orderapi.NewClient(srv.URL)
	order, err := c.GetOrder(context.Background(), "42")
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if order.ID != 42 || order.ClientName != "Manuel" {
		t.Errorf("order = %+v", order)
	}
}

func TestSubmitImagesSendsMultipart(t *testing.T) {
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/orders/9/submit_images/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		gotContentType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := orderapi.NewClient(srv.URL)
	err := c.SubmitImages(context.Background(), "9",
		"multipart/form-data; boundary=xyz", strings.NewReader("--xyz--"))
	if err != nil {
		t.Fatalf("SubmitImages: %v", err)
	}
	if !strings.HasPrefix(gotContentType, "multipart/form-data") {
		t.Errorf("content type = %q", gotContentType)
	}
}

func TestSendOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/orders/5/send_order/" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"sent","deposit":12000}`))
	}))
	defer srv.Close()

	c := orderapi.NewClient(srv.URL)
	result, err := c.SendOrder(context.Background(), "5")
	if err != nil {
		t.Fatalf("SendOrder: %v", err)
	}
	if result.Deposit != 12000 {
		t.Errorf("deposit = %v, want 12000", result.Deposit)
	}
}

func TestServiceErrorBodySurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"faltan imagenes"}`))
	}))
	defer srv.Close()

	c := orderapi.NewClient(srv.URL)
	err := c.SubmitImages(context.Background(), "1",
		"multipart/form-data; boundary=x", strings.NewReader(""))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "faltan imagenes") {
		t.Errorf("error should carry the service message, got %q", err.Error())
	}
}
