package adapter

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"merchant-orders/internal/core/config"
	"merchant-orders/internal/core/proxy"
	"merchant-orders/internal/features/orders/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRazorpayAdapter(url string) *RazorpayAdapter {
	cfg := config.RazorpayConfig{BaseURL: url, KeyID: "rzp_test_key", KeySecret: "rzp_secret"}
	return NewRazorpayAdapter(cfg, proxy.Settings{}, 5*time.Second)
}

const razorpayListBody = `{
	"entity": "collection",
	"count": 2,
	"items": [
		{
			"id": "order_A1",
			"entity": "order",
			"amount": 104850,
			"amount_paid": 104850,
			"currency": "INR",
			"receipt": "rcpt_1",
			"status": "paid",
			"created_at": 1760860800,
			"notes": {
				"customer_name": "Asha Rao",
				"customer_email": "asha@example.com",
				"customer_phone": "9876543210",
				"items": "[{\"id\":\"p-1\",\"name\":\"Kurta\",\"quantity\":2,\"price\":499.5},{\"name\":\"Dupatta\",\"sku\":\"DUP-1\",\"quantity\":\"1\",\"price\":\"49.50\"}]",
				"shipping_address": "{\"firstName\":\"Asha\",\"address\":\"12 MG Road\",\"city\":\"Pune\",\"state\":\"MH\",\"zipCode\":411001,\"country\":\"India\"}",
				"billing_address": "{}",
				"created_via": "merchant_dashboard"
			}
		},
		{
			"id": "order_B2",
			"amount": 50000,
			"status": "attempted",
			"created_at": 1760774400,
			"notes": []
		}
	]
}`

// TestRazorpayAdapter_ListOrders verifies basic auth, skip/count paging and notes decoding.
func TestRazorpayAdapter_ListOrders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("count"))
		assert.Equal(t, "50", r.URL.Query().Get("skip"))
		_, present := r.URL.Query()["status"]
		assert.False(t, present)

		expectedAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("rzp_test_key:rzp_secret"))
		assert.Equal(t, expectedAuth, r.Header.Get("Authorization"))

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(razorpayListBody))
	}))
	defer server.Close()

	page, err := newTestRazorpayAdapter(server.URL).ListOrders(context.Background(), domain.ListQuery{Page: 2, PageSize: 50, Status: "shipped"})

	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalCount)
	assert.Equal(t, 2, page.ProviderPage)
	require.Len(t, page.Orders, 2)

	paid := page.Orders[0]
	assert.Equal(t, "order_A1", paid.ID)
	assert.Equal(t, domain.SourceRazorpay, paid.Source)
	assert.Equal(t, domain.OrderStatusProcessing, paid.Status)
	assert.Equal(t, domain.PaymentStatusPaidOnline, paid.PaymentStatus)
	assert.Equal(t, 1048.5, paid.Total)
	assert.Equal(t, 1048.5, paid.SubTotal)
	assert.Equal(t, "INR", paid.Currency)
	assert.Equal(t, domain.Customer{Name: "Asha Rao", Email: "asha@example.com", Phone: "9876543210"}, paid.Customer)
	require.Len(t, paid.Items, 2)
	assert.Equal(t, domain.OrderItem{Name: "Kurta", SKU: "p-1", Quantity: 2, UnitPrice: 499.5, LineTotal: 999}, paid.Items[0])
	assert.Equal(t, "DUP-1", paid.Items[1].SKU)
	assert.Equal(t, 49.5, paid.Items[1].LineTotal)
	assert.Equal(t, "12 MG Road", paid.Addresses.Shipping.Line1)
	assert.Equal(t, "411001", paid.Addresses.Shipping.PostalCode)
	assert.Equal(t, domain.Address{}, paid.Addresses.Billing)
	assert.True(t, time.Unix(1760860800, 0).Equal(paid.CreatedAt))

	attempted := page.Orders[1]
	assert.Equal(t, domain.OrderStatusNew, attempted.Status)
	assert.Equal(t, domain.PaymentStatusFailed, attempted.PaymentStatus)
	assert.Equal(t, 500.0, attempted.Total)
	assert.NotNil(t, attempted.Items)
	assert.Empty(t, attempted.Items)
	assert.Equal(t, domain.Customer{}, attempted.Customer)
}

// TestRazorpayAdapter_NotesPlaceholders verifies N/A placeholders are treated as missing.
func TestRazorpayAdapter_NotesPlaceholders(t *testing.T) {
	order := mapRazorpayOrder(razorpayOrder{
		ID:     "order_C3",
		Status: "created",
		Notes:  []byte(`{"customer_name":"N/A","customer_email":"N/A","billing_address":"{\"firstName\":\"Meera\",\"lastName\":\"Iyer\",\"email\":\"meera@example.com\",\"phone\":\"9000000000\"}"}`),
	})

	assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, "Meera Iyer", order.Customer.Name)
	assert.Equal(t, "meera@example.com", order.Customer.Email)
	assert.Equal(t, "9000000000", order.Customer.Phone)
	assert.True(t, order.CreatedAt.IsZero())
}

// TestRazorpayAdapter_GetOrder verifies the detail view and its raw fields.
func TestRazorpayAdapter_GetOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders/order_A1", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id": "order_A1", "amount": 2000, "status": "paid", "receipt": "rcpt_1", "created_at": 1760860800, "notes": {}}`))
	}))
	defer server.Close()

	order, err := newTestRazorpayAdapter(server.URL).GetOrder(context.Background(), "order_A1")

	require.NoError(t, err)
	assert.Equal(t, 20.0, order.Total)
	assert.Equal(t, "rcpt_1", order.Raw["receipt"])
}

// TestRazorpayAdapter_ListOrders_Unauthorized verifies rejected keys surface as provider errors.
func TestRazorpayAdapter_ListOrders_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"Authentication failed"}}`))
	}))
	defer server.Close()

	_, err := newTestRazorpayAdapter(server.URL).ListOrders(context.Background(), domain.ListQuery{Page: 1, PageSize: 10})

	var reqErr *domain.ProviderRequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, "razorpay", reqErr.Provider)
	assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
	assert.Contains(t, reqErr.Body, "Authentication failed")
}

// TestRazorpayAdapter_HealthCheck verifies the health check lists a single order.
func TestRazorpayAdapter_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("count"))
		assert.Equal(t, "0", r.URL.Query().Get("skip"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"entity":"collection","count":0,"items":[]}`))
	}))
	defer server.Close()

	assert.NoError(t, newTestRazorpayAdapter(server.URL).HealthCheck(context.Background()))
}
