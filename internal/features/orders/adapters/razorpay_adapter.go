package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"merchant-orders/internal/core/config"
	"merchant-orders/internal/core/httpclient"
	"merchant-orders/internal/core/proxy"
	"merchant-orders/internal/features/orders/domain"

	"github.com/shopspring/decimal"
)

// razorpayMaxPageSize is the largest count the orders endpoint accepts.
const razorpayMaxPageSize = 100

// RazorpayAdapter implements the OrderProvider interface using the Razorpay orders API.
// Customer, items and addresses are recovered from the notes written at checkout.
type RazorpayAdapter struct {
	api    providerClient
	config config.RazorpayConfig
}

// NewRazorpayAdapter creates a new instance of RazorpayAdapter.
func NewRazorpayAdapter(cfg config.RazorpayConfig, proxySettings proxy.Settings, timeout time.Duration, opts ...Option) *RazorpayAdapter {
	return &RazorpayAdapter{
		api:    newProviderClient(domain.SourceRazorpay, httpclient.NewClient(timeout, proxySettings), opts...),
		config: cfg,
	}
}

// Name implements ports.OrderProvider.
func (a *RazorpayAdapter) Name() domain.Source {
	return domain.SourceRazorpay
}

// MaxPageSize implements ports.OrderProvider.
func (a *RazorpayAdapter) MaxPageSize() int {
	return razorpayMaxPageSize
}

// ListOrders fetches one page of Razorpay orders. Razorpay has no status filter,
// so the status of the query is left to the aggregator.
func (a *RazorpayAdapter) ListOrders(ctx context.Context, query domain.ListQuery) (*domain.OrderPage, error) {
	params := url.Values{}
	params.Set("count", strconv.Itoa(query.PageSize))
	params.Set("skip", strconv.Itoa((query.Page-1)*query.PageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint("/v1/orders")+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.api.do(ctx, "list", req, a.authorize)
	if err != nil {
		return nil, err
	}

	var list razorpayListResponse
	if err := json.Unmarshal(resp.body, &list); err != nil {
		return nil, a.api.malformed("list", resp.body, err)
	}

	orders := make([]domain.NormalizedOrder, 0, len(list.Items))
	for _, o := range list.Items {
		orders = append(orders, mapRazorpayOrder(o))
	}

	total := len(orders)
	if list.Count != nil {
		total = list.Count.Int()
	}

	return &domain.OrderPage{
		Orders:       orders,
		TotalCount:   total,
		ProviderPage: query.Page,
	}, nil
}

// GetOrder fetches a single Razorpay order with its raw fields attached.
func (a *RazorpayAdapter) GetOrder(ctx context.Context, orderID string) (*domain.NormalizedOrder, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint("/v1/orders/"+url.PathEscape(orderID)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.api.do(ctx, "get", req, a.authorize)
	if err != nil {
		return nil, err
	}

	var o razorpayOrder
	if err := json.Unmarshal(resp.body, &o); err != nil {
		return nil, a.api.malformed("get", resp.body, err)
	}

	order := mapRazorpayOrder(o)
	order.Raw = rawFields(resp.body)
	return &order, nil
}

// HealthCheck verifies that the Razorpay API is reachable and the key pair is valid.
func (a *RazorpayAdapter) HealthCheck(ctx context.Context) error {
	if _, err := a.ListOrders(ctx, domain.ListQuery{Page: 1, PageSize: 1, Status: domain.All}); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

func (a *RazorpayAdapter) authorize(ctx context.Context, req *http.Request) error {
	return basicAuth(a.config.KeyID, a.config.KeySecret)(ctx, req)
}

func (a *RazorpayAdapter) endpoint(path string) string {
	return strings.TrimRight(a.config.BaseURL, "/") + path
}

// mapRazorpayOrder converts a raw Razorpay order into a NormalizedOrder. Amounts are in paise.
func mapRazorpayOrder(o razorpayOrder) domain.NormalizedOrder {
	notes := o.notes()
	total := o.Amount.Shift(-2)

	items := notes.items()
	subTotal := total
	if len(items) > 0 {
		sum := decimal.Zero
		for _, item := range items {
			sum = sum.Add(decimal.NewFromFloat(item.LineTotal))
		}
		subTotal = sum
	}

	billing := notes.address("billing_address")
	shipping := notes.address("shipping_address")

	customer := domain.Customer{
		Name:  notes.get("customer_name"),
		Email: notes.get("customer_email"),
		Phone: notes.get("customer_phone"),
	}
	if customer.Name == "" {
		customer.Name = strings.TrimSpace(billing.FirstName + " " + billing.LastName)
	}
	if customer.Email == "" {
		customer.Email = billing.Email
	}
	if customer.Phone == "" {
		customer.Phone = string(billing.Phone)
	}

	currency := o.Currency
	if currency == "" {
		currency = "INR"
	}

	var createdAt time.Time
	if ts := o.CreatedAt.IntPart(); ts > 0 {
		createdAt = time.Unix(ts, 0).UTC()
	}

	return domain.NormalizedOrder{
		ID:            o.ID,
		Source:        domain.SourceRazorpay,
		Customer:      customer,
		Status:        mapRazorpayStatus(o.Status),
		PaymentStatus: mapRazorpayPayment(o.Status),
		PaymentMethod: "razorpay",
		Items:         items,
		Addresses: domain.Addresses{
			Billing:  billing.toDomain(),
			Shipping: shipping.toDomain(),
		},
		Total:     total.InexactFloat64(),
		SubTotal:  subTotal.Round(2).InexactFloat64(),
		Currency:  currency,
		CreatedAt: createdAt,
	}
}

func mapRazorpayStatus(status string) domain.OrderStatus {
	switch strings.ToLower(status) {
	case "created", "attempted":
		return domain.OrderStatusNew
	default:
		return domain.OrderStatusProcessing
	}
}

func mapRazorpayPayment(status string) domain.PaymentStatus {
	switch strings.ToLower(status) {
	case "paid":
		return domain.PaymentStatusPaidOnline
	case "attempted":
		return domain.PaymentStatusFailed
	default:
		return domain.PaymentStatusPending
	}
}

// internal structs for mapping

// razorpayListResponse is the body of the orders collection endpoint.
type razorpayListResponse struct {
	Entity string          `json:"entity"`
	Count  *flexNumber     `json:"count"`
	Items  []razorpayOrder `json:"items"`
}

// razorpayOrder is a Razorpay order record.
type razorpayOrder struct {
	ID         string          `json:"id"`
	Amount     flexNumber      `json:"amount"`
	AmountPaid flexNumber      `json:"amount_paid"`
	Currency   string          `json:"currency"`
	Receipt    string          `json:"receipt"`
	Status     string          `json:"status"`
	Notes      json.RawMessage `json:"notes"`
	CreatedAt  flexNumber      `json:"created_at"`
}

// notes decodes the order notes. Razorpay sends an empty array when no notes exist.
func (o razorpayOrder) notes() razorpayNotes {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(o.Notes, &fields); err != nil {
		return nil
	}
	notes := make(razorpayNotes, len(fields))
	for k, v := range fields {
		var s flexString
		if err := json.Unmarshal(v, &s); err == nil {
			notes[k] = string(s)
		}
	}
	return notes
}

// razorpayNotes holds the checkout data stored on an order as string values.
type razorpayNotes map[string]string

func (n razorpayNotes) get(key string) string {
	return notAvailable(n[key])
}

// items decodes the JSON-encoded cart stored under "items".
func (n razorpayNotes) items() []domain.OrderItem {
	items := []domain.OrderItem{}
	raw := n.get("items")
	if raw == "" {
		return items
	}

	var cart []razorpayNoteItem
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return items
	}

	for _, c := range cart {
		sku := string(c.SKU)
		if sku == "" {
			sku = string(c.ID)
		}
		quantity := c.Quantity.Int()
		items = append(items, domain.OrderItem{
			Name:      c.Name,
			SKU:       sku,
			Quantity:  quantity,
			UnitPrice: c.Price.Float(),
			LineTotal: lineTotal(c.Price.Decimal, quantity),
		})
	}
	return items
}

// address decodes the JSON-encoded checkout address stored under key.
func (n razorpayNotes) address(key string) razorpayNoteAddress {
	var addr razorpayNoteAddress
	if raw := n.get(key); raw != "" {
		_ = json.Unmarshal([]byte(raw), &addr)
	}
	return addr
}

type razorpayNoteItem struct {
	ID       flexString `json:"id"`
	Name     string     `json:"name"`
	SKU      flexString `json:"sku"`
	Quantity flexNumber `json:"quantity"`
	Price    flexNumber `json:"price"`
}

// razorpayNoteAddress is the checkout address shape stored in notes.
type razorpayNoteAddress struct {
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Address   string     `json:"address"`
	Address2  string     `json:"address2"`
	City      string     `json:"city"`
	State     string     `json:"state"`
	ZipCode   flexString `json:"zipCode"`
	Country   string     `json:"country"`
	Email     string     `json:"email"`
	Phone     flexString `json:"phone"`
}

func (a razorpayNoteAddress) toDomain() domain.Address {
	return domain.Address{
		Line1:      a.Address,
		Line2:      a.Address2,
		City:       a.City,
		State:      a.State,
		PostalCode: string(a.ZipCode),
		Country:    a.Country,
	}
}
