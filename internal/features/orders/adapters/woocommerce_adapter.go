package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"merchant-orders/internal/core/config"
	"merchant-orders/internal/core/httpclient"
	"merchant-orders/internal/core/proxy"
	"merchant-orders/internal/features/orders/domain"

	"github.com/shopspring/decimal"
)

// wooMaxPageSize is the largest per_page the WooCommerce REST API accepts.
const wooMaxPageSize = 100

// wooStatusFilters maps normalized statuses onto WooCommerce's native status filter.
// Shipped depends on tracking metadata and has no native equivalent.
var wooStatusFilters = map[domain.OrderStatus]string{
	domain.OrderStatusNew:        "pending",
	domain.OrderStatusProcessing: "processing,on-hold",
	domain.OrderStatusDelivered:  "completed",
	domain.OrderStatusCancelled:  "cancelled,refunded,failed",
}

// noteTrackingPattern matches tracking details written into a customer note, e.g.
// "AWB: 141123221 Courier: Delhivery" or "No de guía: 2259176774 Paquetería: servientrega".
var noteTrackingPattern = regexp.MustCompile(`(?i)(?:tracking\s*(?:number|no\.?)?|awb(?:\s*code)?|no\s+de\s+gu[ií]a)\s*:\s*(\S+).*?(?:courier|carrier|paqueter[ií]a)\s*:\s*(\S+)`)

// WooCommerceAdapter implements the OrderProvider interface using the WooCommerce REST API.
type WooCommerceAdapter struct {
	// api executes requests against the store.
	api providerClient
	// config holds the WooCommerce connection details.
	config config.WooCommerceConfig
}

// NewWooCommerceAdapter creates a new instance of WooCommerceAdapter.
func NewWooCommerceAdapter(cfg config.WooCommerceConfig, proxySettings proxy.Settings, timeout time.Duration, opts ...Option) *WooCommerceAdapter {
	return &WooCommerceAdapter{
		api:    newProviderClient(domain.SourceWooCommerce, httpclient.NewClient(timeout, proxySettings), opts...),
		config: cfg,
	}
}

// Name implements ports.OrderProvider.
func (a *WooCommerceAdapter) Name() domain.Source {
	return domain.SourceWooCommerce
}

// MaxPageSize implements ports.OrderProvider.
func (a *WooCommerceAdapter) MaxPageSize() int {
	return wooMaxPageSize
}

// ListOrders fetches one page of WooCommerce orders. The store reports its total in X-WP-Total.
func (a *WooCommerceAdapter) ListOrders(ctx context.Context, query domain.ListQuery) (*domain.OrderPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(query.Page))
	params.Set("per_page", strconv.Itoa(query.PageSize))
	if !query.WantsAllStatuses() {
		if native, ok := wooStatusFilters[domain.OrderStatus(query.Status)]; ok {
			params.Set("status", native)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint("/wp-json/wc/v3/orders")+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.api.do(ctx, "list", req, a.authorize)
	if err != nil {
		return nil, err
	}

	var wcOrders []woocommerceOrder
	if err := json.Unmarshal(resp.body, &wcOrders); err != nil {
		return nil, a.api.malformed("list", resp.body, err)
	}

	orders := make([]domain.NormalizedOrder, 0, len(wcOrders))
	for _, o := range wcOrders {
		orders = append(orders, mapToDomain(o))
	}

	total := len(orders)
	if header := resp.header.Get("X-WP-Total"); header != "" {
		if n, err := strconv.Atoi(header); err == nil {
			total = n
		}
	}

	return &domain.OrderPage{
		Orders:       orders,
		TotalCount:   total,
		ProviderPage: query.Page,
	}, nil
}

// GetOrder fetches an order from WooCommerce and maps it to the domain entity.
func (a *WooCommerceAdapter) GetOrder(ctx context.Context, orderID string) (*domain.NormalizedOrder, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint("/wp-json/wc/v3/orders/"+url.PathEscape(orderID)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.api.do(ctx, "get", req, a.authorize)
	if err != nil {
		return nil, err
	}

	var wcOrder woocommerceOrder
	if err := json.Unmarshal(resp.body, &wcOrder); err != nil {
		return nil, a.api.malformed("get", resp.body, err)
	}

	order := mapToDomain(wcOrder)
	order.Raw = rawFields(resp.body)
	return &order, nil
}

// HealthCheck verifies that the WooCommerce API is reachable and credentials are valid.
func (a *WooCommerceAdapter) HealthCheck(ctx context.Context) error {
	// Check orders endpoint with per_page=1 to verify auth and reachability
	if _, err := a.ListOrders(ctx, domain.ListQuery{Page: 1, PageSize: 1, Status: domain.All}); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

func (a *WooCommerceAdapter) authorize(ctx context.Context, req *http.Request) error {
	return basicAuth(a.config.ConsumerKey, a.config.ConsumerSecret)(ctx, req)
}

func (a *WooCommerceAdapter) endpoint(path string) string {
	return strings.TrimRight(a.config.URL, "/") + path
}

// mapToDomain converts a raw WooCommerce order response into a NormalizedOrder.
func mapToDomain(wcOrder woocommerceOrder) domain.NormalizedOrder {
	tracking := extractTrackingInfo(wcOrder)
	items := mapItems(wcOrder.LineItems, wcOrder.FeeLines)

	subTotal := decimal.Zero
	for _, item := range wcOrder.LineItems {
		subTotal = subTotal.Add(item.Subtotal.Decimal)
	}

	createdAt := time.Time(wcOrder.DateCreatedGMT)
	if createdAt.IsZero() {
		createdAt = time.Time(wcOrder.DateCreated)
	}

	order := domain.NormalizedOrder{
		ID:     strconv.Itoa(wcOrder.ID),
		Source: domain.SourceWooCommerce,
		Customer: domain.Customer{
			Name:  strings.TrimSpace(wcOrder.Billing.FirstName + " " + wcOrder.Billing.LastName),
			Email: wcOrder.Billing.Email,
			Phone: wcOrder.Billing.Phone,
		},
		Status:        mapStatus(wcOrder.Status, tracking),
		PaymentStatus: mapPaymentStatus(wcOrder),
		PaymentMethod: wcOrder.PaymentMethodTitle,
		Items:         items,
		Addresses: domain.Addresses{
			Billing:  wcOrder.Billing.toDomain(),
			Shipping: wcOrder.Shipping.toDomain(),
		},
		Total:     wcOrder.Total.Float(),
		SubTotal:  subTotal.InexactFloat64(),
		Currency:  wcOrder.Currency,
		CreatedAt: createdAt,
	}

	if len(tracking) > 0 {
		order.Shipment = &tracking[0]
	}

	return order
}

// mapStatus determines the normalized status from the WooCommerce status and tracking info.
// Tracking marks an order shipped unless it is already completed or cancelled.
func mapStatus(status string, tracking []domain.Shipment) domain.OrderStatus {
	var mapped domain.OrderStatus

	switch strings.ToLower(status) {
	case "pending":
		mapped = domain.OrderStatusNew
	case "processing", "on-hold":
		mapped = domain.OrderStatusProcessing
	case "completed":
		mapped = domain.OrderStatusDelivered
	case "cancelled", "refunded", "failed":
		mapped = domain.OrderStatusCancelled
	default:
		mapped = domain.OrderStatusProcessing
	}

	if len(tracking) > 0 && mapped != domain.OrderStatusDelivered && mapped != domain.OrderStatusCancelled {
		return domain.OrderStatusShipped
	}
	return mapped
}

func mapPaymentStatus(o woocommerceOrder) domain.PaymentStatus {
	switch {
	case strings.EqualFold(o.PaymentMethod, "cod"):
		return domain.PaymentStatusCOD
	case !time.Time(o.DatePaid).IsZero():
		return domain.PaymentStatusPaidOnline
	case strings.EqualFold(o.Status, "failed"):
		return domain.PaymentStatusFailed
	default:
		return domain.PaymentStatusPending
	}
}

// extractTrackingInfo attempts to find tracking information from order metadata.
func extractTrackingInfo(order woocommerceOrder) []domain.Shipment {
	var tracking []domain.Shipment

	for _, shippingLine := range order.ShippingLines {
		var trackingNum, trackingProvider string

		for _, meta := range shippingLine.MetaData {
			switch meta.Key {
			case "Tracking Number", "tracking_number", "_tracking_number":
				if val, ok := meta.Value.(string); ok && val != "" {
					trackingNum = val
				}
			case "Tracking Company", "tracking_company", "_tracking_company", "tracking_provider":
				if val, ok := meta.Value.(string); ok && val != "" {
					trackingProvider = val
				}
			}
		}

		if trackingNum != "" || trackingProvider != "" {
			tracking = append(tracking, domain.Shipment{
				TrackingNumber: trackingNum,
				Courier:        trackingProvider,
			})
		}
	}

	if len(tracking) > 0 {
		return tracking
	}

	for _, meta := range order.MetaData {
		if meta.Key == "_wc_shipment_tracking_items" {
			if items, err := parseTrackingItems(meta.Value); err == nil && len(items) > 0 {
				return items
			}
		}
	}

	var legacyNum, legacyProvider string
	for _, meta := range order.MetaData {
		if meta.Key == "tracking_number" || meta.Key == "_tracking_number" || meta.Key == "wc_shipment_tracking_number" {
			if val, ok := meta.Value.(string); ok && val != "" {
				legacyNum = val
			}
		}
		if meta.Key == "tracking_company" || meta.Key == "_tracking_company" || meta.Key == "tracking_provider" {
			if val, ok := meta.Value.(string); ok && val != "" {
				legacyProvider = val
			}
		}
	}

	if legacyNum != "" || legacyProvider != "" {
		return []domain.Shipment{{
			TrackingNumber: legacyNum,
			Courier:        legacyProvider,
		}}
	}

	// Final fallback: the note the customer sees
	return extractTrackingFromNote(order.CustomerNote)
}

// parseTrackingItems parses the WooCommerce Shipment Tracking plugin JSON structure.
func parseTrackingItems(value interface{}) ([]domain.Shipment, error) {
	jsonBytes, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	var wcItems []wcTrackingItem
	if err := json.Unmarshal(jsonBytes, &wcItems); err != nil {
		return nil, err
	}

	var tracking []domain.Shipment
	for _, item := range wcItems {
		if item.TrackingNumber == "" && item.TrackingProvider == "" {
			continue
		}
		tracking = append(tracking, domain.Shipment{
			Courier:        item.TrackingProvider,
			TrackingNumber: item.TrackingNumber,
		})
	}

	return tracking, nil
}

// extractTrackingFromNote parses a customer note to extract tracking information.
func extractTrackingFromNote(note string) []domain.Shipment {
	if note == "" {
		return nil
	}

	matches := noteTrackingPattern.FindStringSubmatch(note)
	if len(matches) < 3 {
		return nil
	}

	trackingNumber := strings.TrimSpace(matches[1])
	carrier := strings.ToLower(strings.Trim(strings.TrimSpace(matches[2]), ".,;"))

	if trackingNumber == "" || carrier == "" {
		return nil
	}

	return []domain.Shipment{{
		TrackingNumber: trackingNumber,
		Courier:        carrier,
	}}
}

// mapItems converts WooCommerce line items and fee lines to domain OrderItems.
func mapItems(wcItems []wcLineItem, feeLines []wcFeeLine) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(wcItems)+len(feeLines))

	for _, item := range wcItems {
		items = append(items, domain.OrderItem{
			Name:      item.Name,
			SKU:       item.Sku,
			Quantity:  item.Quantity,
			UnitPrice: item.Price.Float(),
			LineTotal: item.Total.Float(),
		})
	}

	for _, fee := range feeLines {
		items = append(items, domain.OrderItem{
			Name:      fee.Name,
			Quantity:  1,
			UnitPrice: fee.Total.Float(),
			LineTotal: fee.Total.Float(),
		})
	}

	return items
}

// internal structs for mapping

// woocommerceOrder represents the JSON structure of an order from WooCommerce API.
type woocommerceOrder struct {
	// ID is the unique order ID.
	ID int `json:"id"`
	// Status is the order status (e.g., pending, processing, completed).
	Status string `json:"status"`
	// Currency is the ISO currency code.
	Currency string `json:"currency"`
	// DateCreated is the creation timestamp in the store's timezone.
	DateCreated wcTime `json:"date_created"`
	// DateCreatedGMT is the creation timestamp in UTC.
	DateCreatedGMT wcTime `json:"date_created_gmt"`
	// DatePaid is set once payment was received.
	DatePaid wcTime `json:"date_paid"`
	// Total is the grand total as a decimal string.
	Total flexNumber `json:"total"`
	// PaymentMethod is the payment gateway id, e.g. cod.
	PaymentMethod string `json:"payment_method"`
	// PaymentMethodTitle is the display name of the payment method.
	PaymentMethodTitle string `json:"payment_method_title"`
	// CustomerNote is the note left at checkout.
	CustomerNote string `json:"customer_note"`
	// Billing holds the billing address details.
	Billing wcAddress `json:"billing"`
	// Shipping holds the shipping address details.
	Shipping wcAddress `json:"shipping"`
	// LineItems contains the products ordered.
	LineItems []wcLineItem `json:"line_items"`
	// FeeLines contains additional fees added to the order.
	FeeLines []wcFeeLine `json:"fee_lines"`
	// ShippingLines contains shipment information including tracking data.
	ShippingLines []wcShippingLine `json:"shipping_lines"`
	// MetaData contains extra fields.
	MetaData []wcMetaData `json:"meta_data"`
}

// wcMetaData represents a key-value pair in WooCommerce metadata.
type wcMetaData struct {
	// Key is the metadata key name.
	Key string `json:"key"`
	// Value is the metadata value, which can be of various types.
	Value interface{} `json:"value"`
}

// wcTrackingItem represents a single tracking entry from WooCommerce Shipment Tracking plugin.
type wcTrackingItem struct {
	// TrackingProvider is the carrier name.
	TrackingProvider string `json:"tracking_provider"`
	// TrackingNumber is the shipment tracking number.
	TrackingNumber string `json:"tracking_number"`
}

// wcAddress holds billing or shipping address information. Shipping carries no email.
type wcAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func (a wcAddress) toDomain() domain.Address {
	return domain.Address{
		Line1:      a.Address1,
		Line2:      a.Address2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.Postcode,
		Country:    a.Country,
	}
}

// wcLineItem represents a product in the WooCommerce order.
type wcLineItem struct {
	// Name is the product name.
	Name string `json:"name"`
	// Sku is the product SKU.
	Sku string `json:"sku"`
	// Quantity is the number of units ordered.
	Quantity int `json:"quantity"`
	// Price is the unit price.
	Price flexNumber `json:"price"`
	// Subtotal is the line total before discounts.
	Subtotal flexNumber `json:"subtotal"`
	// Total is the line total after discounts.
	Total flexNumber `json:"total"`
}

// wcFeeLine represents a fee line item.
type wcFeeLine struct {
	// Name is the fee name.
	Name string `json:"name"`
	// Total is the fee amount.
	Total flexNumber `json:"total"`
}

// wcShippingLine represents a shipping method with tracking metadata.
type wcShippingLine struct {
	// MethodID is the shipping method identifier.
	MethodID string `json:"method_id"`
	// MethodTitle is the shipping method display name.
	MethodTitle string `json:"method_title"`
	// MetaData contains tracking information.
	MetaData []wcMetaData `json:"meta_data"`
}

// wcTime is a custom helper struct to handle WooCommerce's date format.
type wcTime time.Time

// UnmarshalJSON parses the date formats used by WooCommerce.
// Null and unparsable dates decode to the zero time.
func (t *wcTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), "\"")
	if s == "null" {
		*t = wcTime(time.Time{})
		return nil
	}
	*t = wcTime(parseTime(s, time.UTC))
	return nil
}
