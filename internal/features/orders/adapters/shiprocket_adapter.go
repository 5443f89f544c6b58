package adapter

import (
	"bytes"
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
	credentialports "merchant-orders/internal/features/credentials/ports"
	"merchant-orders/internal/features/orders/domain"
)

// shiprocketMaxPageSize is the largest per_page the orders endpoint serves.
const shiprocketMaxPageSize = 100

// shiprocketZone is the zone Shiprocket writes its zoneless timestamps in (IST, no DST).
var shiprocketZone = time.FixedZone("IST", 5*60*60+30*60)

// shiprocketStatusFilters maps normalized statuses onto Shiprocket's native filter values.
// Statuses without a single native equivalent are filtered by the aggregator instead.
var shiprocketStatusFilters = map[domain.OrderStatus]string{
	domain.OrderStatusNew:       "NEW",
	domain.OrderStatusShipped:   "SHIPPED",
	domain.OrderStatusDelivered: "DELIVERED",
	domain.OrderStatusCancelled: "CANCELED",
}

// ShiprocketAdapter implements the OrderProvider and ShipmentCreator ports against the Shiprocket API.
type ShiprocketAdapter struct {
	api    providerClient
	config config.ShiprocketConfig
	tokens credentialports.TokenSource
	now    func() time.Time
}

// NewShiprocketAdapter creates a new instance of ShiprocketAdapter.
// Every call obtains its bearer token from tokens.
func NewShiprocketAdapter(cfg config.ShiprocketConfig, tokens credentialports.TokenSource, proxySettings proxy.Settings, timeout time.Duration, opts ...Option) *ShiprocketAdapter {
	return &ShiprocketAdapter{
		api:    newProviderClient(domain.SourceShiprocket, httpclient.NewClient(timeout, proxySettings), opts...),
		config: cfg,
		tokens: tokens,
		now:    time.Now,
	}
}

// Name implements ports.OrderProvider.
func (a *ShiprocketAdapter) Name() domain.Source {
	return domain.SourceShiprocket
}

// MaxPageSize implements ports.OrderProvider.
func (a *ShiprocketAdapter) MaxPageSize() int {
	return shiprocketMaxPageSize
}

// ListOrders fetches one page of Shiprocket orders.
func (a *ShiprocketAdapter) ListOrders(ctx context.Context, query domain.ListQuery) (*domain.OrderPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(query.Page))
	params.Set("per_page", strconv.Itoa(query.PageSize))
	if !query.WantsAllStatuses() {
		if native, ok := shiprocketStatusFilters[domain.OrderStatus(query.Status)]; ok {
			params.Set("filter_by", "status")
			params.Set("filter", native)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint("/v1/external/orders")+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.api.do(ctx, "list", req, a.authorize)
	if err != nil {
		return nil, err
	}

	var list shiprocketListResponse
	if err := json.Unmarshal(resp.body, &list); err != nil {
		return nil, a.api.malformed("list", resp.body, err)
	}

	orders := make([]domain.NormalizedOrder, 0, len(list.Data))
	for _, o := range list.Data {
		orders = append(orders, a.mapToDomain(o))
	}

	page := &domain.OrderPage{
		Orders:       orders,
		TotalCount:   len(orders),
		ProviderPage: query.Page,
	}
	if p := list.Meta.Pagination; p != nil {
		if p.Total != nil {
			page.TotalCount = p.Total.Int()
		}
		if p.CurrentPage.Int() > 0 {
			page.ProviderPage = p.CurrentPage.Int()
		}
	}

	return page, nil
}

// GetOrder fetches a single Shiprocket order with its raw fields attached.
func (a *ShiprocketAdapter) GetOrder(ctx context.Context, orderID string) (*domain.NormalizedOrder, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint("/v1/external/orders/show/"+url.PathEscape(orderID)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.api.do(ctx, "get", req, a.authorize)
	if err != nil {
		return nil, err
	}

	var detail struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.body, &detail); err != nil {
		return nil, a.api.malformed("get", resp.body, err)
	}

	var o shiprocketOrder
	if err := json.Unmarshal(detail.Data, &o); err != nil {
		return nil, a.api.malformed("get", resp.body, err)
	}

	order := a.mapToDomain(o)
	order.Raw = rawFields(detail.Data)
	return &order, nil
}

// HealthCheck verifies that a token can be obtained and the orders endpoint answers.
func (a *ShiprocketAdapter) HealthCheck(ctx context.Context) error {
	if _, err := a.ListOrders(ctx, domain.ListQuery{Page: 1, PageSize: 1, Status: domain.All}); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// CreateShipment creates an ad-hoc Shiprocket order from a validated checkout payload.
func (a *ShiprocketAdapter) CreateShipment(ctx context.Context, in domain.ShipmentRequest) (*domain.ShipmentResult, error) {
	payload, err := json.Marshal(a.toAdhocOrder(in))
	if err != nil {
		return nil, fmt.Errorf("failed to encode shipment: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint("/v1/external/orders/create/adhoc"), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.api.do(ctx, "create", req, a.authorize)
	if err != nil {
		return nil, err
	}

	var created shiprocketCreateResponse
	if err := json.Unmarshal(resp.body, &created); err != nil {
		return nil, a.api.malformed("create", resp.body, err)
	}

	return &domain.ShipmentResult{
		ShiprocketOrderID: string(created.OrderID),
		ShipmentID:        string(created.ShipmentID),
		Status:            string(created.Status),
		AWBCode:           string(created.AWBCode),
		CourierName:       created.CourierName,
	}, nil
}

func (a *ShiprocketAdapter) authorize(ctx context.Context, req *http.Request) error {
	token, err := a.tokens.GetValidToken(ctx, string(domain.SourceShiprocket))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func (a *ShiprocketAdapter) endpoint(path string) string {
	return strings.TrimRight(a.config.BaseURL, "/") + path
}

// mapToDomain converts a raw Shiprocket order into a NormalizedOrder.
func (a *ShiprocketAdapter) mapToDomain(o shiprocketOrder) domain.NormalizedOrder {
	total := o.Total
	if total.IsZero() {
		total = o.SubTotal
	}

	order := domain.NormalizedOrder{
		ID:     string(o.ID),
		Source: domain.SourceShiprocket,
		Customer: domain.Customer{
			Name:  strings.TrimSpace(o.CustomerName + " " + o.CustomerLastName),
			Email: o.CustomerEmail,
			Phone: string(o.CustomerPhone),
		},
		Status:        mapShiprocketStatus(o.StatusCode.Int()),
		PaymentStatus: mapShiprocketPayment(o.PaymentMethod),
		PaymentMethod: o.PaymentMethod,
		Items:         mapShiprocketItems(o.Products),
		Addresses: domain.Addresses{
			Billing: domain.Address{
				Line1:      o.BillingAddress,
				Line2:      o.BillingAddress2,
				City:       o.BillingCity,
				State:      o.BillingState,
				PostalCode: string(o.BillingPostcode),
				Country:    o.BillingCountry,
			},
			Shipping: domain.Address{
				Line1:      o.ShippingAddress,
				Line2:      o.ShippingAddress2,
				City:       o.ShippingCity,
				State:      o.ShippingState,
				PostalCode: string(o.ShippingPostcode),
				Country:    o.ShippingCountry,
			},
		},
		Total:    total.Float(),
		SubTotal: o.SubTotal.Float(),
		Weight:   o.Weight.Float(),
		Dimensions: domain.Dimensions{
			Length:  o.Length.Float(),
			Breadth: o.Breadth.Float(),
			Height:  o.Height.Float(),
		},
		Currency:  "INR",
		CreatedAt: parseTime(o.CreatedAt, shiprocketZone),
	}

	if o.CourierName != "" || o.AWBCode != "" {
		order.Shipment = &domain.Shipment{
			Courier:        o.CourierName,
			TrackingNumber: string(o.AWBCode),
		}
	}

	return order
}

// mapShiprocketStatus maps Shiprocket status codes into the normalized set.
func mapShiprocketStatus(code int) domain.OrderStatus {
	switch code {
	case 1:
		return domain.OrderStatusNew
	case 6:
		return domain.OrderStatusShipped
	case 7:
		return domain.OrderStatusDelivered
	case 9:
		return domain.OrderStatusCancelled
	default:
		return domain.OrderStatusProcessing
	}
}

func mapShiprocketPayment(method string) domain.PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case "cod":
		return domain.PaymentStatusCOD
	case "prepaid":
		return domain.PaymentStatusPaidOnline
	default:
		return domain.PaymentStatusPending
	}
}

func mapShiprocketItems(products []shiprocketProduct) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(products))
	for _, p := range products {
		quantity := p.Units.Int()
		if quantity == 0 {
			quantity = p.Quantity.Int()
		}
		price := p.SellingPrice.Decimal
		if price.IsZero() {
			price = p.Price.Decimal
		}
		items = append(items, domain.OrderItem{
			Name:      p.Name,
			SKU:       string(p.SKU),
			Quantity:  quantity,
			UnitPrice: price.InexactFloat64(),
			LineTotal: lineTotal(price, quantity),
		})
	}
	return items
}

// toAdhocOrder builds the ad-hoc order body. Shipping mirrors billing when no shipping address is given.
func (a *ShiprocketAdapter) toAdhocOrder(in domain.ShipmentRequest) shiprocketAdhocOrder {
	orderDate := in.OrderDate
	if orderDate == "" {
		orderDate = a.now().Format("2006-01-02 15:04:05")
	}

	country := in.BillingAddress.Country
	if country == "" {
		country = "India"
	}

	paymentMethod := "Prepaid"
	if strings.EqualFold(in.PaymentMethod, "cod") {
		paymentMethod = "COD"
	}

	out := shiprocketAdhocOrder{
		OrderID:             in.OrderID,
		OrderDate:           orderDate,
		PickupLocation:      a.config.PickupLocation,
		BillingCustomerName: in.BillingAddress.FirstName,
		BillingLastName:     in.BillingAddress.LastName,
		BillingAddress:      in.BillingAddress.Address,
		BillingCity:         in.BillingAddress.City,
		BillingPincode:      in.BillingAddress.ZipCode,
		BillingState:        in.BillingAddress.State,
		BillingCountry:      country,
		BillingEmail:        in.BillingAddress.Email,
		BillingPhone:        in.BillingAddress.Phone,
		ShippingIsBilling:   1,
		PaymentMethod:       paymentMethod,
		SubTotal:            in.SubTotal,
		Length:              10,
		Breadth:             10,
		Height:              10,
		Weight:              0.5,
		OrderItems:          make([]shiprocketAdhocItem, 0, len(in.OrderItems)),
	}

	if s := in.ShippingAddress; s != nil {
		out.ShippingIsBilling = 0
		out.ShippingCustomerName = s.FirstName
		out.ShippingLastName = s.LastName
		out.ShippingAddress = s.Address
		out.ShippingCity = s.City
		out.ShippingPincode = s.ZipCode
		out.ShippingState = s.State
		out.ShippingCountry = s.Country
		out.ShippingEmail = s.Email
		out.ShippingPhone = s.Phone
	}

	for _, item := range in.OrderItems {
		sku := item.SKU
		if sku == "" {
			sku = item.ID
		}
		out.OrderItems = append(out.OrderItems, shiprocketAdhocItem{
			Name:         item.Name,
			SKU:          sku,
			Units:        item.Quantity,
			SellingPrice: item.Price,
		})
	}

	return out
}

// internal structs for mapping

// shiprocketListResponse is the body of the orders listing endpoint.
type shiprocketListResponse struct {
	Data []shiprocketOrder `json:"data"`
	Meta struct {
		Pagination *struct {
			Total       *flexNumber `json:"total"`
			CurrentPage flexNumber  `json:"current_page"`
			TotalPages  flexNumber  `json:"total_pages"`
		} `json:"pagination"`
	} `json:"meta"`
}

// shiprocketOrder is a Shiprocket order record. Identifiers and phone numbers
// arrive as either strings or numbers.
type shiprocketOrder struct {
	ID               flexString          `json:"id"`
	ChannelOrderID   flexString          `json:"channel_order_id"`
	CustomerName     string              `json:"customer_name"`
	CustomerLastName string              `json:"customer_last_name"`
	CustomerEmail    string              `json:"customer_email"`
	CustomerPhone    flexString          `json:"customer_phone"`
	Status           string              `json:"status"`
	StatusCode       flexNumber          `json:"status_code"`
	PaymentMethod    string              `json:"payment_method"`
	Products         []shiprocketProduct `json:"products"`
	BillingAddress   string              `json:"billing_address"`
	BillingAddress2  string              `json:"billing_address_2"`
	BillingCity      string              `json:"billing_city"`
	BillingState     string              `json:"billing_state"`
	BillingPostcode  flexString          `json:"billing_postcode"`
	BillingCountry   string              `json:"billing_country"`
	ShippingAddress  string              `json:"shipping_address"`
	ShippingAddress2 string              `json:"shipping_address_2"`
	ShippingCity     string              `json:"shipping_city"`
	ShippingState    string              `json:"shipping_state"`
	ShippingPostcode flexString          `json:"shipping_postcode"`
	ShippingCountry  string              `json:"shipping_country"`
	SubTotal         flexNumber          `json:"sub_total"`
	Total            flexNumber          `json:"total"`
	Weight           flexNumber          `json:"weight"`
	Length           flexNumber          `json:"length"`
	Breadth          flexNumber          `json:"breadth"`
	Height           flexNumber          `json:"height"`
	CourierName      string              `json:"courier_name"`
	AWBCode          flexString          `json:"awb_code"`
	CreatedAt        string              `json:"created_at"`
}

// shiprocketProduct is one product line of a Shiprocket order.
type shiprocketProduct struct {
	Name         string     `json:"name"`
	SKU          flexString `json:"sku"`
	Units        flexNumber `json:"units"`
	Quantity     flexNumber `json:"quantity"`
	SellingPrice flexNumber `json:"selling_price"`
	Price        flexNumber `json:"price"`
}

// shiprocketAdhocOrder is the body of the ad-hoc order creation endpoint.
type shiprocketAdhocOrder struct {
	OrderID              string                `json:"order_id"`
	OrderDate            string                `json:"order_date"`
	PickupLocation       string                `json:"pickup_location"`
	ChannelID            string                `json:"channel_id"`
	Comment              string                `json:"comment"`
	BillingCustomerName  string                `json:"billing_customer_name"`
	BillingLastName      string                `json:"billing_last_name"`
	BillingAddress       string                `json:"billing_address"`
	BillingAddress2      string                `json:"billing_address_2"`
	BillingCity          string                `json:"billing_city"`
	BillingPincode       string                `json:"billing_pincode"`
	BillingState         string                `json:"billing_state"`
	BillingCountry       string                `json:"billing_country"`
	BillingEmail         string                `json:"billing_email"`
	BillingPhone         string                `json:"billing_phone"`
	ShippingIsBilling    int                   `json:"shipping_is_billing"`
	ShippingCustomerName string                `json:"shipping_customer_name"`
	ShippingLastName     string                `json:"shipping_last_name"`
	ShippingAddress      string                `json:"shipping_address"`
	ShippingAddress2     string                `json:"shipping_address_2"`
	ShippingCity         string                `json:"shipping_city"`
	ShippingPincode      string                `json:"shipping_pincode"`
	ShippingState        string                `json:"shipping_state"`
	ShippingCountry      string                `json:"shipping_country"`
	ShippingEmail        string                `json:"shipping_email"`
	ShippingPhone        string                `json:"shipping_phone"`
	OrderItems           []shiprocketAdhocItem `json:"order_items"`
	PaymentMethod        string                `json:"payment_method"`
	SubTotal             float64               `json:"sub_total"`
	Length               float64               `json:"length"`
	Breadth              float64               `json:"breadth"`
	Height               float64               `json:"height"`
	Weight               float64               `json:"weight"`
}

type shiprocketAdhocItem struct {
	Name         string  `json:"name"`
	SKU          string  `json:"sku"`
	Units        int     `json:"units"`
	SellingPrice float64 `json:"selling_price"`
	Discount     float64 `json:"discount"`
	Tax          float64 `json:"tax"`
	HSN          string  `json:"hsn"`
}

// shiprocketCreateResponse is the answer of the ad-hoc order creation endpoint.
type shiprocketCreateResponse struct {
	OrderID     flexString `json:"order_id"`
	ShipmentID  flexString `json:"shipment_id"`
	Status      flexString `json:"status"`
	AWBCode     flexString `json:"awb_code"`
	CourierName string     `json:"courier_name"`
}
