package domain

import (
	"time"
)

// OrderStatus is the provider-agnostic state of an order.
type OrderStatus string

const (
	// OrderStatusNew indicates the order has been placed but not yet worked on.
	OrderStatusNew OrderStatus = "new"
	// OrderStatusProcessing indicates the order is being prepared. Unrecognized native statuses also land here.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped indicates the order has been handed to the carrier.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered indicates the order reached the customer.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled indicates the order was cancelled, refunded or failed.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// All is the filter sentinel matching every status or every source.
const All = "all"

// OrderStatuses lists the closed set of normalized statuses.
var OrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// PaymentStatus is the provider-agnostic payment state of an order.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusPaidOnline PaymentStatus = "paid_online"
	PaymentStatusCOD        PaymentStatus = "cod"
	PaymentStatusFailed     PaymentStatus = "failed"
)

// Source identifies which provider produced an order.
type Source string

const (
	SourceShiprocket  Source = "shiprocket"
	SourceRazorpay    Source = "razorpay"
	SourceWooCommerce Source = "woocommerce"
)

// Customer holds the buyer's contact details.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// OrderItem represents an individual line within an order.
type OrderItem struct {
	// Name is the descriptive name of the product.
	Name string `json:"name"`
	// SKU is the Stock Keeping Unit identifier for the product.
	SKU string `json:"sku"`
	// Quantity is the number of units purchased.
	Quantity int `json:"quantity"`
	// UnitPrice is the price of a single unit.
	UnitPrice float64 `json:"unitPrice"`
	// LineTotal is UnitPrice times Quantity.
	LineTotal float64 `json:"lineTotal"`
}

// Address is a postal address. Missing fields are empty strings.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Addresses groups the billing and shipping addresses of an order.
type Addresses struct {
	Billing  Address `json:"billing"`
	Shipping Address `json:"shipping"`
}

// Dimensions is the package size.
type Dimensions struct {
	Length  float64 `json:"length"`
	Breadth float64 `json:"breadth"`
	Height  float64 `json:"height"`
}

// Shipment carries the carrier assignment of an order, when one exists.
type Shipment struct {
	// Courier is the name of the shipping carrier.
	Courier string `json:"courier"`
	// TrackingNumber is the carrier's tracking identifier (AWB).
	TrackingNumber string `json:"trackingNumber"`
}

// NormalizedOrder is the shared order shape produced by every provider adapter.
// The aggregation pipeline reads and re-orders these values but never mutates them.
type NormalizedOrder struct {
	// ID is the provider-local identifier.
	ID string `json:"id"`
	// Source is the provider that produced the record.
	Source Source `json:"source"`
	// Customer holds the buyer's contact details.
	Customer Customer `json:"customer"`
	// Status is the mapped order status.
	Status OrderStatus `json:"status"`
	// PaymentStatus is the mapped payment status.
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	// PaymentMethod is the provider's payment method label.
	PaymentMethod string `json:"paymentMethod"`
	// Items is never nil.
	Items []OrderItem `json:"items"`
	// Addresses holds the billing and shipping addresses.
	Addresses Addresses `json:"addresses"`
	// Total is the amount charged.
	Total float64 `json:"total"`
	// SubTotal is the amount before shipping and charges.
	SubTotal float64 `json:"subTotal"`
	// Weight is the package weight in kilograms.
	Weight float64 `json:"weight"`
	// Dimensions is the package size in centimetres.
	Dimensions Dimensions `json:"dimensions"`
	// Currency is the ISO currency code.
	Currency string `json:"currency"`
	// Shipment is present once a carrier is assigned.
	Shipment *Shipment `json:"shipment,omitempty"`
	// CreatedAt is the canonical sort key. The zero value means the provider sent none.
	CreatedAt time.Time `json:"createdAt"`
	// Raw passes through provider-native fields; populated on detail views only.
	Raw map[string]any `json:"raw,omitempty"`
}

// ListQuery is the provider-facing listing request.
type ListQuery struct {
	// Page is 1-based.
	Page int
	// PageSize is the number of orders requested from the provider.
	PageSize int
	// Status is a normalized status or All.
	Status string
}

// WantsAllStatuses reports whether the query carries no status filter.
func (q ListQuery) WantsAllStatuses() bool {
	return q.Status == "" || q.Status == All
}

// OrderPage is one provider's answer to a ListQuery.
type OrderPage struct {
	// Orders is never nil.
	Orders []NormalizedOrder
	// TotalCount is the provider's own reported total, or len(Orders) when it reports none.
	TotalCount int
	// ProviderPage is the page number the provider reports it served.
	ProviderPage int
}
