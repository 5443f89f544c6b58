package domain

// ShipmentRequest is the checkout payload used to create a fulfillment order.
type ShipmentRequest struct {
	// OrderID is the merchant's order reference.
	OrderID string `json:"orderId" validate:"required"`
	// OrderDate defaults to the current time when empty.
	OrderDate string `json:"orderDate"`
	// BillingAddress is the buyer's billing contact.
	BillingAddress BillingAddress `json:"billingAddress"`
	// ShippingAddress is optional; billing is shipped to when nil.
	ShippingAddress *ShippingAddress `json:"shippingAddress,omitempty" validate:"omitempty"`
	// OrderItems must hold at least one line.
	OrderItems []ShipmentItem `json:"orderItems" validate:"required,min=1,dive"`
	// PaymentMethod is "cod" or anything else for prepaid.
	PaymentMethod string `json:"paymentMethod"`
	// SubTotal is the order value before charges.
	SubTotal float64 `json:"subTotal" validate:"gte=0"`
}

// BillingAddress is the billing contact of a ShipmentRequest.
type BillingAddress struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"`
	Address   string `json:"address" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	ZipCode   string `json:"zipCode" validate:"required"`
	Country   string `json:"country"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required"`
}

// ShippingAddress is the delivery contact of a ShipmentRequest.
type ShippingAddress struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	ZipCode   string `json:"zipCode" validate:"required"`
	Country   string `json:"country"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
}

// ShipmentItem is one line of a ShipmentRequest.
type ShipmentItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name" validate:"required"`
	SKU      string  `json:"sku"`
	Quantity int     `json:"quantity" validate:"min=1"`
	Price    float64 `json:"price" validate:"gte=0"`
}

// ShipmentResult is the provider's answer to a created shipment.
type ShipmentResult struct {
	ShiprocketOrderID string `json:"shiprocketOrderId"`
	ShipmentID        string `json:"shipmentId"`
	Status            string `json:"status"`
	AWBCode           string `json:"awbCode"`
	CourierName       string `json:"courierName"`
}
