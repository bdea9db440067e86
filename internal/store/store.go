// Package store provides access to the customer-support relational store:
// customers, orders, order items, payments, returns, shipment events and
// shipping methods, related by order identifier and tracking code.
package store

import (
	"context"
	"time"
)

// Order is a row from the orders table. Nullable columns map to pointers.
type Order struct {
	OrderID         int
	CustomerID      int
	Status          string
	OrderDate       time.Time
	StatusUpdatedAt time.Time
	TrackingNo      *string
	Carrier         *string
	ETADate         *time.Time
	TotalAmount     float64
	Currency        string
}

// ShipmentEvent is one carrier scan for a tracking number.
type ShipmentEvent struct {
	TrackingNo string
	Status     string
	Location   *string
	EventTime  time.Time
	Details    *string
}

// ShippingMethod is one delivery option for a region.
type ShippingMethod struct {
	Name       string
	Region     string
	Carrier    string
	Cost       float64
	EstDaysMin int
	EstDaysMax int
}

// Payment is the last recorded payment attempt for an order.
type Payment struct {
	OrderID       int
	Method        string
	Amount        float64
	Currency      string
	Status        string
	LastAttempt   *time.Time
	FailureCode   *string
	FailureReason *string
}

// Return is a return request with the product title joined in.
type Return struct {
	ReturnID     int
	OrderID      int
	RequestDate  time.Time
	Status       string
	Approved     bool
	RefundAmount *float64
	Currency     *string
	ProductTitle *string
}

// SupportStore is the read boundary consumed by the tool layer. Lookups that
// match nothing return (nil, nil); errors are reserved for store failures.
type SupportStore interface {
	OrderByID(ctx context.Context, orderID int) (*Order, error)
	OrderByTrackingNo(ctx context.Context, trackingNo string) (*Order, error)
	// OrderForCustomer looks up an order only when it belongs to the given
	// customer; a foreign order is indistinguishable from a missing one.
	OrderForCustomer(ctx context.Context, orderID, customerID int) (*Order, error)
	LatestShipmentEvent(ctx context.Context, trackingNo string) (*ShipmentEvent, error)

	ShippingMethods(ctx context.Context, region string) ([]ShippingMethod, error)
	CheapestShippingMethod(ctx context.Context, region string, maxDays *int) (*ShippingMethod, error)
	ShippingMethodByName(ctx context.Context, region, name string) (*ShippingMethod, error)

	LastPayment(ctx context.Context, orderID int) (*Payment, error)

	LastReturn(ctx context.Context, orderID int) (*Return, error)
	// DeliveredAt returns the time of the most recent Delivered shipment
	// event for the order, or nil when no such event exists.
	DeliveredAt(ctx context.Context, orderID int) (*time.Time, error)

	OrdersByCustomer(ctx context.Context, customerID int) ([]Order, error)
	PaymentsByCustomer(ctx context.Context, customerID int) ([]Payment, error)
	ReturnsByCustomer(ctx context.Context, customerID int) ([]Return, error)
}
