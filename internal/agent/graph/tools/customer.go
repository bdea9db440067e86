package tools

import (
	"context"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	logx "github.com/cs-support-assistant/server/pkg/logger"
)

// ===================================
// Customer-scoped lookup tools
// ===================================
//
// These operate on the customer bound to the session rather than on an
// explicit identifier volunteered by the user.

func (d *Deps) customerID(override int) int {
	if override > 0 {
		return override
	}
	return d.Policy.DefaultCustomerID
}

type CustomerScopedInput struct {
	CustomerID int `json:"customer_id,omitempty"`
}

type OrderView struct {
	OrderID    int     `json:"order_id"`
	Status     string  `json:"status"`
	OrderDate  string  `json:"order_date"`
	Total      float64 `json:"total_amount"`
	Currency   string  `json:"currency"`
	TrackingNo string  `json:"tracking_no,omitempty"`
	Carrier    string  `json:"carrier,omitempty"`
	ETADate    string  `json:"eta_date,omitempty"`
}

type MyOrdersOutput struct {
	CustomerID int         `json:"customer_id"`
	Orders     []OrderView `json:"orders"`
	Count      int         `json:"count"`
}

func createMyOrdersTool(deps *Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolMyOrders,
			Desc: "List all orders for the current customer with status, totals and tracking info.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"customer_id": {
					Type: "number",
					Desc: "Optional customer identifier override; defaults to the session customer.",
				},
			}),
		},
		func(ctx context.Context, in *CustomerScopedInput) (*MyOrdersOutput, error) {
			customerID := deps.customerID(in.CustomerID)
			orders, err := deps.Store.OrdersByCustomer(ctx, customerID)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolMyOrders).Int("customer_id", customerID).
					Msg("Store lookup failed; returning empty list")
				return &MyOrdersOutput{CustomerID: customerID, Orders: []OrderView{}}, nil
			}

			views := make([]OrderView, 0, len(orders))
			for _, o := range orders {
				views = append(views, OrderView{
					OrderID:    o.OrderID,
					Status:     o.Status,
					OrderDate:  formatTime(o.OrderDate),
					Total:      o.TotalAmount,
					Currency:   o.Currency,
					TrackingNo: deref(o.TrackingNo),
					Carrier:    deref(o.Carrier),
					ETADate:    formatTimePtr(o.ETADate),
				})
			}
			return &MyOrdersOutput{CustomerID: customerID, Orders: views, Count: len(views)}, nil
		},
	)
}

type MyOrderStatusInput struct {
	OrderID    int `json:"order_id"`
	CustomerID int `json:"customer_id,omitempty"`
}

type MyOrderStatusOutput struct {
	Found           bool               `json:"found"`
	OrderID         int                `json:"order_id"`
	Message         string             `json:"message,omitempty"`
	Status          string             `json:"status,omitempty"`
	OrderDate       string             `json:"order_date,omitempty"`
	StatusUpdatedAt string             `json:"status_updated_at,omitempty"`
	Total           float64            `json:"total_amount,omitempty"`
	Currency        string             `json:"currency,omitempty"`
	TrackingNo      string             `json:"tracking_no,omitempty"`
	Carrier         string             `json:"carrier,omitempty"`
	ETADate         string             `json:"eta_date,omitempty"`
	LastEvent       *ShipmentEventView `json:"last_event,omitempty"`
}

const orderNotOwnedMessage = "Заказ не найден или не принадлежит вам"

func createMyOrderStatusTool(deps *Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolMyOrderStatus,
			Desc: "Get the status of one specific order of the current customer, with tracking info. Orders of other customers are reported as not found.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"order_id": {
					Type:     "number",
					Desc:     "Order identifier to look up.",
					Required: true,
				},
				"customer_id": {
					Type: "number",
					Desc: "Optional customer identifier override; defaults to the session customer.",
				},
			}),
		},
		func(ctx context.Context, in *MyOrderStatusInput) (*MyOrderStatusOutput, error) {
			customerID := deps.customerID(in.CustomerID)
			order, err := deps.Store.OrderForCustomer(ctx, in.OrderID, customerID)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolMyOrderStatus).Int("order_id", in.OrderID).
					Msg("Store lookup failed; reporting not found")
				return &MyOrderStatusOutput{Found: false, OrderID: in.OrderID, Message: orderNotOwnedMessage}, nil
			}
			if order == nil {
				return &MyOrderStatusOutput{Found: false, OrderID: in.OrderID, Message: orderNotOwnedMessage}, nil
			}

			out := &MyOrderStatusOutput{
				Found:           true,
				OrderID:         order.OrderID,
				Status:          order.Status,
				OrderDate:       formatTime(order.OrderDate),
				StatusUpdatedAt: formatTime(order.StatusUpdatedAt),
				Total:           order.TotalAmount,
				Currency:        order.Currency,
				TrackingNo:      deref(order.TrackingNo),
				Carrier:         deref(order.Carrier),
				ETADate:         formatTimePtr(order.ETADate),
			}

			if order.TrackingNo != nil && *order.TrackingNo != "" {
				event, err := deps.Store.LatestShipmentEvent(ctx, *order.TrackingNo)
				if err != nil {
					logx.Error().Err(err).Str("tool", ToolMyOrderStatus).Str("tracking_no", *order.TrackingNo).
						Msg("Shipment event lookup failed; omitting last event")
				} else {
					out.LastEvent = shipmentEventView(event)
				}
			}
			return out, nil
		},
	)
}

type PaymentView struct {
	OrderID       int     `json:"order_id"`
	Method        string  `json:"method"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
	LastAttempt   string  `json:"last_attempt,omitempty"`
	FailureCode   string  `json:"failure_code,omitempty"`
	FailureReason string  `json:"failure_reason,omitempty"`
}

type MyPaymentsOutput struct {
	CustomerID int           `json:"customer_id"`
	Payments   []PaymentView `json:"payments"`
	Count      int           `json:"count"`
}

func createMyPaymentsTool(deps *Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolMyPayments,
			Desc: "List payment attempts for all orders of the current customer, including failure details.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"customer_id": {
					Type: "number",
					Desc: "Optional customer identifier override; defaults to the session customer.",
				},
			}),
		},
		func(ctx context.Context, in *CustomerScopedInput) (*MyPaymentsOutput, error) {
			customerID := deps.customerID(in.CustomerID)
			payments, err := deps.Store.PaymentsByCustomer(ctx, customerID)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolMyPayments).Int("customer_id", customerID).
					Msg("Store lookup failed; returning empty list")
				return &MyPaymentsOutput{CustomerID: customerID, Payments: []PaymentView{}}, nil
			}

			views := make([]PaymentView, 0, len(payments))
			for _, p := range payments {
				views = append(views, PaymentView{
					OrderID:       p.OrderID,
					Method:        p.Method,
					Amount:        p.Amount,
					Currency:      p.Currency,
					Status:        p.Status,
					LastAttempt:   formatTimePtr(p.LastAttempt),
					FailureCode:   deref(p.FailureCode),
					FailureReason: deref(p.FailureReason),
				})
			}
			return &MyPaymentsOutput{CustomerID: customerID, Payments: views, Count: len(views)}, nil
		},
	)
}

type ReturnView struct {
	ReturnID     int     `json:"return_id"`
	OrderID      int     `json:"order_id"`
	RequestDate  string  `json:"request_date"`
	Status       string  `json:"status"`
	Approved     bool    `json:"approved"`
	RefundAmount float64 `json:"refund_amount,omitempty"`
	Currency     string  `json:"currency,omitempty"`
	ProductTitle string  `json:"product_title,omitempty"`
}

type MyReturnsOutput struct {
	CustomerID int          `json:"customer_id"`
	Returns    []ReturnView `json:"returns"`
	Count      int          `json:"count"`
}

func createMyReturnsTool(deps *Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolMyReturns,
			Desc: "List return requests for all orders of the current customer.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"customer_id": {
					Type: "number",
					Desc: "Optional customer identifier override; defaults to the session customer.",
				},
			}),
		},
		func(ctx context.Context, in *CustomerScopedInput) (*MyReturnsOutput, error) {
			customerID := deps.customerID(in.CustomerID)
			returns, err := deps.Store.ReturnsByCustomer(ctx, customerID)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolMyReturns).Int("customer_id", customerID).
					Msg("Store lookup failed; returning empty list")
				return &MyReturnsOutput{CustomerID: customerID, Returns: []ReturnView{}}, nil
			}

			views := make([]ReturnView, 0, len(returns))
			for _, r := range returns {
				views = append(views, ReturnView{
					ReturnID:     r.ReturnID,
					OrderID:      r.OrderID,
					RequestDate:  formatTime(r.RequestDate),
					Status:       r.Status,
					Approved:     r.Approved,
					RefundAmount: deref(r.RefundAmount),
					Currency:     deref(r.Currency),
					ProductTitle: deref(r.ProductTitle),
				})
			}
			return &MyReturnsOutput{CustomerID: customerID, Returns: views, Count: len(views)}, nil
		},
	)
}
