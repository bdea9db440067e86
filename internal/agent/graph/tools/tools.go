// Package tools exposes the store-backed support operations to the response
// model: shipment tracking, delivery pricing, payment retry, return handling,
// customer-scoped lookups and knowledge search. Every tool returns a
// structured record with a found/eligible/allowed discriminator; store
// failures are logged and degrade to not-found results, never errors.
package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/cs-support-assistant/server/internal/agent/model"
	"github.com/cs-support-assistant/server/internal/knowledge"
	"github.com/cs-support-assistant/server/internal/store"
)

const (
	ToolTrackOrderBasic         = "track_order_basic"
	ToolTrackByTrackingNo       = "track_by_tracking_no"
	ToolTrackLatestStatus       = "track_latest_status"
	ToolDeliveryOptionsByRegion = "delivery_options_by_region"
	ToolCheapestDelivery        = "cheapest_delivery"
	ToolEstimateDeliveryCost    = "estimate_delivery_cost"
	ToolLastPaymentStatus       = "last_payment_status"
	ToolCanRetryPayment         = "can_retry_payment"
	ToolPaymentRetrySteps       = "payment_retry_steps"
	ToolLastReturnStatus        = "last_return_status"
	ToolReturnEligibility       = "return_eligibility"
	ToolRequestReturnLabel      = "request_return_label"
	ToolMyOrders                = "my_orders"
	ToolMyOrderStatus           = "my_order_status"
	ToolMyPayments              = "my_payments"
	ToolMyReturns               = "my_returns"
	ToolSearchSupportDocs       = "search_support_docs"
)

// Deps carries everything the tool layer needs. Now is swappable so the
// time-window rules are testable.
type Deps struct {
	Store     store.SupportStore
	Retriever *knowledge.Retriever
	Policy    model.PolicyConfig
	Now       func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// GetSupportTools returns the full tool registry bound to the given deps.
func GetSupportTools(deps *Deps) []tool.BaseTool {
	return []tool.BaseTool{
		createTrackOrderBasicTool(deps),
		createTrackByTrackingNoTool(deps),
		createTrackLatestStatusTool(deps),
		createDeliveryOptionsByRegionTool(deps),
		createCheapestDeliveryTool(deps),
		createEstimateDeliveryCostTool(deps),
		createLastPaymentStatusTool(deps),
		createCanRetryPaymentTool(deps),
		createPaymentRetryStepsTool(deps),
		createLastReturnStatusTool(deps),
		createReturnEligibilityTool(deps),
		createRequestReturnLabelTool(deps),
		createMyOrdersTool(deps),
		createMyOrderStatusTool(deps),
		createMyPaymentsTool(deps),
		createMyReturnsTool(deps),
		createSearchSupportDocsTool(deps),
	}
}

// GetToolInfos collects the ToolInfo descriptors for binding to the model.
func GetToolInfos(ctx context.Context, ts []tool.BaseTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(ts))
	for _, t := range ts {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// formatTime normalizes a store timestamp to the canonical textual form used
// in every tool result: UTC RFC3339.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
