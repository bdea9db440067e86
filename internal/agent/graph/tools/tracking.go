package tools

import (
	"context"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/cs-support-assistant/server/internal/store"
	logx "github.com/cs-support-assistant/server/pkg/logger"
)

// ===================================
// Shipment tracking tools
// ===================================

// ShipmentEventView is the normalized shipment event shape shared by the
// tracking tool outputs.
type ShipmentEventView struct {
	Status    string `json:"status"`
	Location  string `json:"location,omitempty"`
	EventTime string `json:"event_time"`
	Details   string `json:"details,omitempty"`
}

func shipmentEventView(e *store.ShipmentEvent) *ShipmentEventView {
	if e == nil {
		return nil
	}
	return &ShipmentEventView{
		Status:    e.Status,
		Location:  deref(e.Location),
		EventTime: formatTime(e.EventTime),
		Details:   deref(e.Details),
	}
}

type TrackOrderBasicInput struct {
	OrderID int `json:"order_id"`
}

type TrackOrderBasicOutput struct {
	Found             bool               `json:"found"`
	OrderID           int                `json:"order_id"`
	Status            string             `json:"status,omitempty"`
	TrackingNo        string             `json:"tracking_no,omitempty"`
	Carrier           string             `json:"carrier,omitempty"`
	ETADate           string             `json:"eta_date,omitempty"`
	LastShipmentEvent *ShipmentEventView `json:"last_shipment_event,omitempty"`
}

func createTrackOrderBasicTool(deps *Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolTrackOrderBasic,
			Desc: "Get a basic tracking snapshot by order_id: order status, tracking number, carrier, ETA and the last shipment event if any.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"order_id": {
					Type:     "number",
					Desc:     "Numeric order identifier, e.g. 1001.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *TrackOrderBasicInput) (*TrackOrderBasicOutput, error) {
			order, err := deps.Store.OrderByID(ctx, in.OrderID)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolTrackOrderBasic).Int("order_id", in.OrderID).
					Msg("Store lookup failed; returning not found")
				return &TrackOrderBasicOutput{Found: false, OrderID: in.OrderID}, nil
			}
			if order == nil {
				return &TrackOrderBasicOutput{Found: false, OrderID: in.OrderID}, nil
			}

			out := &TrackOrderBasicOutput{
				Found:      true,
				OrderID:    order.OrderID,
				Status:     order.Status,
				TrackingNo: deref(order.TrackingNo),
				Carrier:    deref(order.Carrier),
				ETADate:    formatTimePtr(order.ETADate),
			}
			if order.TrackingNo != nil {
				evt, err := deps.Store.LatestShipmentEvent(ctx, *order.TrackingNo)
				if err != nil {
					logx.Error().Err(err).Str("tool", ToolTrackOrderBasic).Str("tracking_no", *order.TrackingNo).
						Msg("Shipment event lookup failed; omitting event")
				} else {
					out.LastShipmentEvent = shipmentEventView(evt)
				}
			}
			return out, nil
		},
	)
}

type TrackByTrackingNoInput struct {
	TrackingNo string `json:"tracking_no"`
}

type TrackByTrackingNoOutput struct {
	Found      bool               `json:"found"`
	TrackingNo string             `json:"tracking_no"`
	OrderID    int                `json:"order_id,omitempty"`
	Status     string             `json:"status,omitempty"`
	Carrier    string             `json:"carrier,omitempty"`
	ETADate    string             `json:"eta_date,omitempty"`
	LastEvent  *ShipmentEventView `json:"last_event,omitempty"`
}

func createTrackByTrackingNoTool(deps *Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolTrackByTrackingNo,
			Desc: "Get the current order and last shipment event by carrier tracking number.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"tracking_no": {
					Type:     "string",
					Desc:     "Carrier tracking code, e.g. TRK123456.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *TrackByTrackingNoInput) (*TrackByTrackingNoOutput, error) {
			order, err := deps.Store.OrderByTrackingNo(ctx, in.TrackingNo)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolTrackByTrackingNo).Str("tracking_no", in.TrackingNo).
					Msg("Store lookup failed; returning not found")
				return &TrackByTrackingNoOutput{Found: false, TrackingNo: in.TrackingNo}, nil
			}
			if order == nil {
				return &TrackByTrackingNoOutput{Found: false, TrackingNo: in.TrackingNo}, nil
			}

			out := &TrackByTrackingNoOutput{
				Found:      true,
				TrackingNo: in.TrackingNo,
				OrderID:    order.OrderID,
				Status:     order.Status,
				Carrier:    deref(order.Carrier),
				ETADate:    formatTimePtr(order.ETADate),
			}
			evt, err := deps.Store.LatestShipmentEvent(ctx, in.TrackingNo)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolTrackByTrackingNo).Str("tracking_no", in.TrackingNo).
					Msg("Shipment event lookup failed; omitting event")
			} else {
				out.LastEvent = shipmentEventView(evt)
			}
			return out, nil
		},
	)
}

type TrackLatestStatusInput struct {
	OrderID int `json:"order_id"`
}

type TrackLatestStatusOutput struct {
	Found      bool               `json:"found"`
	OrderID    int                `json:"order_id"`
	TrackingNo string             `json:"tracking_no,omitempty"`
	Latest     *ShipmentEventView `json:"latest,omitempty"`
}

func createTrackLatestStatusTool(deps *Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolTrackLatestStatus,
			Desc: "Get the very latest shipment status for an order_id (joins through the tracking number). Useful to surface 'Shipment on Hold' cases.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"order_id": {
					Type:     "number",
					Desc:     "Numeric order identifier.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *TrackLatestStatusInput) (*TrackLatestStatusOutput, error) {
			order, err := deps.Store.OrderByID(ctx, in.OrderID)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolTrackLatestStatus).Int("order_id", in.OrderID).
					Msg("Store lookup failed; returning not found")
				return &TrackLatestStatusOutput{Found: false, OrderID: in.OrderID}, nil
			}
			if order == nil || order.TrackingNo == nil {
				return &TrackLatestStatusOutput{Found: false, OrderID: in.OrderID}, nil
			}

			evt, err := deps.Store.LatestShipmentEvent(ctx, *order.TrackingNo)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolTrackLatestStatus).Str("tracking_no", *order.TrackingNo).
					Msg("Shipment event lookup failed; returning not found")
				return &TrackLatestStatusOutput{Found: false, OrderID: in.OrderID}, nil
			}

			return &TrackLatestStatusOutput{
				Found:      evt != nil,
				OrderID:    in.OrderID,
				TrackingNo: *order.TrackingNo,
				Latest:     shipmentEventView(evt),
			}, nil
		},
	)
}
