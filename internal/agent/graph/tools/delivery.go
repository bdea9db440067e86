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
// Delivery option tools
// ===================================

// ShippingMethodView is the normalized shipping method shape shared by the
// delivery tool outputs.
type ShippingMethodView struct {
	Name       string  `json:"name"`
	Carrier    string  `json:"carrier"`
	Cost       float64 `json:"cost"`
	EstDaysMin int     `json:"est_days_min"`
	EstDaysMax int     `json:"est_days_max"`
}

func shippingMethodView(m *store.ShippingMethod) *ShippingMethodView {
	if m == nil {
		return nil
	}
	return &ShippingMethodView{
		Name:       m.Name,
		Carrier:    m.Carrier,
		Cost:       m.Cost,
		EstDaysMin: m.EstDaysMin,
		EstDaysMax: m.EstDaysMax,
	}
}

type DeliveryOptionsInput struct {
	Region string `json:"region"`
}

type DeliveryOptionsOutput struct {
	Region  string               `json:"region"`
	Methods []ShippingMethodView `json:"methods"`
}

func createDeliveryOptionsByRegionTool(deps *Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolDeliveryOptionsByRegion,
			Desc: "List available shipping methods for a region, cheapest first. Worldwide methods are included as a fallback.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"region": {
					Type:     "string",
					Desc:     "Destination region code, e.g. US, CA, EU.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *DeliveryOptionsInput) (*DeliveryOptionsOutput, error) {
			methods, err := deps.Store.ShippingMethods(ctx, in.Region)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolDeliveryOptionsByRegion).Str("region", in.Region).
					Msg("Store lookup failed; returning empty options")
				return &DeliveryOptionsOutput{Region: in.Region, Methods: []ShippingMethodView{}}, nil
			}

			views := make([]ShippingMethodView, 0, len(methods))
			for i := range methods {
				views = append(views, *shippingMethodView(&methods[i]))
			}
			return &DeliveryOptionsOutput{Region: in.Region, Methods: views}, nil
		},
	)
}

type CheapestDeliveryInput struct {
	Region  string `json:"region"`
	MaxDays *int   `json:"max_days,omitempty"`
}

type CheapestDeliveryOutput struct {
	Found  bool                `json:"found"`
	Region string              `json:"region"`
	Option *ShippingMethodView `json:"option,omitempty"`
}

func createCheapestDeliveryTool(deps *Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolCheapestDelivery,
			Desc: "Get the cheapest delivery option for a region, optionally constrained to arrive within max_days.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"region": {
					Type:     "string",
					Desc:     "Destination region code.",
					Required: true,
				},
				"max_days": {
					Type: "number",
					Desc: "Optional delivery SLA threshold in days.",
				},
			}),
		},
		func(ctx context.Context, in *CheapestDeliveryInput) (*CheapestDeliveryOutput, error) {
			option, err := deps.Store.CheapestShippingMethod(ctx, in.Region, in.MaxDays)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolCheapestDelivery).Str("region", in.Region).
					Msg("Store lookup failed; returning not found")
				return &CheapestDeliveryOutput{Found: false, Region: in.Region}, nil
			}
			return &CheapestDeliveryOutput{
				Found:  option != nil,
				Region: in.Region,
				Option: shippingMethodView(option),
			}, nil
		},
	)
}

type EstimateDeliveryCostInput struct {
	Region     string `json:"region"`
	MethodName string `json:"method_name,omitempty"`
}

type EstimateDeliveryCostOutput struct {
	Found    bool                `json:"found"`
	Region   string              `json:"region"`
	Estimate *ShippingMethodView `json:"estimate,omitempty"`
}

func createEstimateDeliveryCostTool(deps *Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolEstimateDeliveryCost,
			Desc: "Estimate delivery cost and ETA for a region. If method_name is given the exact method is used, otherwise the cheapest one.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"region": {
					Type:     "string",
					Desc:     "Destination region code.",
					Required: true,
				},
				"method_name": {
					Type: "string",
					Desc: "Optional exact shipping method name.",
				},
			}),
		},
		func(ctx context.Context, in *EstimateDeliveryCostInput) (*EstimateDeliveryCostOutput, error) {
			var (
				method *store.ShippingMethod
				err    error
			)
			if in.MethodName != "" {
				method, err = deps.Store.ShippingMethodByName(ctx, in.Region, in.MethodName)
			} else {
				method, err = deps.Store.CheapestShippingMethod(ctx, in.Region, nil)
			}
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolEstimateDeliveryCost).Str("region", in.Region).
					Msg("Store lookup failed; returning not found")
				return &EstimateDeliveryCostOutput{Found: false, Region: in.Region}, nil
			}
			return &EstimateDeliveryCostOutput{
				Found:    method != nil,
				Region:   in.Region,
				Estimate: shippingMethodView(method),
			}, nil
		},
	)
}
