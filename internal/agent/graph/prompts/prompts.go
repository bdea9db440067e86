package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/cs-support-assistant/server/internal/agent/graph/tools"
)

//go:embed template/classifier_prompt.txt
var classifierSystemPrompt string

//go:embed template/tool_agent_prompt.txt
var toolAgentSystemPrompt string

//go:embed template/knowledge_prompt.txt
var knowledgeSystemPrompt string

//go:embed template/persona_prompt.txt
var personaSystemPrompt string

// RenderClassifierSystem renders the intent classifier rubric via the Eino
// prompt component. Routing it through the component emits prompt callbacks.
func RenderClassifierSystem(ctx context.Context) (string, error) {
	return renderStatic(ctx, classifierSystemPrompt)
}

// RenderToolAgentSystem renders the tool-using agent system prompt with the
// registered tool names substituted in.
func RenderToolAgentSystem(ctx context.Context) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(toolAgentSystemPrompt),
	)
	vars := map[string]any{
		"TrackOrderTool":           tools.ToolTrackOrderBasic,
		"TrackByTrackingNoTool":    tools.ToolTrackByTrackingNo,
		"TrackLatestStatusTool":    tools.ToolTrackLatestStatus,
		"DeliveryOptionsTool":      tools.ToolDeliveryOptionsByRegion,
		"CheapestDeliveryTool":     tools.ToolCheapestDelivery,
		"EstimateDeliveryCostTool": tools.ToolEstimateDeliveryCost,
		"LastPaymentStatusTool":    tools.ToolLastPaymentStatus,
		"CanRetryPaymentTool":      tools.ToolCanRetryPayment,
		"PaymentRetryStepsTool":    tools.ToolPaymentRetrySteps,
		"LastReturnStatusTool":     tools.ToolLastReturnStatus,
		"ReturnEligibilityTool":    tools.ToolReturnEligibility,
		"RequestReturnLabelTool":   tools.ToolRequestReturnLabel,
		"MyOrdersTool":             tools.ToolMyOrders,
		"MyPaymentsTool":           tools.ToolMyPayments,
		"MyReturnsTool":            tools.ToolMyReturns,
		"SearchSupportDocsTool":    tools.ToolSearchSupportDocs,
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("tool agent prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("tool agent prompt render: empty result")
	}
	return msgs[0].Content, nil
}

// RenderKnowledgeSystem renders the knowledge-answering system prompt.
func RenderKnowledgeSystem(ctx context.Context) (string, error) {
	return renderStatic(ctx, knowledgeSystemPrompt)
}

// RenderPersonaSystem renders the conversational fallback persona prompt.
func RenderPersonaSystem(ctx context.Context) (string, error) {
	return renderStatic(ctx, personaSystemPrompt)
}

// renderStatic wraps a fixed prompt in a messages placeholder so the Eino
// prompt component still emits callbacks without template interference.
func renderStatic(ctx context.Context, content string) (string, error) {
	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("system_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"system_messages": []*schema.Message{schema.SystemMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("prompt callbacks: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("prompt callbacks: empty result")
	}
	return msgs[0].Content, nil
}
