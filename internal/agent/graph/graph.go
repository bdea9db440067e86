// Package graph composes the support assistant's dispatch graph: one
// classifier decides between knowledge retrieval, database tools, small talk
// and refusal, and the matching handler produces the reply.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/cs-support-assistant/server/internal/agent/graph/conversations"
	"github.com/cs-support-assistant/server/internal/agent/graph/nodes"
	"github.com/cs-support-assistant/server/internal/agent/graph/observers"
	"github.com/cs-support-assistant/server/internal/agent/graph/prompts"
	"github.com/cs-support-assistant/server/internal/agent/graph/tools"
	"github.com/cs-support-assistant/server/internal/agent/model"
	"github.com/cs-support-assistant/server/internal/knowledge"
	logx "github.com/cs-support-assistant/server/pkg/logger"
)

// Runner is a thin wrapper to execute the compiled graph with the public QueryInput.
type Runner interface {
	Invoke(ctx context.Context, in model.QueryInput) (string, error)
}

// Config holds everything needed to compose the full support graph
// end-to-end. This is a convenience layer over GraphConfig that also
// constructs ChatModels and MessagesManager.
type Config struct {
	APIKey           string
	BaseURL          string
	ClassifierModel  model.ClassifierModelConfig
	ResponseModel    model.ResponseModelConfig
	Conversation     model.ConversationConfig
	ConversationRepo model.ConversationRepository
	ToolDeps         *tools.Deps
	Retriever        *knowledge.Retriever
}

// GraphConfig holds all configuration needed to build the graph.
type GraphConfig struct {
	ChatModels      *nodes.ChatModels
	MessagesManager *conversations.MessagesManager
	ToolDeps        *tools.Deps
	Retriever       *knowledge.Retriever
	ToolMaxCalls    int
}

// GraphBuilder handles the construction of the support conversation graph.
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.QueryInput, *schema.Message]
}

type graphRunner struct {
	runnable compose.Runnable[model.QueryInput, *schema.Message]
}

// replyIncomplete is the user-facing answer when the graph terminates without
// usable content, e.g. when the tool-call cap cuts off a reply that still
// requested tools.
const replyIncomplete = "Извините, я не смог завершить обработку вашего запроса. Попробуйте переформулировать или уточнить вопрос."

func (r *graphRunner) Invoke(ctx context.Context, in model.QueryInput) (string, error) {
	out, err := r.runnable.Invoke(ctx, model.QueryInput{
		ConversationID: in.ConversationID,
		Query:          in.Query,
	}, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		return "", err
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		logx.Warn().
			Str("conversation_id", in.ConversationID).
			Str("error_kind", "empty_final_answer").
			Msg("Graph terminated without content - returning fallback reply")
		return replyIncomplete, nil
	}
	return out.Content, nil
}

// BuildSupportGraph composes ChatModels, MessagesManager, builds the graph,
// and returns a Runner.
func BuildSupportGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.ConversationRepo == nil {
		return nil, fmt.Errorf("conversation repo is nil")
	}
	if cfg.ToolDeps == nil {
		return nil, fmt.Errorf("tool deps are nil")
	}

	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		APIKey:           cfg.APIKey,
		BaseURL:          cfg.BaseURL,
		ClassifierConfig: &cfg.ClassifierModel,
		RespConfig:       &cfg.ResponseModel,
	})
	if err != nil {
		return nil, err
	}

	mm := conversations.NewMessagesManager(cfg.ConversationRepo, cfg.Conversation)

	runnable, err := BuildGraph(ctx, &GraphConfig{
		ChatModels:      cms,
		MessagesManager: mm,
		ToolDeps:        cfg.ToolDeps,
		Retriever:       cfg.Retriever,
		ToolMaxCalls:    cfg.Conversation.Tools.MaxCalls,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Support graph built successfully")
	return &graphRunner{runnable: runnable}, nil
}

// BuildGraph constructs and returns the compiled support graph.
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.QueryInput, *schema.Message], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModels == nil || config.ChatModels.Classifier == nil || config.ChatModels.Response == nil {
		return nil, fmt.Errorf("chat models are not properly initialized")
	}
	if config.MessagesManager == nil {
		return nil, fmt.Errorf("messages manager is nil")
	}
	if config.ToolDeps == nil || config.ToolDeps.Store == nil {
		return nil, fmt.Errorf("tool deps are not properly initialized")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.QueryInput, *schema.Message](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	if err := builder.setupTools(ctx); err != nil {
		return nil, err
	}

	if err := builder.addNodes(ctx); err != nil {
		return nil, err
	}

	builder.addEdges()

	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// setupTools configures the support tools, binds them to the response model
// and registers the tool executor node.
func (b *GraphBuilder) setupTools(ctx context.Context) error {
	supportTools := tools.GetSupportTools(b.config.ToolDeps)
	toolInfos, err := tools.GetToolInfos(ctx, supportTools)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to get tool infos")
		return fmt.Errorf("failed to get tool infos: %w", err)
	}

	boundModel, err := b.config.ChatModels.ToolBoundResponseModel(ctx, toolInfos)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools to response model")
		return fmt.Errorf("failed to bind tools to response model: %w", err)
	}

	toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
		Tools:               supportTools,
		ExecuteSequentially: true,
		UnknownToolsHandler: func(ctx context.Context, name, input string) (string, error) {
			// Gracefully handle hallucinated or malformed tool calls
			logx.Warn().
				Str("tool_name", name).
				Str("arguments", input).
				Msg("Unknown or invalid tool call; returning fallback result")
			return fmt.Sprintf("{\"error\":\"unknown_tool\",\"name\":%q,\"note\":\"ignored\"}", name), nil
		},
		ToolArgumentsHandler: sanitizeToolArguments,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Failed to create tools node")
		return fmt.Errorf("failed to create tools node: %w", err)
	}

	b.graph.AddToolsNode(nodes.NodeToolExecutor, toolsNode,
		compose.WithStatePreHandler(nodes.NewToolExecutorPreHandler(b.config.ToolMaxCalls)),
	)

	b.graph.AddChatModelNode(nodes.NodeResponseChatModel,
		boundModel,
		compose.WithStatePreHandler(nodes.NewResponseChatModelPreHandler(b.config.ToolMaxCalls)),
		compose.WithStatePostHandler(nodes.NewResponseChatModelPostHandler(b.config.MessagesManager, b.config.ChatModels.ResponseModelName)),
	)

	return nil
}

// sanitizeToolArguments best-effort normalizes model-produced arguments
// before dispatch; it never fails hard.
func sanitizeToolArguments(ctx context.Context, name, arguments string) (string, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(arguments), &m); err != nil {
		// keep original if not JSON
		return arguments, nil
	}

	trimString := func(key string) {
		if v, ok := m[key]; ok {
			switch vv := v.(type) {
			case string:
				m[key] = strings.TrimSpace(vv)
			default:
				m[key] = strings.TrimSpace(fmt.Sprint(v))
			}
		}
	}
	coerceInt := func(key string) {
		if v, ok := m[key]; ok {
			switch vv := v.(type) {
			case float64:
				// JSON numbers decode as float64
				m[key] = int(vv)
			case string:
				if n, err := strconv.Atoi(strings.TrimSpace(vv)); err == nil {
					m[key] = n
				} else {
					delete(m, key)
				}
			default:
				delete(m, key)
			}
		}
	}

	switch name {
	case tools.ToolTrackOrderBasic, tools.ToolTrackLatestStatus,
		tools.ToolLastPaymentStatus, tools.ToolLastReturnStatus:
		coerceInt("order_id")
	case tools.ToolTrackByTrackingNo:
		trimString("tracking_no")
	case tools.ToolDeliveryOptionsByRegion:
		trimString("region")
	case tools.ToolCheapestDelivery:
		trimString("region")
		coerceInt("max_days")
	case tools.ToolEstimateDeliveryCost:
		trimString("region")
		trimString("method_name")
	case tools.ToolCanRetryPayment:
		coerceInt("order_id")
		coerceInt("cooldown_minutes")
	case tools.ToolPaymentRetrySteps:
		coerceInt("order_id")
		trimString("preferred_method")
	case tools.ToolReturnEligibility:
		coerceInt("order_id")
		coerceInt("policy_days")
	case tools.ToolRequestReturnLabel:
		coerceInt("order_id")
		trimString("email")
	case tools.ToolMyOrders, tools.ToolMyPayments, tools.ToolMyReturns:
		coerceInt("customer_id")
	case tools.ToolMyOrderStatus:
		coerceInt("order_id")
		coerceInt("customer_id")
	case tools.ToolSearchSupportDocs:
		trimString("query")
	}

	b, err := json.Marshal(m)
	if err != nil {
		return arguments, nil
	}
	return string(b), nil
}

// addNodes adds the classifier and the four intent handlers to the graph.
func (b *GraphBuilder) addNodes(ctx context.Context) error {
	b.graph.AddLambdaNode(nodes.NodeIntentClassifier,
		nodes.NewIntentClassifierNode(b.config.MessagesManager, b.config.ChatModels.Classifier),
		compose.WithStatePreHandler(nodes.NewIntentClassifierPreHandler()),
		compose.WithStatePostHandler(nodes.NewIntentClassifierPostHandler()),
	)

	knowledgePrompt, err := prompts.RenderKnowledgeSystem(ctx)
	if err != nil {
		return fmt.Errorf("render knowledge prompt: %w", err)
	}
	answerer := knowledge.NewAnswerer(b.config.Retriever, b.config.ChatModels.Response, knowledgePrompt)

	b.graph.AddLambdaNode(nodes.NodeKnowledge,
		nodes.NewKnowledgeNode(answerer, b.config.MessagesManager),
	)

	b.graph.AddLambdaNode(nodes.NodeConversational,
		nodes.NewConversationalNode(b.config.ChatModels.Response, b.config.MessagesManager),
	)

	b.graph.AddLambdaNode(nodes.NodeRefusal,
		nodes.NewRefusalNode(b.config.MessagesManager),
	)

	b.graph.AddLambdaNode(nodes.NodeToolContext,
		nodes.NewToolContextNode(b.config.MessagesManager),
	)

	return nil
}

// addEdges creates the unconditional flow connections between nodes.
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeIntentClassifier},
		{nodes.NodeKnowledge, compose.END},
		{nodes.NodeConversational, compose.END},
		{nodes.NodeRefusal, compose.END},
		{nodes.NodeToolContext, nodes.NodeResponseChatModel},
		{nodes.NodeToolExecutor, nodes.NodeResponseChatModel},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates the intent dispatch and the tool loop branches.
func (b *GraphBuilder) addBranches() error {
	dispatchBranch := compose.NewGraphBranch(
		nodes.NewIntentRouteCondition(),
		map[string]bool{
			nodes.NodeKnowledge:      true,
			nodes.NodeToolContext:    true,
			nodes.NodeConversational: true,
			nodes.NodeRefusal:        true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeIntentClassifier, dispatchBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding intent dispatch branch")
		return fmt.Errorf("error adding intent dispatch branch: %w", err)
	}

	toolLoopBranch := compose.NewGraphBranch(
		nodes.NewToolExecutorCondition(),
		map[string]bool{
			nodes.NodeToolExecutor: true,
			compose.END:            true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeResponseChatModel, toolLoopBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding tool loop branch")
		return fmt.Errorf("error adding tool loop branch: %w", err)
	}

	return nil
}

// compile finalizes and compiles the graph.
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.QueryInput, *schema.Message], error) {
	// Limit total run steps to avoid infinite loops in branching or tool retries
	maxSteps := 10 + b.config.ToolMaxCalls*2
	if maxSteps < 20 {
		maxSteps = 20
	}

	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
