package nodes

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/cs-support-assistant/server/internal/agent/graph/conversations"
	"github.com/cs-support-assistant/server/internal/agent/graph/parsers"
	"github.com/cs-support-assistant/server/internal/agent/graph/prompts"
	"github.com/cs-support-assistant/server/internal/agent/model"
	logx "github.com/cs-support-assistant/server/pkg/logger"
)

// Node names used when wiring the graph.
const (
	NodeIntentClassifier  = "IntentClassifier"
	NodeKnowledge         = "KnowledgeAnswer"
	NodeConversational    = "Conversational"
	NodeRefusal           = "Refusal"
	NodeToolContext       = "ToolContextAssembler"
	NodeResponseChatModel = "ResponseChatModel"
	NodeToolExecutor      = "ToolExecutor"
)

// NewIntentClassifierPreHandler creates the pre-handler for the classifier
// node. It seeds the conversation ID and resets the per-query counters.
func NewIntentClassifierPreHandler() func(context.Context, model.QueryInput, *model.AppState) (model.QueryInput, error) {
	return func(ctx context.Context, in model.QueryInput, s *model.AppState) (model.QueryInput, error) {
		if s.ConversationID == "" {
			s.ConversationID = in.ConversationID
		}
		s.Intent = ""
		s.History = nil
		s.ToolCallCount = 0
		s.ToolCallLimitReached = false
		s.ToolCallIDSeq = 0
		return in, nil
	}
}

// NewIntentClassifierNode creates the classifier node. It records the user
// turn, asks the classifier model for one of the four intent labels and
// returns the decision the dispatch branch routes on. Classification failures
// never abort the query: they are logged with their kind and downgraded to the
// conversational default.
func NewIntentClassifierNode(
	mm *conversations.MessagesManager,
	classifier einomodel.BaseChatModel,
) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input model.QueryInput) (model.IntentDecision, error) {
		utterance := strings.TrimSpace(input.Query)
		if utterance == "" {
			// Nothing to classify; skip the model call entirely.
			logx.Debug().Str("conversation_id", input.ConversationID).Msg("Empty query - defaulting to conversational")
			return model.IntentDecision{Intent: model.IntentConversational, Utterance: ""}, nil
		}

		conversationCtx, err := mm.RecordUserMessage(ctx, input.ConversationID, utterance)
		if err != nil {
			return model.IntentDecision{}, fmt.Errorf("record user message: %w", err)
		}

		systemPrompt, err := prompts.RenderClassifierSystem(ctx)
		if err != nil {
			return model.IntentDecision{}, fmt.Errorf("render classifier prompt: %w", err)
		}

		resp, err := classifier.Generate(ctx, []*schema.Message{
			schema.SystemMessage(systemPrompt),
			schema.UserMessage(conversationCtx),
		})
		if err != nil {
			logx.Error().Err(err).
				Str("error_kind", "classifier_generate").
				Str("conversation_id", input.ConversationID).
				Msg("Classifier model failed - defaulting to conversational")
			return model.IntentDecision{Intent: model.IntentConversational, Utterance: utterance}, nil
		}

		intent, err := parsers.ParseIntentLabel(resp.Content)
		if err != nil {
			logx.Warn().Err(err).
				Str("error_kind", "intent_parse").
				Str("raw_label", resp.Content).
				Str("conversation_id", input.ConversationID).
				Msg("Unparseable intent label - defaulting to conversational")
			intent = model.IntentConversational
		}

		return model.IntentDecision{Intent: intent, Utterance: utterance}, nil
	})
}

// NewIntentClassifierPostHandler stores the routing decision in graph state so
// downstream handlers can read it without any process-wide variable.
func NewIntentClassifierPostHandler() func(context.Context, model.IntentDecision, *model.AppState) (model.IntentDecision, error) {
	return func(ctx context.Context, out model.IntentDecision, state *model.AppState) (model.IntentDecision, error) {
		state.Intent = out.Intent
		logx.Debug().
			Str("conversation_id", state.ConversationID).
			Str("intent", string(out.Intent)).
			Msg("Intent decided")
		return out, nil
	}
}

// NewIntentRouteCondition creates the dispatch condition over the classifier
// decision. Unknown values fall through to the conversational handler.
func NewIntentRouteCondition() func(context.Context, model.IntentDecision) (string, error) {
	return func(ctx context.Context, input model.IntentDecision) (string, error) {
		switch input.Intent {
		case model.IntentKnowledge:
			return NodeKnowledge, nil
		case model.IntentToolUse:
			return NodeToolContext, nil
		case model.IntentUnsupported:
			return NodeRefusal, nil
		default:
			return NodeConversational, nil
		}
	}
}

// NewToolContextNode assembles the message context for the tool-using
// response model: the tool agent system prompt followed by the stored history.
func NewToolContextNode(mm *conversations.MessagesManager) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, decision model.IntentDecision) ([]*schema.Message, error) {
		var conversationID string
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			conversationID = state.ConversationID
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		systemPrompt, err := prompts.RenderToolAgentSystem(ctx)
		if err != nil {
			return nil, fmt.Errorf("render tool agent prompt: %w", err)
		}

		messages, err := mm.BuildResponseContext(ctx, conversationID, systemPrompt)
		if err != nil {
			return nil, fmt.Errorf("build response context: %w", err)
		}

		return messages, nil
	})
}

// NewResponseChatModelPreHandler creates the pre-handler for the response
// model node. It accumulates the tool loop history in state and, once the
// tool call limit is hit, appends a wrap-up notice so the model produces a
// final answer from what it already gathered.
func NewResponseChatModelPreHandler(maxToolCalls int) func(context.Context, []*schema.Message, *model.AppState) ([]*schema.Message, error) {
	return func(ctx context.Context, in []*schema.Message, state *model.AppState) ([]*schema.Message, error) {
		// Gemini may return tool results without tool_call_id; recover it from
		// the most recent assistant tool call in history.
		if len(in) > 0 {
			last := in[len(in)-1]
			if last != nil && last.Role == schema.Tool && strings.TrimSpace(last.ToolCallID) == "" {
				for i := len(state.History) - 1; i >= 0; i-- {
					msg := state.History[i]
					if msg == nil || msg.Role != schema.Assistant || len(msg.ToolCalls) == 0 {
						continue
					}
					id := msg.ToolCalls[0].ID
					if strings.TrimSpace(id) != "" {
						last.ToolCallID = id
					}
					break
				}
			}
		}

		state.History = append(state.History, in...)

		if checkAndMarkToolLimit(state, maxToolCalls) {
			maxToolCalls = normalizeMaxToolCalls(maxToolCalls)
			wrapUp := &schema.Message{
				Role: schema.System,
				Content: fmt.Sprintf(
					"SYSTEM NOTICE: You have reached the maximum tool call limit (%d). "+
						"Please synthesize a helpful response using the information you've already gathered. "+
						"Acknowledge any limitations in your response if you couldn't complete all necessary tool calls.",
					maxToolCalls,
				),
			}
			state.History = append(state.History, wrapUp)
		}

		logx.Debug().Msg("AI thinking...")

		return state.History, nil
	}
}

// NewResponseChatModelPostHandler creates the post-handler for the response
// model node: it normalizes tool call IDs, appends the output to history and
// persists final assistant answers.
func NewResponseChatModelPostHandler(
	mm *conversations.MessagesManager,
	modelName string,
) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		if out == nil {
			return nil, fmt.Errorf("response model returned nil message")
		}

		// Some providers omit tool_call IDs; synthesize stable ones so the
		// tool results can be matched back.
		if len(out.ToolCalls) > 0 {
			for i := range out.ToolCalls {
				if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
					state.ToolCallIDSeq++
					out.ToolCalls[i].ID = fmt.Sprintf("call_%d", state.ToolCallIDSeq)
				}
			}
		}

		state.History = append(state.History, out)

		if len(out.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(out.ToolCalls)).Str("model", modelName).Msg("Calling tools")
		} else {
			logx.Debug().Str("model", modelName).Msg("AI response ready")
		}

		// Save only final assistant messages (no further tool calls), or the
		// wrap-up answer produced after hitting the tool-call limit.
		if out.Role == schema.Assistant && (len(out.ToolCalls) == 0 || state.ToolCallLimitReached) && strings.TrimSpace(out.Content) != "" {
			if err := mm.SaveResponse(ctx, state.ConversationID, out.Content); err != nil {
				logx.Error().
					Str("conversation_id", state.ConversationID).
					Str("error_kind", "save_response").
					Err(err).
					Msg("Error saving assistant response")
			}
		}

		return out, nil
	}
}

// NewToolExecutorCondition creates the condition that either loops into the
// tool executor or finishes the query.
func NewToolExecutorCondition() func(context.Context, *schema.Message) (string, error) {
	return func(ctx context.Context, input *schema.Message) (string, error) {
		var limitReached bool
		if err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			limitReached = state.ToolCallLimitReached
			return nil
		}); err != nil {
			logx.Warn().Err(err).Msg("Could not read tool-limit state - routing on tool calls only")
		}

		if limitReached {
			logx.Debug().Msg("Tool limit reached previously - routing to end")
			return compose.END, nil
		}

		if len(input.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(input.ToolCalls)).Msg("Routing to ToolExecutor")
			return NodeToolExecutor, nil
		}

		logx.Debug().Msg("No tool calls - continuing to end")
		return compose.END, nil
	}
}

// NewToolExecutorPreHandler creates the pre-handler for the tool executor
// node. It maintains the tool call counter backing the loop cap.
func NewToolExecutorPreHandler(maxToolCalls int) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, in *schema.Message, state *model.AppState) (*schema.Message, error) {
		exceeded := incrementToolCallAndCheck(state, maxToolCalls)

		logx.Debug().
			Int("tool_call_count", state.ToolCallCount).
			Str("conversation_id", state.ConversationID).
			Msg("Tool execution attempt")

		if exceeded {
			maxToolCalls = normalizeMaxToolCalls(maxToolCalls)
			logx.Warn().
				Int("tool_call_count", state.ToolCallCount).
				Int("max_tool_calls", maxToolCalls).
				Str("conversation_id", state.ConversationID).
				Msg("Tool call limit exceeded - flagging and continuing")
		}

		return in, nil
	}
}
