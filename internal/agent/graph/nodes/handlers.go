package nodes

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/cs-support-assistant/server/internal/agent/graph/conversations"
	"github.com/cs-support-assistant/server/internal/agent/graph/prompts"
	"github.com/cs-support-assistant/server/internal/agent/model"
	"github.com/cs-support-assistant/server/internal/knowledge"
	logx "github.com/cs-support-assistant/server/pkg/logger"
)

// Canned replies for the conversational and refusal handlers. The assistant
// speaks Russian by default, mirroring the support audience.
const (
	replyDefaultGreeting = "Привет! Чем могу помочь?"
	replyGreeting        = "Привет! Я ассистент поддержки клиентов. Могу помочь с заказами, доставкой, платежами и возвратами. Что вас интересует?"
	replyCapabilities    = "Я помогаю с:\n• Отслеживанием заказов\n• Вариантами доставки\n• Вопросами по оплате\n• Возвратами товаров\n• Общими вопросами поддержки\n\nО чем хотите узнать?"
	replyThanks          = "Пожалуйста! Если возникнут еще вопросы - обращайтесь."
	replyAboutService    = "Могу рассказать о наших сервисах поддержки клиентов! Мы помогаем отслеживать заказы, выбирать варианты доставки, решать вопросы с оплатой и оформлять возвраты. Есть конкретные вопросы?"
	replyRefusal         = "Извините, я могу помочь только с вопросами поддержки клиентов: отслеживание заказов, варианты доставки, вопросы по оплате, возвраты и общие вопросы о сервисе. Есть ли что-то из этого, с чем я могу помочь?"
	replyKnowledgeError  = "Извините, не могу получить информацию из базы знаний. Попробуйте переформулировать вопрос."
)

// NewKnowledgeNode answers documentation questions through the retrieval
// pipeline. Retrieval or generation failures are logged and replaced with an
// apology rather than failing the query.
func NewKnowledgeNode(answerer *knowledge.Answerer, mm *conversations.MessagesManager) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, decision model.IntentDecision) (*schema.Message, error) {
		out, err := answerer.Answer(ctx, decision.Utterance)
		if err != nil {
			logx.Error().Err(err).
				Str("error_kind", "knowledge_answer").
				Msg("Knowledge answer failed - returning apology")
			out = schema.AssistantMessage(replyKnowledgeError, nil)
		}
		if out.Role != schema.Assistant {
			out = schema.AssistantMessage(out.Content, nil)
		}

		saveFinalReply(ctx, mm, out.Content)
		return out, nil
	})
}

// conversationalReply returns the canned reply for recognized small-talk
// patterns, or false when the utterance needs the persona model.
func conversationalReply(utterance string) (string, bool) {
	msg := strings.ToLower(strings.TrimSpace(utterance))
	if msg == "" {
		return replyDefaultGreeting, true
	}

	groups := []struct {
		words []string
		reply string
	}{
		{[]string{"привет", "здравствуй", "добрый", "hello", "hi"}, replyGreeting},
		{[]string{"что можешь", "что умеешь", "возможности", "помощь", "help"}, replyCapabilities},
		{[]string{"спасибо", "благодарю", "thanks"}, replyThanks},
		{[]string{"интересного", "interesting", "расскажешь", "tell me"}, replyAboutService},
	}
	for _, g := range groups {
		for _, w := range g.words {
			if strings.Contains(msg, w) {
				return g.reply, true
			}
		}
	}
	return "", false
}

// NewConversationalNode handles small talk. Recognized patterns get a canned
// reply without a model call; everything else goes to the persona model, with
// the default greeting as the failure fallback.
func NewConversationalNode(personaModel einomodel.BaseChatModel, mm *conversations.MessagesManager) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, decision model.IntentDecision) (*schema.Message, error) {
		if reply, ok := conversationalReply(decision.Utterance); ok {
			out := schema.AssistantMessage(reply, nil)
			saveFinalReply(ctx, mm, out.Content)
			return out, nil
		}

		systemPrompt, err := prompts.RenderPersonaSystem(ctx)
		if err != nil {
			return nil, fmt.Errorf("render persona prompt: %w", err)
		}

		resp, err := personaModel.Generate(ctx, []*schema.Message{
			schema.SystemMessage(systemPrompt),
			schema.UserMessage(decision.Utterance),
		})
		if err != nil {
			logx.Error().Err(err).
				Str("error_kind", "persona_generate").
				Msg("Persona model failed - returning default greeting")
			resp = schema.AssistantMessage(replyDefaultGreeting, nil)
		}
		if resp.Role != schema.Assistant {
			resp = schema.AssistantMessage(resp.Content, nil)
		}

		saveFinalReply(ctx, mm, resp.Content)
		return resp, nil
	})
}

// NewRefusalNode declines out-of-scope requests with a fixed message listing
// what the assistant can do instead.
func NewRefusalNode(mm *conversations.MessagesManager) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, decision model.IntentDecision) (*schema.Message, error) {
		out := schema.AssistantMessage(replyRefusal, nil)
		saveFinalReply(ctx, mm, out.Content)
		return out, nil
	})
}

// saveFinalReply persists a terminal assistant message. Storage failures are
// logged but never surfaced: the user still gets the reply.
func saveFinalReply(ctx context.Context, mm *conversations.MessagesManager, content string) {
	var conversationID string
	if err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
		conversationID = state.ConversationID
		return nil
	}); err != nil {
		logx.Error().Err(err).Str("error_kind", "state_access").Msg("Failed to read conversation ID for save")
		return
	}
	if strings.TrimSpace(content) == "" {
		return
	}
	if err := mm.SaveResponse(ctx, conversationID, content); err != nil {
		logx.Error().
			Str("conversation_id", conversationID).
			Str("error_kind", "save_response").
			Err(err).
			Msg("Error saving assistant response")
	}
}
