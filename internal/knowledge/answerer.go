package knowledge

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Answerer generates a grounded answer from retrieved context. The system
// prompt is rendered by the caller so prompt templates stay in one place.
type Answerer struct {
	retriever    *Retriever
	chatModel    einomodel.BaseChatModel
	systemPrompt string
}

func NewAnswerer(retriever *Retriever, chatModel einomodel.BaseChatModel, systemPrompt string) *Answerer {
	return &Answerer{retriever: retriever, chatModel: chatModel, systemPrompt: systemPrompt}
}

// Answer retrieves context for the question and asks the model to answer
// strictly from it. Errors bubble to the caller, which owns the degradation
// to a user-facing apology.
func (a *Answerer) Answer(ctx context.Context, question string) (*schema.Message, error) {
	if a.retriever == nil {
		return nil, fmt.Errorf("knowledge retriever is not configured")
	}
	chunks, err := a.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Content)
		b.WriteString("\n")
	}

	messages := []*schema.Message{
		schema.SystemMessage(a.systemPrompt),
		schema.UserMessage(fmt.Sprintf("Context:\n%s\nUser question: %s", b.String(), question)),
	}

	out, err := a.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	return out, nil
}
