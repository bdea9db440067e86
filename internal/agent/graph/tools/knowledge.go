package tools

import (
	"context"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	logx "github.com/cs-support-assistant/server/pkg/logger"
)

type SearchSupportDocsInput struct {
	Query string `json:"query"`
}

type SearchSupportDocsOutput struct {
	Chunks []string `json:"chunks"`
}

// createSearchSupportDocsTool lets the tool agent consult the knowledge base
// when a data question also needs policy context. Retrieval failures degrade
// to an empty chunk list.
func createSearchSupportDocsTool(deps *Deps) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolSearchSupportDocs,
			Desc: "Retrieve relevant customer support documentation chunks from the knowledge base for a query.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "Free-text question to search the documentation for.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *SearchSupportDocsInput) (*SearchSupportDocsOutput, error) {
			if deps.Retriever == nil {
				return &SearchSupportDocsOutput{Chunks: []string{}}, nil
			}
			chunks, err := deps.Retriever.Retrieve(ctx, in.Query)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolSearchSupportDocs).
					Msg("Knowledge retrieval failed; returning empty chunks")
				return &SearchSupportDocsOutput{Chunks: []string{}}, nil
			}

			texts := make([]string, 0, len(chunks))
			for _, c := range chunks {
				texts = append(texts, c.Content)
			}
			return &SearchSupportDocsOutput{Chunks: texts}, nil
		},
	)
}
