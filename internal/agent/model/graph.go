package model

import (
	"github.com/cloudwego/eino/schema"
)

// AppState stores per-invocation state for the Eino Graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as you never touch it outside handlers.
//
// The routing decision lives here (and in the branch value), never in
// process-wide state, so concurrent requests cannot observe each other.
type AppState struct {
	ConversationID       string
	Intent               Intent            // set by the classifier post-handler
	History              []*schema.Message // mutated only inside Eino state handlers
	ToolCallCount        int               // maintained in handlers (reset/increment)
	ToolCallLimitReached bool              // set when tool call limit is exceeded
	ToolCallIDSeq        int               // local sequence to synthesize tool_call_id when provider omits
}

// QueryInput represents the input for processing user queries.
type QueryInput struct {
	ConversationID string `json:"conversation_id"`
	Query          string `json:"query"`
}

// IntentDecision is the classifier output consumed by the dispatch branch.
// Utterance carries the trimmed user message so handler nodes do not need to
// re-extract it from history.
type IntentDecision struct {
	Intent    Intent `json:"intent"`
	Utterance string `json:"utterance"`
}
