package model

// ================ Config ================
type ConversationConfig struct {
	TTL        string `envconfig:"CONVERSATION_TTL" default:"15m"`
	Classifier struct {
		MaxTurns int `envconfig:"CONVERSATION_CLASSIFIER_MAX_TURNS" default:"5"`
	}
	Tools struct {
		MaxCalls int `envconfig:"CONVERSATION_TOOL_MAX_CALLS" default:"10"`
	}
}

type ClassifierModelConfig struct {
	Model       string  `envconfig:"CLASSIFIER_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"CLASSIFIER_MAX_TOKENS" default:"200"`
	Temperature float32 `envconfig:"CLASSIFIER_TEMPERATURE" default:"0.1"`
}

type ResponseModelConfig struct {
	Model       string  `envconfig:"RESPONSE_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"RESPONSE_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"RESPONSE_TEMPERATURE" default:"0.1"`
}

type RetrievalConfig struct {
	IndexPath      string `envconfig:"RETRIEVAL_INDEX_PATH" default:"./data"`
	TopK           int    `envconfig:"RETRIEVAL_TOP_K" default:"3"`
	EmbeddingModel string `envconfig:"RETRIEVAL_EMBEDDING_MODEL" default:"text-embedding-004"`
	ChunkSize      int    `envconfig:"RETRIEVAL_CHUNK_SIZE" default:"400"`
}

// PolicyConfig holds the business rule parameters embedded in the tool layer.
type PolicyConfig struct {
	PaymentCooldownMinutes int `envconfig:"POLICY_PAYMENT_COOLDOWN_MINUTES" default:"30"`
	ReturnWindowDays       int `envconfig:"POLICY_RETURN_WINDOW_DAYS" default:"14"`
	// DefaultCustomerID identifies the session customer when the boundary
	// does not supply one. Used by the customer-scoped lookup tools.
	DefaultCustomerID int `envconfig:"POLICY_DEFAULT_CUSTOMER_ID" default:"501"`
}
