package model

import (
	"fmt"
	"strings"
)

// Intent is the routing label assigned to a user request. Exactly one is
// produced per request and consumed once to pick a handler branch.
type Intent string

const (
	// IntentKnowledge routes policy/procedure questions to the knowledge base.
	IntentKnowledge Intent = "rag"
	// IntentToolUse routes requests that need order/delivery/payment/return data.
	IntentToolUse Intent = "tools"
	// IntentConversational routes greetings, thanks and capability questions.
	IntentConversational Intent = "general"
	// IntentUnsupported routes anything outside the support domain to a refusal.
	IntentUnsupported Intent = "cannot_help"
)

// ParseIntent validates a raw classifier label against the closed enumeration.
func ParseIntent(s string) (Intent, error) {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentKnowledge:
		return IntentKnowledge, nil
	case IntentToolUse:
		return IntentToolUse, nil
	case IntentConversational:
		return IntentConversational, nil
	case IntentUnsupported:
		return IntentUnsupported, nil
	default:
		return "", fmt.Errorf("unknown intent label %q", s)
	}
}
