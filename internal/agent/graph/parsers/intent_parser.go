package parsers

import (
	"strings"

	"github.com/cs-support-assistant/server/internal/agent/model"
)

// ParseIntentLabel parses the raw classifier output against the closed intent
// enumeration. Models occasionally wrap the label in quotes, backticks or
// trailing punctuation; those are stripped before validation. Anything that
// still fails validation is an error the caller downgrades to the
// conversational default.
func ParseIntentLabel(content string) (model.Intent, error) {
	label := strings.ToLower(strings.TrimSpace(content))
	label = strings.Trim(label, "'\"`.! \n\t")

	return model.ParseIntent(label)
}
