// Package prompt assembles the ordered message list sent to the completion
// endpoint for a single question.
package prompt

import (
	"fmt"

	"github.com/edgard/schoolbot/internal/history"
)

// Role tags a prompt message.
type Role string

// Roles understood by the completion endpoints.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry of a prompt.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Builder renders prompts from a system template carrying one %s verb for
// the domain context.
type Builder struct {
	template string
}

// NewBuilder returns a Builder for the given system template.
func NewBuilder(template string) Builder {
	return Builder{template: template}
}

// System renders the system instruction for domainContext.
func (b Builder) System(domainContext string) string {
	return fmt.Sprintf(b.template, domainContext)
}

// Build returns the system entry, then a user/assistant pair per exchange in
// chronological order, then the new question as the final user entry.
// The result always has 2+2*len(exchanges) entries.
func (b Builder) Build(question string, exchanges []history.Exchange, domainContext string) []Message {
	messages := make([]Message, 0, 2+2*len(exchanges))
	messages = append(messages, Message{Role: RoleSystem, Text: b.System(domainContext)})
	for _, ex := range exchanges {
		messages = append(messages,
			Message{Role: RoleUser, Text: ex.Question},
			Message{Role: RoleAssistant, Text: ex.Answer},
		)
	}
	return append(messages, Message{Role: RoleUser, Text: question})
}
