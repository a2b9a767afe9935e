package models

import "time"

// MessageRole identifies who produced a checkpointed conversation message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// maxCheckpointMessages bounds ConversationCheckpoint.Messages (spec §3).
const maxCheckpointMessages = 50

// Message is one turn of a checkpointed conversation. Content is an opaque
// payload: the runtime's Content variant round-trips through it unexamined.
type Message struct {
	Role    MessageRole `json:"role"`
	Content Content     `json:"content"`
}

// ConversationCheckpoint is a trimmed snapshot of an agent's conversation,
// saved so a crashed or paused run can resume from the last known step.
type ConversationCheckpoint struct {
	TaskID    string    `json:"taskId"`
	ProjectID string    `json:"projectId"`
	StepIndex int       `json:"stepIndex"`
	SavedAt   time.Time `json:"savedAt"`
	Messages  []Message `json:"messages"`
}

// AddMessage appends a message, dropping the oldest when the checkpoint
// exceeds maxCheckpointMessages.
func (c *ConversationCheckpoint) AddMessage(m Message) {
	c.Messages = append(c.Messages, m)
	if len(c.Messages) > maxCheckpointMessages {
		c.Messages = c.Messages[len(c.Messages)-maxCheckpointMessages:]
	}
}
