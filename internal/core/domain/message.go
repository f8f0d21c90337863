package domain

// Message is a provider-neutral conversation entry sent to a chat backend.
// Adapters translate it to and from their wire formats.
type Message struct {
	// Role is one of system, user, assistant, tool.
	Role string `json:"role"`

	// Content is the message text. May be empty for an assistant turn that
	// only requests tool calls.
	Content string `json:"content"`

	// ToolCalls carries tool invocations requested by an assistant turn.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a tool-role message back to the call it answers.
	// Only the hosted-gateway protocol uses it; the local-model protocol
	// feeds results back as plain tool messages.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// ToolCall is a single tool invocation requested by the model.
type ToolCall struct {
	// ID is the provider-assigned call identifier, empty for providers
	// that do not tag calls.
	ID string `json:"id,omitempty"`

	// Name is the registered tool name.
	Name string `json:"name"`

	// Arguments are the decoded call arguments. The model may return them
	// loosely typed; the dispatcher validates them against the tool's
	// parameter schema.
	Arguments map[string]any `json:"arguments"`
}

// AssistantTurn is the result of one non-streaming provider call.
type AssistantTurn struct {
	// Content is the assistant's text, possibly empty when tools are
	// requested instead.
	Content string

	// ToolCalls are the tool invocations requested this turn, in the
	// order the model returned them.
	ToolCalls []ToolCall
}

// HasToolCalls reports whether the turn requests any tool invocations.
func (t *AssistantTurn) HasToolCalls() bool {
	return len(t.ToolCalls) > 0
}

// AssistantMessage converts the turn into a conversation message so it can
// be appended before tool results are fed back.
func (t *AssistantTurn) AssistantMessage() Message {
	return Message{
		Role:      RoleAssistant,
		Content:   t.Content,
		ToolCalls: t.ToolCalls,
	}
}
