package domain

// StreamEventType identifies a normalized chat stream event
type StreamEventType string

const (
	EventContent    StreamEventType = "content"
	EventToolCall   StreamEventType = "tool_call"
	EventToolResult StreamEventType = "tool_result"
	EventDone       StreamEventType = "done"
	EventError      StreamEventType = "error"
)

// StreamEvent is one event emitted by the chat orchestrator. The vocabulary
// is identical regardless of which provider serviced the request.
type StreamEvent struct {
	Type      StreamEventType `json:"type"`
	Content   string          `json:"content,omitempty"`
	Name      string          `json:"name,omitempty"`
	Arguments map[string]any  `json:"arguments,omitempty"`
	Result    string          `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// ContentEvent wraps a chunk of assistant text.
func ContentEvent(content string) StreamEvent {
	return StreamEvent{Type: EventContent, Content: content}
}

// ToolCallEvent announces a tool invocation about to execute.
func ToolCallEvent(name string, args map[string]any) StreamEvent {
	return StreamEvent{Type: EventToolCall, Name: name, Arguments: args}
}

// ToolResultEvent carries the serialized result of a tool invocation.
func ToolResultEvent(name, result string) StreamEvent {
	return StreamEvent{Type: EventToolResult, Name: name, Result: result}
}

// DoneEvent terminates a successful stream.
func DoneEvent() StreamEvent {
	return StreamEvent{Type: EventDone}
}

// ErrorEvent terminates a failed stream with a human-readable message.
func ErrorEvent(msg string) StreamEvent {
	return StreamEvent{Type: EventError, Error: msg}
}
