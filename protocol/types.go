package protocol

import "goa.design/agui/state"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleDeveloper Role = "developer"
)

type (
	// FunctionCall names a tool and carries its argument text. Arguments
	// is the raw JSON string assembled from streamed fragments.
	FunctionCall struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	}

	// ToolCall records one tool invocation attached to an assistant
	// message.
	ToolCall struct {
		ID       string       `json:"id"`
		Type     string       `json:"type"`
		Function FunctionCall `json:"function"`
	}

	// Message is one full conversation record, as carried by
	// MESSAGES_SNAPSHOT. Content is empty for pure tool-call messages;
	// ToolCallID links a tool-role message back to the call it answers.
	Message struct {
		ID         string     `json:"id"`
		Role       Role       `json:"role"`
		Content    string     `json:"content,omitempty"`
		Name       string     `json:"name,omitempty"`
		ToolCalls  []ToolCall `json:"toolCalls,omitempty"`
		ToolCallID string     `json:"toolCallId,omitempty"`
	}

	// Tool describes one tool available to the agent. Parameters is a
	// JSON Schema document.
	Tool struct {
		Name        string       `json:"name"`
		Description string       `json:"description,omitempty"`
		Parameters  *state.Value `json:"parameters,omitempty"`
	}

	// Context is one named context value supplied to a run.
	Context struct {
		Description string `json:"description,omitempty"`
		Value       string `json:"value"`
	}

	// RunAgentInput is the request record a client sends to start a run.
	RunAgentInput struct {
		ThreadID string       `json:"threadId"`
		RunID    string       `json:"runId"`
		Messages []Message    `json:"messages,omitempty"`
		Tools    []Tool       `json:"tools,omitempty"`
		Context  []Context    `json:"context,omitempty"`
		State    *state.Value `json:"state,omitempty"`
	}
)
