package assembler

import (
	"strings"
	"time"

	"goa.design/agui/protocol"
	"goa.design/agui/state"
)

// Phase tracks where a run is in its lifecycle. A run starts Idle,
// moves to Running on RUN_STARTED and ends Terminal on RUN_FINISHED or
// RUN_ERROR. Only a new RUN_STARTED leaves Terminal.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseTerminal
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseTerminal:
		return "terminal"
	}
	return "unknown"
}

type (
	// runState is the per-run mutable state folded by the assembler:
	// the tracked state tree plus the currently open spans.
	runState struct {
		threadID string
		runID    string
		phase    Phase
		started  time.Time

		// tree is the tracked application state, always non-nil while
		// Running (an empty mapping until a snapshot or delta arrives).
		tree *state.Value

		messages  map[string]*messageSpan
		toolCalls map[string]*toolCallSpan
		thinking  *thinkingSpan

		// openSteps tracks steps started but not yet finished, in
		// start order.
		openSteps []string

		// history accumulates sealed messages and tool calls in the
		// order they closed. A MESSAGES_SNAPSHOT replaces the message
		// history wholesale.
		history      []protocol.Message
		calls        []protocol.ToolCall
		thoughts     []Thought
		errorMessage string
		errorCode    string
	}

	// messageSpan accumulates the streamed fragments of one message.
	messageSpan struct {
		id   string
		role protocol.Role
		text strings.Builder
	}

	// toolCallSpan accumulates the streamed argument fragments of one
	// tool call.
	toolCallSpan struct {
		id       string
		name     string
		parentID string
		args     strings.Builder
	}

	// thinkingSpan tracks the single optional reasoning phase. textOpen
	// distinguishes the phase being open from its streamed text span
	// being open.
	thinkingSpan struct {
		title    string
		text     strings.Builder
		textOpen bool
	}

	// Thought is one completed reasoning phase.
	Thought struct {
		Title string
		Text  string
	}
)

func newRunState(threadID, runID string) *runState {
	return &runState{
		threadID:  threadID,
		runID:     runID,
		phase:     PhaseRunning,
		started:   time.Now(),
		tree:      state.Mapping(),
		messages:  make(map[string]*messageSpan),
		toolCalls: make(map[string]*toolCallSpan),
	}
}

// sealMessage removes the span and returns its assembled record.
func (r *runState) sealMessage(span *messageSpan) protocol.Message {
	delete(r.messages, span.id)
	msg := protocol.Message{ID: span.id, Role: span.role, Content: span.text.String()}
	r.history = append(r.history, msg)
	return msg
}

// sealToolCall removes the span and returns its assembled record.
func (r *runState) sealToolCall(span *toolCallSpan) protocol.ToolCall {
	delete(r.toolCalls, span.id)
	call := protocol.ToolCall{
		ID:   span.id,
		Type: "function",
		Function: protocol.FunctionCall{
			Name:      span.name,
			Arguments: span.args.String(),
		},
	}
	r.calls = append(r.calls, call)
	return call
}

// sealThinking clears the reasoning phase and returns the completed
// thought.
func (r *runState) sealThinking() Thought {
	thought := Thought{Title: r.thinking.title, Text: r.thinking.text.String()}
	r.thoughts = append(r.thoughts, thought)
	r.thinking = nil
	return thought
}
