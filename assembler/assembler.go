// Package assembler folds a decoded event stream into derived run
// state: open message, tool-call and thinking spans, the tracked
// application state tree and the run lifecycle phase. One assembler
// serves one connection; callers feed events strictly in arrival order.
package assembler

import (
	"context"
	"time"

	"goa.design/agui/hooks"
	"goa.design/agui/protocol"
	"goa.design/agui/state"
	"goa.design/agui/telemetry"
)

type (
	// Assembler folds events into a runState and publishes assembly
	// milestones on its hooks bus. Not safe for concurrent use; drive
	// it from a single reader goroutine.
	Assembler struct {
		logger  telemetry.Logger
		metrics telemetry.Metrics
		bus     hooks.Bus

		run *runState
	}

	// Option configures an Assembler.
	Option func(*Assembler)

	// View is an immutable snapshot of the assembled run, safe to
	// retain after further folding.
	View struct {
		ThreadID  string
		RunID     string
		Phase     Phase
		State     *state.Value
		Messages  []protocol.Message
		ToolCalls []protocol.ToolCall
		Thoughts  []Thought
		OpenSteps []string
		// ErrorMessage and ErrorCode are set when the run terminated
		// with RUN_ERROR.
		ErrorMessage string
		ErrorCode    string
	}
)

// WithLogger sets the logger used for consistency warnings and debug
// traces. Defaults to a noop logger.
func WithLogger(logger telemetry.Logger) Option {
	return func(a *Assembler) { a.logger = logger }
}

// WithMetrics sets the metrics recorder. Defaults to noop.
func WithMetrics(metrics telemetry.Metrics) Option {
	return func(a *Assembler) { a.metrics = metrics }
}

// WithBus sets the hooks bus that receives assembly notifications.
// Defaults to a private bus with no subscribers.
func WithBus(bus hooks.Bus) Option {
	return func(a *Assembler) { a.bus = bus }
}

// New constructs an assembler in the Idle phase.
func New(opts ...Option) *Assembler {
	a := &Assembler{
		logger:  telemetry.NewNoopLogger(),
		metrics: telemetry.NewNoopMetrics(),
		bus:     hooks.NewBus(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Bus returns the hooks bus the assembler publishes on, so callers can
// register subscribers after construction.
func (a *Assembler) Bus() hooks.Bus { return a.bus }

// Phase returns the current lifecycle phase.
func (a *Assembler) Phase() Phase {
	if a.run == nil {
		return PhaseIdle
	}
	return a.run.phase
}

// Snapshot returns an immutable view of the assembled run. The state
// tree and slices are copies owned by the caller.
func (a *Assembler) Snapshot() View {
	if a.run == nil {
		return View{Phase: PhaseIdle}
	}
	r := a.run
	v := View{
		ThreadID:     r.threadID,
		RunID:        r.runID,
		Phase:        r.phase,
		State:        r.tree.Clone(),
		Messages:     append([]protocol.Message(nil), r.history...),
		ToolCalls:    append([]protocol.ToolCall(nil), r.calls...),
		Thoughts:     append([]Thought(nil), r.thoughts...),
		OpenSteps:    append([]string(nil), r.openSteps...),
		ErrorMessage: r.errorMessage,
		ErrorCode:    r.errorCode,
	}
	return v
}

// Feed folds one event. Events must be fed in arrival order. A
// *ProtocolError reports a sequencing violation or rejected state
// delta; the derived state is left exactly as it was before the
// offending event and folding may continue. Any other error comes from
// event validation or a bus subscriber.
func (a *Assembler) Feed(ctx context.Context, event protocol.Event) error {
	if event == nil {
		return outOfSequence("")
	}
	if err := event.Validate(); err != nil {
		return err
	}
	kind := event.Kind()
	a.metrics.IncCounter("agui.assembler.events", 1, "type", string(kind))

	if err := a.checkPhase(kind); err != nil {
		a.metrics.IncCounter("agui.assembler.protocol_errors", 1, "type", string(kind))
		return err
	}

	err := a.fold(ctx, event)
	if protoErr, ok := err.(*ProtocolError); ok {
		a.metrics.IncCounter("agui.assembler.protocol_errors", 1, "type", string(kind))
		a.logger.Warn(ctx, "protocol error", "event", string(kind), "err", protoErr.Error())
	}
	return err
}

// checkPhase enforces the Idle → Running → Terminal machine. Only
// RUN_STARTED is legal outside Running.
func (a *Assembler) checkPhase(kind protocol.EventType) error {
	if kind == protocol.EventRunStarted {
		if a.run != nil && a.run.phase == PhaseRunning {
			return outOfSequence(kind)
		}
		return nil
	}
	if a.run == nil || a.run.phase != PhaseRunning {
		return outOfSequence(kind)
	}
	return nil
}

func (a *Assembler) fold(ctx context.Context, event protocol.Event) error {
	switch e := event.(type) {
	case *protocol.RunStartedEvent:
		a.run = newRunState(e.ThreadID, e.RunID)
		a.logger.Info(ctx, "run started", "thread", e.ThreadID, "run", e.RunID)
		return a.bus.Publish(ctx, hooks.NewRunLifecycle(e.ThreadID, e.RunID, "started", "", ""))

	case *protocol.RunFinishedEvent:
		return a.terminate(ctx, "finished", "", "")

	case *protocol.RunErrorEvent:
		a.run.errorMessage = e.Message
		a.run.errorCode = e.Code
		return a.terminate(ctx, "errored", e.Message, e.Code)

	case *protocol.StepStartedEvent:
		a.run.openSteps = append(a.run.openSteps, e.StepName)
		return a.bus.Publish(ctx, hooks.NewStepChanged(a.run.threadID, a.run.runID, e.StepName, false))

	case *protocol.StepFinishedEvent:
		a.finishStep(ctx, e.StepName)
		return a.bus.Publish(ctx, hooks.NewStepChanged(a.run.threadID, a.run.runID, e.StepName, true))

	case *protocol.TextMessageStartEvent:
		if _, open := a.run.messages[e.MessageID]; open {
			return duplicateSpan(e.Type, e.MessageID)
		}
		a.run.messages[e.MessageID] = &messageSpan{id: e.MessageID, role: e.Role}
		return nil

	case *protocol.TextMessageContentEvent:
		span, open := a.run.messages[e.MessageID]
		if !open {
			return unknownSpan(e.Type, e.MessageID)
		}
		span.text.WriteString(e.Delta)
		return nil

	case *protocol.TextMessageEndEvent:
		span, open := a.run.messages[e.MessageID]
		if !open {
			return unknownSpan(e.Type, e.MessageID)
		}
		msg := a.run.sealMessage(span)
		return a.bus.Publish(ctx, hooks.NewMessageAssembled(a.run.threadID, a.run.runID, msg, false))

	case *protocol.ThinkingStartEvent:
		if a.run.thinking != nil {
			return duplicateSpan(e.Type, "thinking")
		}
		a.run.thinking = &thinkingSpan{title: e.Title}
		return nil

	case *protocol.ThinkingTextMessageStartEvent:
		if a.run.thinking == nil {
			// Tolerated: some producers stream thinking text without
			// an explicit phase marker.
			a.run.thinking = &thinkingSpan{}
		}
		if a.run.thinking.textOpen {
			return duplicateSpan(e.Type, "thinking")
		}
		a.run.thinking.textOpen = true
		return nil

	case *protocol.ThinkingTextMessageContentEvent:
		if a.run.thinking == nil || !a.run.thinking.textOpen {
			return unknownSpan(e.Type, "thinking")
		}
		a.run.thinking.text.WriteString(e.Delta)
		return nil

	case *protocol.ThinkingTextMessageEndEvent:
		if a.run.thinking == nil || !a.run.thinking.textOpen {
			return unknownSpan(e.Type, "thinking")
		}
		a.run.thinking.textOpen = false
		return nil

	case *protocol.ThinkingEndEvent:
		if a.run.thinking == nil {
			return unknownSpan(e.Type, "thinking")
		}
		if a.run.thinking.textOpen {
			a.logger.Warn(ctx, "thinking ended with open text span", "run", a.run.runID)
			a.run.thinking.textOpen = false
		}
		thought := a.run.sealThinking()
		return a.bus.Publish(ctx, hooks.NewThinkingAssembled(a.run.threadID, a.run.runID, thought.Title, thought.Text, false))

	case *protocol.ToolCallStartEvent:
		if _, open := a.run.toolCalls[e.ToolCallID]; open {
			return duplicateSpan(e.Type, e.ToolCallID)
		}
		a.run.toolCalls[e.ToolCallID] = &toolCallSpan{
			id:       e.ToolCallID,
			name:     e.ToolCallName,
			parentID: e.ParentMessageID,
		}
		return nil

	case *protocol.ToolCallArgsEvent:
		span, open := a.run.toolCalls[e.ToolCallID]
		if !open {
			return unknownSpan(e.Type, e.ToolCallID)
		}
		span.args.WriteString(e.Delta)
		return nil

	case *protocol.ToolCallEndEvent:
		span, open := a.run.toolCalls[e.ToolCallID]
		if !open {
			return unknownSpan(e.Type, e.ToolCallID)
		}
		parentID := span.parentID
		call := a.run.sealToolCall(span)
		return a.bus.Publish(ctx, hooks.NewToolCallAssembled(a.run.threadID, a.run.runID, call, parentID, false))

	case *protocol.StateSnapshotEvent:
		a.run.tree = e.Snapshot.Clone()
		return a.bus.Publish(ctx, hooks.NewStateChanged(a.run.threadID, a.run.runID, a.run.tree.Clone(), true))

	case *protocol.StateDeltaEvent:
		next, err := state.Apply(a.run.tree, e.Delta)
		if err != nil {
			return patchRejected(err)
		}
		a.run.tree = next
		return a.bus.Publish(ctx, hooks.NewStateChanged(a.run.threadID, a.run.runID, a.run.tree.Clone(), false))

	case *protocol.MessagesSnapshotEvent:
		a.run.history = append([]protocol.Message(nil), e.Messages...)
		return a.bus.Publish(ctx, hooks.NewPassthrough(a.run.threadID, a.run.runID, event))

	case *protocol.RawEvent, *protocol.CustomEvent:
		return a.bus.Publish(ctx, hooks.NewPassthrough(a.run.threadID, a.run.runID, event))
	}
	return outOfSequence(event.Kind())
}

// terminate closes any still-open spans with a consistency warning,
// delivering their partial content flagged as truncated, then marks the
// run terminal.
func (a *Assembler) terminate(ctx context.Context, phase, message, code string) error {
	r := a.run
	for _, span := range r.messages {
		a.logger.Warn(ctx, "run ended with open message span", "run", r.runID, "message", span.id)
		msg := r.sealMessage(span)
		if err := a.bus.Publish(ctx, hooks.NewMessageAssembled(r.threadID, r.runID, msg, true)); err != nil {
			return err
		}
	}
	for _, span := range r.toolCalls {
		a.logger.Warn(ctx, "run ended with open tool call span", "run", r.runID, "toolCall", span.id)
		parentID := span.parentID
		call := r.sealToolCall(span)
		if err := a.bus.Publish(ctx, hooks.NewToolCallAssembled(r.threadID, r.runID, call, parentID, true)); err != nil {
			return err
		}
	}
	if r.thinking != nil {
		a.logger.Warn(ctx, "run ended with open thinking span", "run", r.runID)
		r.thinking.textOpen = false
		thought := r.sealThinking()
		if err := a.bus.Publish(ctx, hooks.NewThinkingAssembled(r.threadID, r.runID, thought.Title, thought.Text, true)); err != nil {
			return err
		}
	}
	for _, step := range r.openSteps {
		a.logger.Warn(ctx, "run ended with open step", "run", r.runID, "step", step)
	}
	r.openSteps = nil
	r.phase = PhaseTerminal
	a.metrics.RecordTimer("agui.assembler.run_duration", time.Since(r.started), "phase", phase)
	a.logger.Info(ctx, "run ended", "run", r.runID, "phase", phase)
	return a.bus.Publish(ctx, hooks.NewRunLifecycle(r.threadID, r.runID, phase, message, code))
}

// finishStep removes the most recent matching open step. Finishing a
// step that was never started only logs a warning.
func (a *Assembler) finishStep(ctx context.Context, name string) {
	steps := a.run.openSteps
	for i := len(steps) - 1; i >= 0; i-- {
		if steps[i] == name {
			a.run.openSteps = append(steps[:i], steps[i+1:]...)
			return
		}
	}
	a.logger.Warn(ctx, "step finished without matching start", "run", a.run.runID, "step", name)
}
