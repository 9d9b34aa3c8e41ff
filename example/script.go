package example

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"goa.design/agui/protocol"
	"goa.design/agui/stream"
	"goa.design/agui/telemetry"
)

// StepName is the processing step the scripted run opens and closes.
const StepName = "weather_query_processing"

type (
	// Script replays the weather scenario as a complete event stream:
	// one run, one step, a state snapshot, a messages snapshot, a
	// thinking phase, an assistant message interleaved with a tool call
	// and progressive state deltas, raw and custom passthrough events,
	// then a clean finish. Every event kind appears at least once.
	Script struct {
		threadID   string
		runID      string
		messageID  string
		toolCallID string
		interval   time.Duration
		logger     telemetry.Logger
	}

	// ScriptOption configures a Script.
	ScriptOption func(*Script)
)

// WithThreadID overrides the generated thread identifier.
func WithThreadID(id string) ScriptOption {
	return func(s *Script) { s.threadID = id }
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) ScriptOption {
	return func(s *Script) { s.runID = id }
}

// WithInterval sets the delay between consecutive events. Zero or
// negative disables pacing.
func WithInterval(d time.Duration) ScriptOption {
	return func(s *Script) { s.interval = d }
}

// WithScriptLogger sets the logger used while replaying.
func WithScriptLogger(logger telemetry.Logger) ScriptOption {
	return func(s *Script) { s.logger = logger }
}

// NewScript builds a script with fresh identifiers and a 100ms default
// pace, matching the cadence of an agent streaming in real time.
func NewScript(opts ...ScriptOption) *Script {
	s := &Script{
		threadID:   uuid.NewString(),
		runID:      uuid.NewString(),
		messageID:  uuid.NewString(),
		toolCallID: uuid.NewString(),
		interval:   100 * time.Millisecond,
		logger:     telemetry.NoopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ThreadID returns the thread identifier the script runs under.
func (s *Script) ThreadID() string { return s.threadID }

// RunID returns the run identifier the script runs under.
func (s *Script) RunID() string { return s.runID }

// Events returns the full scripted sequence in emission order.
func (s *Script) Events() []protocol.Event {
	events := []protocol.Event{
		protocol.NewRunStarted(s.threadID, s.runID),
		protocol.NewStepStarted(StepName),
		protocol.NewStateSnapshot(SampleState()),
		protocol.NewMessagesSnapshot(SampleMessages()),
		protocol.NewThinkingStart(""),
		protocol.NewThinkingTextMessageStart(),
	}
	for _, part := range []string{
		"I need to check the weather for San Francisco. ",
		"Let me use the weather tool to get current conditions. ",
		"I'll make sure to provide temperature, conditions, and any relevant details.",
	} {
		events = append(events, protocol.NewThinkingTextMessageContent(part))
	}
	events = append(events,
		protocol.NewThinkingTextMessageEnd(),
		protocol.NewThinkingEnd(),
		protocol.NewTextMessageStart(s.messageID, protocol.RoleAssistant),
	)
	for _, part := range []string{
		"I'll help you check the weather in San Francisco. ",
		"Let me use the weather tool to get that information for you.",
	} {
		events = append(events, protocol.NewTextMessageContent(s.messageID, part))
	}
	events = append(events, protocol.NewToolCallStart(s.toolCallID, "get_weather"))
	for _, part := range []string{
		`{"location": `,
		`"San Francisco, CA", `,
		`"unit": "fahrenheit"}`,
	} {
		events = append(events, protocol.NewToolCallArgs(s.toolCallID, part))
	}
	for _, batch := range ProgressiveDeltas() {
		events = append(events, protocol.NewStateDelta(batch))
	}
	events = append(events, protocol.NewToolCallEnd(s.toolCallID))
	for _, part := range []string{
		"Based on the weather data, ",
		"it's currently 68°F in San Francisco ",
		"with partly cloudy skies and 65% humidity. ",
		"It's a pleasant day!",
	} {
		events = append(events, protocol.NewTextMessageContent(s.messageID, part))
	}
	events = append(events,
		protocol.NewTextMessageEnd(s.messageID),
		protocol.NewRaw("weather_api", mustValue(map[string]any{
			"system":           "weather_service",
			"status":           "completed",
			"response_time_ms": 245,
		})),
		protocol.NewCustom("weather_analysis_complete", mustValue(map[string]any{
			"analysis": map[string]any{
				"location":        "San Francisco, CA",
				"weather_quality": "good",
				"recommendation":  "Great day for outdoor activities",
			},
			"metadata": map[string]any{
				"analysis_duration_ms": 150,
				"confidence":           0.95,
			},
		})),
		protocol.NewStepFinished(StepName),
		protocol.NewRunFinished(s.threadID, s.runID),
	)
	return events
}

// Run replays the script into sink, pacing events with the configured
// interval. It stops on the first send failure or when ctx ends.
func (s *Script) Run(ctx context.Context, sink stream.Sink) error {
	limiter := rate.NewLimiter(rate.Every(s.interval), 1)
	for _, event := range s.Events() {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if err := sink.Send(ctx, event); err != nil {
			return fmt.Errorf("send %s: %w", event.Kind(), err)
		}
		s.logger.Debug(ctx, "event sent", "type", string(event.Kind()), "run", s.runID)
	}
	return nil
}
