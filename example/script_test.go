package example

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goa.design/agui/assembler"
	"goa.design/agui/protocol"
	"goa.design/agui/state"
	"goa.design/agui/stream"
)

func TestScriptCoversEveryEventType(t *testing.T) {
	script := NewScript()
	seen := make(map[protocol.EventType]bool)
	for _, event := range script.Events() {
		require.NoError(t, event.Validate())
		seen[event.Kind()] = true
	}
	for _, kind := range protocol.Types() {
		if kind == protocol.EventRunError {
			continue // the happy path finishes cleanly
		}
		assert.True(t, seen[kind], "script never emits %s", kind)
	}
}

func TestScriptAssembles(t *testing.T) {
	script := NewScript(WithThreadID("thread_demo"), WithRunID("run_demo"))
	asm := assembler.New()
	ctx := context.Background()
	for _, event := range script.Events() {
		require.NoError(t, asm.Feed(ctx, event))
	}

	view := asm.Snapshot()
	assert.Equal(t, "thread_demo", view.ThreadID)
	assert.Equal(t, "run_demo", view.RunID)
	assert.Equal(t, assembler.PhaseTerminal, view.Phase)
	assert.Empty(t, view.ErrorMessage)
	assert.Empty(t, view.OpenSteps)

	// Snapshot history (6) plus the streamed assistant message.
	require.Len(t, view.Messages, 7)
	last := view.Messages[6]
	assert.Equal(t, protocol.RoleAssistant, last.Role)
	assert.Equal(t,
		"I'll help you check the weather in San Francisco. "+
			"Let me use the weather tool to get that information for you."+
			"Based on the weather data, "+
			"it's currently 68°F in San Francisco "+
			"with partly cloudy skies and 65% humidity. "+
			"It's a pleasant day!",
		last.Content)

	require.Len(t, view.ToolCalls, 1)
	call := view.ToolCalls[0]
	assert.Equal(t, "get_weather", call.Function.Name)
	assert.Equal(t, `{"location": "San Francisco, CA", "unit": "fahrenheit"}`, call.Function.Arguments)

	require.Len(t, view.Thoughts, 1)
	assert.Contains(t, view.Thoughts[0].Text, "I need to check the weather for San Francisco.")
}

func TestScriptDeltasApplyCleanly(t *testing.T) {
	tree := SampleState()
	for i, batch := range ProgressiveDeltas() {
		next, err := state.Apply(tree, batch)
		require.NoError(t, err, "batch %d", i+1)
		tree = next
	}

	processing, ok := tree.Get("processing")
	require.True(t, ok)
	step, ok := processing.Get("current_step")
	require.True(t, ok)
	assert.Equal(t, "completed", step.Str)

	tmp, ok := tree.Get("temporary_data")
	require.True(t, ok)
	_, ok = tmp.Get("pending_operations")
	assert.False(t, ok, "pending operations should be removed by the final batch")
}

func TestScriptFinalStateMatchesAssembler(t *testing.T) {
	script := NewScript()
	asm := assembler.New()
	ctx := context.Background()
	for _, event := range script.Events() {
		require.NoError(t, asm.Feed(ctx, event))
	}

	want := SampleState()
	for _, batch := range ProgressiveDeltas() {
		next, err := state.Apply(want, batch)
		require.NoError(t, err)
		want = next
	}
	assert.True(t, want.Equal(asm.Snapshot().State))
}

func TestScriptRunPacesIntoSink(t *testing.T) {
	script := NewScript(WithInterval(0))
	sink := stream.NewChannelSink(64)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		err := script.Run(ctx, sink)
		sink.Close(ctx)
		done <- err
	}()

	var count int
	for range sink.Events() {
		count++
	}
	require.NoError(t, <-done)
	assert.Equal(t, len(script.Events()), count)
}

func TestScriptRunStopsOnCancel(t *testing.T) {
	script := NewScript(WithInterval(time.Hour))
	sink := stream.NewChannelSink(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := script.Run(ctx, sink)
	require.ErrorIs(t, err, context.Canceled)
}
