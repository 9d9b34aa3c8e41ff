// Package example builds the sample weather-assistant scenario used by the
// demo command: a fixed conversation, a couple of tools, a shared state
// tree and the scripted event stream that exercises every event kind.
package example

import (
	"fmt"

	"github.com/google/uuid"

	"goa.design/agui/protocol"
	"goa.design/agui/state"
)

// SampleMessages returns the conversation history carried by the demo's
// MESSAGES_SNAPSHOT event.
func SampleMessages() []protocol.Message {
	return []protocol.Message{
		{
			ID:      uuid.NewString(),
			Role:    protocol.RoleSystem,
			Content: "You are a helpful AI assistant that can use tools to help users.",
		},
		{
			ID:      uuid.NewString(),
			Role:    protocol.RoleUser,
			Content: "What's the weather like in San Francisco today?",
		},
		{
			ID:      uuid.NewString(),
			Role:    protocol.RoleAssistant,
			Content: "I'll help you check the weather in San Francisco. Let me use the weather tool to get that information.",
			ToolCalls: []protocol.ToolCall{
				{
					ID:   uuid.NewString(),
					Type: "function",
					Function: protocol.FunctionCall{
						Name:      "get_weather",
						Arguments: `{"location": "San Francisco, CA", "unit": "fahrenheit"}`,
					},
				},
			},
		},
		{
			ID:         uuid.NewString(),
			Role:       protocol.RoleTool,
			Content:    `{"temperature": 68, "condition": "partly cloudy", "humidity": 65}`,
			ToolCallID: uuid.NewString(),
		},
		{
			ID:      uuid.NewString(),
			Role:    protocol.RoleAssistant,
			Content: "Based on the weather data, it's currently 68°F in San Francisco with partly cloudy skies and 65% humidity. It's a pleasant day!",
		},
		{
			ID:      uuid.NewString(),
			Role:    protocol.RoleDeveloper,
			Content: "Debug: Weather API call completed successfully",
		},
	}
}

// SampleTools returns the tool definitions the demo agent advertises.
func SampleTools() []protocol.Tool {
	return []protocol.Tool{
		{
			Name:        "get_weather",
			Description: "Get current weather information for a specific location",
			Parameters: mustValue(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"location": map[string]any{
						"type":        "string",
						"description": "The city and state/country, e.g. 'San Francisco, CA'",
					},
					"unit": map[string]any{
						"type":        "string",
						"enum":        []any{"celsius", "fahrenheit"},
						"description": "Temperature unit",
					},
				},
				"required": []any{"location"},
			}),
		},
		{
			Name:        "search_web",
			Description: "Search the web for information",
			Parameters: mustValue(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "The search query",
					},
					"max_results": map[string]any{
						"type":        "integer",
						"description": "Maximum number of results to return",
						"default":     5,
					},
				},
				"required": []any{"query"},
			}),
		},
	}
}

// SampleContext returns the named context values attached to a demo run.
func SampleContext() []protocol.Context {
	return []protocol.Context{
		{
			Description: "user_preferences",
			Value:       `{"language": "en", "temperature_unit": "fahrenheit", "timezone": "America/Los_Angeles"}`,
		},
		{
			Description: "session_info",
			Value:       fmt.Sprintf(`{"session_id": %q, "user_id": "user_123", "start_time": "2024-01-01T12:00:00Z"}`, uuid.NewString()),
		},
	}
}

// SampleState returns the initial shared state tree carried by the demo's
// STATE_SNAPSHOT event.
func SampleState() *state.Value {
	return mustValue(map[string]any{
		"conversation": map[string]any{
			"total_messages":     6,
			"user_messages":      1,
			"assistant_messages": 2,
			"system_messages":    1,
			"tool_messages":      1,
			"developer_messages": 1,
		},
		"tools": map[string]any{
			"available_tools": []any{"get_weather", "search_web"},
			"last_tool_used":  "get_weather",
			"tool_call_count": 1,
		},
		"user_profile": map[string]any{
			"name": "John Doe",
			"preferences": map[string]any{
				"response_style":    "detailed",
				"include_reasoning": true,
			},
		},
		"session": map[string]any{
			"duration_seconds":  45,
			"interaction_count": 3,
			"last_activity":     "2024-01-01T12:00:45Z",
		},
		"temporary_data": map[string]any{
			"weather_cache": map[string]any{
				"san_francisco": map[string]any{
					"temperature": 68,
					"condition":   "partly cloudy",
					"cached_at":   "2024-01-01T12:00:30Z",
				},
			},
			"pending_operations": []any{"update_user_preferences"},
		},
	})
}

// ProgressiveDeltas returns the seven patch batches the demo streams as
// STATE_DELTA events while the tool call runs. Each batch applies cleanly
// to the tree produced by SampleState plus the batches before it.
func ProgressiveDeltas() []state.Batch {
	return []state.Batch{
		{
			{Op: state.OpReplace, Path: "/conversation/total_messages", Value: state.Int(7)},
			{Op: state.OpReplace, Path: "/conversation/assistant_messages", Value: state.Int(3)},
		},
		{
			{Op: state.OpAdd, Path: "/tools/recent_calls", Value: mustValue([]any{
				map[string]any{"tool": "get_weather", "timestamp": "2024-01-01T12:00:30Z", "success": true},
			})},
			{Op: state.OpReplace, Path: "/tools/tool_call_count", Value: state.Int(2)},
		},
		{
			{Op: state.OpReplace, Path: "/session/interaction_count", Value: state.Int(4)},
			{Op: state.OpReplace, Path: "/session/duration_seconds", Value: state.Int(67)},
			{Op: state.OpReplace, Path: "/session/last_activity", Value: state.String("2024-01-01T12:01:07Z")},
		},
		{
			{Op: state.OpAdd, Path: "/temporary_data/search_cache", Value: mustValue(map[string]any{
				"query_history": []any{"San Francisco weather", "weather forecast"},
				"last_search":   "2024-01-01T12:01:00Z",
			})},
		},
		{
			{Op: state.OpReplace, Path: "/user_profile/preferences/response_style", Value: state.String("concise")},
			{Op: state.OpAdd, Path: "/user_profile/preferences/preferred_topics", Value: mustValue([]any{"weather", "technology"})},
		},
		{
			{Op: state.OpAdd, Path: "/processing", Value: mustValue(map[string]any{
				"current_step":         "weather_analysis",
				"progress":             0.75,
				"estimated_completion": "2024-01-01T12:01:15Z",
			})},
		},
		{
			{Op: state.OpRemove, Path: "/temporary_data/pending_operations"},
			{Op: state.OpReplace, Path: "/processing/current_step", Value: state.String("completed")},
			{Op: state.OpReplace, Path: "/processing/progress", Value: state.Float(1.0)},
		},
	}
}

func mustValue(x any) *state.Value {
	v, err := state.FromAny(x)
	if err != nil {
		panic(err)
	}
	return v
}
