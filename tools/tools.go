// Package tools maintains the catalogue of tools a producer advertises
// and validates assembled tool-call arguments against each tool's JSON
// schema. Schemas are compiled once at registration.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"goa.design/agui/hooks"
	"goa.design/agui/protocol"
	"goa.design/agui/telemetry"
)

// Sentinels categorizing validation failures. Match with errors.Is.
var (
	ErrUnknownTool = errors.New("unknown tool")
	ErrBadArgument = errors.New("invalid tool arguments")
)

type (
	// Catalogue holds the registered tools and their compiled schemas.
	// Safe for concurrent use.
	Catalogue struct {
		mu    sync.RWMutex
		tools map[string]*entry
	}

	entry struct {
		def    protocol.Tool
		schema *jsonschema.Schema
	}

	// ArgumentError reports assembled arguments a tool's schema
	// rejected.
	ArgumentError struct {
		Tool  string
		cause error
	}
)

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("tool %q: %v: %v", e.Tool, ErrBadArgument, e.cause)
}

// Unwrap exposes the sentinel and the schema error.
func (e *ArgumentError) Unwrap() []error { return []error{ErrBadArgument, e.cause} }

// NewCatalogue constructs an empty tool catalogue.
func NewCatalogue() *Catalogue {
	return &Catalogue{tools: make(map[string]*entry)}
}

// Register adds a tool, compiling its parameter schema. A tool with no
// Parameters accepts any arguments. Registering the same name twice
// replaces the earlier definition.
func (c *Catalogue) Register(def protocol.Tool) error {
	if def.Name == "" {
		return errors.New("tool name is required")
	}
	e := &entry{def: def}
	if def.Parameters != nil {
		raw, err := json.Marshal(def.Parameters)
		if err != nil {
			return fmt.Errorf("marshal schema for %q: %w", def.Name, err)
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("unmarshal schema for %q: %w", def.Name, err)
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("schema.json", doc); err != nil {
			return fmt.Errorf("add schema resource for %q: %w", def.Name, err)
		}
		schema, err := compiler.Compile("schema.json")
		if err != nil {
			return fmt.Errorf("compile schema for %q: %w", def.Name, err)
		}
		e.schema = schema
	}
	c.mu.Lock()
	c.tools[def.Name] = e
	c.mu.Unlock()
	return nil
}

// Lookup returns the definition of the named tool.
func (c *Catalogue) Lookup(name string) (protocol.Tool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.tools[name]
	if !ok {
		return protocol.Tool{}, false
	}
	return e.def, true
}

// Names returns the registered tool names sorted alphabetically.
func (c *Catalogue) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.tools))
	for name := range c.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns the registered tools in name order, ready for a
// RunAgentInput.
func (c *Catalogue) Definitions() []protocol.Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	defs := make([]protocol.Tool, 0, len(c.tools))
	for _, e := range c.tools {
		defs = append(defs, e.def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// ValidateArgs checks the assembled argument text of a call against the
// named tool's schema. Empty argument text is validated as an empty
// object, matching how producers encode calls with no arguments.
func (c *Catalogue) ValidateArgs(name, args string) error {
	c.mu.RLock()
	e, ok := c.tools[name]
	c.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	if e.schema == nil {
		return nil
	}
	if args == "" {
		args = "{}"
	}
	var payload any
	if err := json.Unmarshal([]byte(args), &payload); err != nil {
		return &ArgumentError{Tool: name, cause: err}
	}
	if err := e.schema.Validate(payload); err != nil {
		return &ArgumentError{Tool: name, cause: err}
	}
	return nil
}

// Validator returns a hooks subscriber that validates every assembled
// tool call against the catalogue. Failures are logged as warnings and
// never halt delivery; producers streaming unknown or malformed calls
// are a consistency problem, not a fatal one.
func (c *Catalogue) Validator(logger telemetry.Logger) hooks.Subscriber {
	if logger == nil {
		logger = telemetry.NewNoopLogger()
	}
	return hooks.SubscriberFunc(func(ctx context.Context, event hooks.Event) error {
		call, ok := event.(*hooks.ToolCallAssembledEvent)
		if !ok {
			return nil
		}
		if err := c.ValidateArgs(call.Call.Function.Name, call.Call.Function.Arguments); err != nil {
			logger.Warn(ctx, "tool call failed validation",
				"tool", call.Call.Function.Name,
				"toolCall", call.Call.ID,
				"err", err.Error(),
			)
		}
		return nil
	})
}
