package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFieldersConversion(t *testing.T) {
	fs := fielders("hello", []any{"a", 1, "b", "two", 3, "skipped", "trailing"})
	// "msg" + "a" + "b" + "trailing"; the non-string key 3 is dropped
	// along with its value.
	assert.Len(t, fs, 4)
}

func TestTagsToAttrs(t *testing.T) {
	attrs := tagsToAttrs([]string{"transport", "sse", "odd"})
	assert.Len(t, attrs, 2)
	assert.Equal(t, "transport", string(attrs[0].Key))
	assert.Equal(t, "sse", attrs[0].Value.AsString())
	assert.Equal(t, "", attrs[1].Value.AsString())
}

func TestNoopImplementations(t *testing.T) {
	ctx := context.Background()
	var logger Logger = NewNoopLogger()
	logger.Debug(ctx, "d")
	logger.Info(ctx, "i", "k", "v")
	logger.Warn(ctx, "w")
	logger.Error(ctx, "e")

	var metrics Metrics = NewNoopMetrics()
	metrics.IncCounter("c", 1)
	metrics.RecordTimer("t", time.Second)
	metrics.RecordGauge("g", 0.5)
}
