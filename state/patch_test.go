package state

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, raw string) *Value {
	t.Helper()
	v, err := Decode([]byte(raw))
	require.NoError(t, err)
	return v
}

func mustBatch(t *testing.T, raw string) Batch {
	t.Helper()
	var b Batch
	require.NoError(t, json.Unmarshal([]byte(raw), &b))
	return b
}

func TestApplyReplaceAddRemoveScenario(t *testing.T) {
	tree := mustDecode(t, `{"a": {"b": 1}}`)
	batch := mustBatch(t, `[
		{"op":"replace","path":"/a/b","value":2},
		{"op":"add","path":"/a/c","value":[1,2]},
		{"op":"remove","path":"/a/b"}
	]`)

	got, err := Apply(tree, batch)
	require.NoError(t, err)
	require.True(t, got.Equal(mustDecode(t, `{"a":{"c":[1,2]}}`)))
	// Input untouched.
	require.True(t, tree.Equal(mustDecode(t, `{"a":{"b":1}}`)))
}

func TestApplyTestFailureLeavesTreeUnchanged(t *testing.T) {
	tree := mustDecode(t, `{"x": 3}`)
	batch := mustBatch(t, `[
		{"op":"replace","path":"/x","value":9},
		{"op":"test","path":"/x","value":5}
	]`)

	got, err := Apply(tree, batch)
	require.Nil(t, got)
	require.ErrorIs(t, err, ErrTestFailed)

	var pe *PatchError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, 1, pe.OpIndex)
	require.Equal(t, "/x", pe.Path)
	require.True(t, pe.Expected.Equal(Int(5)))
	require.True(t, pe.Actual.Equal(Int(9)))

	require.True(t, tree.Equal(mustDecode(t, `{"x":3}`)))
}

func TestApplyAddCreatesMissingParents(t *testing.T) {
	tree := mustDecode(t, `{}`)
	batch := mustBatch(t, `[{"op":"add","path":"/a/b/c","value":1}]`)
	got, err := Apply(tree, batch)
	require.NoError(t, err)
	require.True(t, got.Equal(mustDecode(t, `{"a":{"b":{"c":1}}}`)))
}

func TestApplyAddCreatesSequenceForNumericSegment(t *testing.T) {
	tree := mustDecode(t, `{}`)
	batch := mustBatch(t, `[{"op":"add","path":"/items/0","value":"first"}]`)
	got, err := Apply(tree, batch)
	require.NoError(t, err)
	require.True(t, got.Equal(mustDecode(t, `{"items":["first"]}`)))
}

func TestApplyAddSequenceInsertShifts(t *testing.T) {
	tree := mustDecode(t, `{"s":[1,3]}`)
	got, err := Apply(tree, mustBatch(t, `[{"op":"add","path":"/s/1","value":2}]`))
	require.NoError(t, err)
	require.True(t, got.Equal(mustDecode(t, `{"s":[1,2,3]}`)))
}

func TestApplyAddSequenceAppend(t *testing.T) {
	tree := mustDecode(t, `{"s":[1,2]}`)
	got, err := Apply(tree, mustBatch(t, `[{"op":"add","path":"/s/2","value":3}]`))
	require.NoError(t, err)
	require.True(t, got.Equal(mustDecode(t, `{"s":[1,2,3]}`)))
}

func TestApplyAddSequenceBeyondLength(t *testing.T) {
	tree := mustDecode(t, `{"s":[1]}`)
	_, err := Apply(tree, mustBatch(t, `[{"op":"add","path":"/s/5","value":9}]`))
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestApplyReplaceMissingPath(t *testing.T) {
	tree := mustDecode(t, `{"a":1}`)
	_, err := Apply(tree, mustBatch(t, `[{"op":"replace","path":"/b","value":1}]`))
	require.ErrorIs(t, err, ErrPathNotFound)
}

func TestApplyRemoveSequenceShifts(t *testing.T) {
	tree := mustDecode(t, `{"s":["a","b","c"]}`)
	got, err := Apply(tree, mustBatch(t, `[{"op":"remove","path":"/s/1"}]`))
	require.NoError(t, err)
	require.True(t, got.Equal(mustDecode(t, `{"s":["a","c"]}`)))
}

func TestApplyRemoveIndexOutOfRange(t *testing.T) {
	tree := mustDecode(t, `{"s":[1]}`)
	_, err := Apply(tree, mustBatch(t, `[{"op":"remove","path":"/s/1"}]`))
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestApplyRemoveMissingKey(t *testing.T) {
	tree := mustDecode(t, `{"a":1}`)
	_, err := Apply(tree, mustBatch(t, `[{"op":"remove","path":"/nope"}]`))
	require.ErrorIs(t, err, ErrPathNotFound)
}

func TestApplyNumericSegmentIsPlainMappingKey(t *testing.T) {
	tree := mustDecode(t, `{"m":{"0":"zero"}}`)
	got, err := Apply(tree, mustBatch(t, `[{"op":"replace","path":"/m/0","value":"still zero"}]`))
	require.NoError(t, err)
	want := mustDecode(t, `{"m":{"0":"still zero"}}`)
	require.True(t, got.Equal(want))
}

func TestApplyCopyDeepCopiesSource(t *testing.T) {
	tree := mustDecode(t, `{"src":{"n":1}}`)
	got, err := Apply(tree, mustBatch(t, `[{"op":"copy","from":"/src","path":"/dst"}]`))
	require.NoError(t, err)
	require.True(t, got.Equal(mustDecode(t, `{"src":{"n":1},"dst":{"n":1}}`)))

	// Mutating the destination must not alias back into the source.
	dst, _ := got.Get("dst")
	dst.Set("n", Int(999))
	src, _ := got.Get("src")
	n, _ := src.Get("n")
	require.True(t, n.Equal(Int(1)))
}

func TestApplyMoveRemovesSourceFirst(t *testing.T) {
	tree := mustDecode(t, `{"s":[1,2,3]}`)
	// Moving /s/0 to /s/2: source removed first, so the destination index
	// addresses the shifted sequence [2,3] and appends.
	got, err := Apply(tree, mustBatch(t, `[{"op":"move","from":"/s/0","path":"/s/2"}]`))
	require.NoError(t, err)
	require.True(t, got.Equal(mustDecode(t, `{"s":[2,3,1]}`)))
}

func TestApplyMoveMissingSource(t *testing.T) {
	tree := mustDecode(t, `{}`)
	_, err := Apply(tree, mustBatch(t, `[{"op":"move","from":"/gone","path":"/here"}]`))
	require.ErrorIs(t, err, ErrPathNotFound)
}

func TestApplyUnknownOp(t *testing.T) {
	tree := mustDecode(t, `{}`)
	_, err := Apply(tree, Batch{{Op: "merge", Path: "/a"}})
	require.ErrorIs(t, err, ErrUnsupportedOperation)
	var pe *PatchError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "merge", pe.Op)
}

func TestApplyRootReplace(t *testing.T) {
	tree := mustDecode(t, `{"old":true}`)
	got, err := Apply(tree, mustBatch(t, `[{"op":"replace","path":"","value":{"new":true}}]`))
	require.NoError(t, err)
	require.True(t, got.Equal(mustDecode(t, `{"new":true}`)))
}

func TestApplyRootRemoveFails(t *testing.T) {
	tree := mustDecode(t, `{"a":1}`)
	_, err := Apply(tree, mustBatch(t, `[{"op":"remove","path":""}]`))
	require.ErrorIs(t, err, ErrPathNotFound)
}

func TestApplyOnNullTreeGrowsContainer(t *testing.T) {
	got, err := Apply(nil, mustBatch(t, `[{"op":"add","path":"/a","value":1}]`))
	require.NoError(t, err)
	require.True(t, got.Equal(mustDecode(t, `{"a":1}`)))
}

func TestApplyTestNoOp(t *testing.T) {
	tree := mustDecode(t, `{"a":{"b":[1,2]}}`)
	got, err := Apply(tree, mustBatch(t, `[{"op":"test","path":"/a/b","value":[1,2]}]`))
	require.NoError(t, err)
	require.True(t, got.Equal(tree))
}

func TestApplyProgressiveDemoBatches(t *testing.T) {
	// The seven-step state evolution used by the comprehensive demo.
	tree := mustDecode(t, `{
		"conversation": {"total_messages": 6, "assistant_messages": 2},
		"tools": {"tool_call_count": 1},
		"session": {"interaction_count": 3, "duration_seconds": 45, "last_activity": "t0"},
		"user_profile": {"preferences": {"response_style": "detailed"}},
		"temporary_data": {"pending_operations": ["update_user_preferences"]}
	}`)
	steps := []string{
		`[{"op":"replace","path":"/conversation/total_messages","value":7},
		  {"op":"replace","path":"/conversation/assistant_messages","value":3}]`,
		`[{"op":"add","path":"/tools/recent_calls","value":[{"tool":"get_weather","success":true}]},
		  {"op":"replace","path":"/tools/tool_call_count","value":2}]`,
		`[{"op":"replace","path":"/session/interaction_count","value":4},
		  {"op":"replace","path":"/session/duration_seconds","value":67},
		  {"op":"replace","path":"/session/last_activity","value":"t1"}]`,
		`[{"op":"add","path":"/temporary_data/search_cache","value":{"last_search":"t1"}}]`,
		`[{"op":"replace","path":"/user_profile/preferences/response_style","value":"concise"},
		  {"op":"add","path":"/user_profile/preferences/preferred_topics","value":["weather"]}]`,
		`[{"op":"add","path":"/processing","value":{"current_step":"weather_analysis","progress":0.75}}]`,
		`[{"op":"remove","path":"/temporary_data/pending_operations"},
		  {"op":"replace","path":"/processing/current_step","value":"completed"},
		  {"op":"replace","path":"/processing/progress","value":1.0}]`,
	}
	var err error
	for _, step := range steps {
		tree, err = Apply(tree, mustBatch(t, step))
		require.NoError(t, err)
	}
	proc, ok := tree.Get("processing")
	require.True(t, ok)
	cur, _ := proc.Get("current_step")
	require.Equal(t, "completed", cur.Str)
	tmp, _ := tree.Get("temporary_data")
	_, ok = tmp.Get("pending_operations")
	require.False(t, ok)
}
