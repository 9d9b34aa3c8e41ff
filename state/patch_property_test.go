package state

import (
	"encoding/json"
	"testing"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

// genScalar produces leaf values for generated trees.
func genScalar() gopter.Gen {
	return gen.OneGenOf(
		gen.Const(Null()),
		gen.Bool().Map(func(b bool) *Value { return Boolean(b) }),
		gen.Int64Range(-1000, 1000).Map(func(i int64) *Value { return Int(i) }),
		gen.AlphaString().Map(func(s string) *Value { return String(s) }),
	)
}

// genTree produces a mapping-rooted tree up to two levels deep: enough
// structure to exercise nested paths without exploding the search space.
func genTree() gopter.Gen {
	inner := gen.MapOf(gen.Identifier(), genScalar()).Map(func(m map[string]*Value) *Value {
		v, err := FromAny(toAnyMap(m))
		if err != nil {
			panic(err)
		}
		return v
	})
	return gen.MapOf(gen.Identifier(), gen.OneGenOf(genScalar(), inner)).Map(func(m map[string]*Value) *Value {
		v, err := FromAny(toAnyMap(m))
		if err != nil {
			panic(err)
		}
		return v
	})
}

func toAnyMap(m map[string]*Value) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.ToAny()
	}
	return out
}

// Patch atomicity: when any operation fails, the caller's tree is
// exactly what it was before Apply.
func TestApplyAtomicityProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("failed batch leaves the input tree untouched", prop.ForAll(
		func(tree *Value, key string, n int64) bool {
			before := tree.Clone()
			batch := Batch{
				{Op: OpAdd, Path: "/" + key, Value: Int(n)},
				{Op: OpRemove, Path: "/" + key + "/definitely/missing"},
			}
			_, err := Apply(tree, batch)
			return err != nil && tree.Equal(before)
		},
		genTree(), gen.Identifier(), gen.Int64Range(0, 100),
	))

	properties.TestingRun(t)
}

// Add then remove at a previously absent path restores the tree.
func TestAddRemoveInverseProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("remove undoes add at a fresh path", prop.ForAll(
		func(tree *Value, key string, n int64) bool {
			path := "/fresh_" + key
			if _, ok := tree.Get("fresh_" + key); ok {
				return true // key collisions are vacuously fine
			}
			added, err := Apply(tree, Batch{{Op: OpAdd, Path: path, Value: Int(n)}})
			if err != nil {
				return false
			}
			restored, err := Apply(added, Batch{{Op: OpRemove, Path: path}})
			if err != nil {
				return false
			}
			return restored.Equal(tree)
		},
		genTree(), gen.Identifier(), gen.Int64Range(-50, 50),
	))

	properties.TestingRun(t)
}

// Replace is idempotent when the path exists.
func TestReplaceIdempotenceProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("replacing twice equals replacing once", prop.ForAll(
		func(tree *Value, key string, n int64) bool {
			seeded, err := Apply(tree, Batch{{Op: OpAdd, Path: "/" + key, Value: Boolean(true)}})
			if err != nil {
				return false
			}
			rep := Batch{{Op: OpReplace, Path: "/" + key, Value: Int(n)}}
			once, err := Apply(seeded, rep)
			if err != nil {
				return false
			}
			twice, err := Apply(once, rep)
			if err != nil {
				return false
			}
			return once.Equal(twice)
		},
		genTree(), gen.Identifier(), gen.Int64Range(-50, 50),
	))

	properties.TestingRun(t)
}

// Test against the current value never changes the tree.
func TestTestNoOpProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("test against current value is a no-op", prop.ForAll(
		func(tree *Value, key string, n int64) bool {
			seeded, err := Apply(tree, Batch{{Op: OpAdd, Path: "/" + key, Value: Int(n)}})
			if err != nil {
				return false
			}
			tested, err := Apply(seeded, Batch{{Op: OpTest, Path: "/" + key, Value: Int(n)}})
			if err != nil {
				return false
			}
			return tested.Equal(seeded)
		},
		genTree(), gen.Identifier(), gen.Int64Range(-50, 50),
	))

	properties.TestingRun(t)
}

// Cross-check against evanphx/json-patch for batches that stay within
// strict RFC 6902 semantics (existing parents, no index appends past the
// end). The engine's extensions are excluded on purpose.
func TestApplyMatchesRFC6902Oracle(t *testing.T) {
	cases := []struct {
		name  string
		doc   string
		patch string
	}{
		{"replace nested", `{"a":{"b":1},"c":[1,2,3]}`, `[{"op":"replace","path":"/a/b","value":2}]`},
		{"add to mapping", `{"a":{}}`, `[{"op":"add","path":"/a/x","value":"v"}]`},
		{"add sequence insert", `{"s":[1,3]}`, `[{"op":"add","path":"/s/1","value":2}]`},
		{"remove sequence", `{"s":[1,2,3]}`, `[{"op":"remove","path":"/s/0"}]`},
		{"copy", `{"src":{"k":true}}`, `[{"op":"copy","from":"/src","path":"/dst"}]`},
		{"move", `{"src":1,"keep":2}`, `[{"op":"move","from":"/src","path":"/dst"}]`},
		{"test then add", `{"n":5}`, `[{"op":"test","path":"/n","value":5},{"op":"add","path":"/m","value":6}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tree := mustDecode(t, tc.doc)
			batch := mustBatch(t, tc.patch)
			got, err := Apply(tree, batch)
			require.NoError(t, err)

			p, err := jsonpatch.DecodePatch([]byte(tc.patch))
			require.NoError(t, err)
			oracleRaw, err := p.Apply([]byte(tc.doc))
			require.NoError(t, err)
			oracle, err := Decode(oracleRaw)
			require.NoError(t, err)

			gotJSON, _ := json.Marshal(got)
			require.True(t, got.Equal(oracle), "engine %s vs oracle %s", gotJSON, oracleRaw)
		})
	}
}
