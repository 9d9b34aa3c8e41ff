// Package state implements the shared state tree synchronized between an
// agent run and its consumers. The tree is a closed union of JSON-like
// kinds (null, bool, number, string, sequence, mapping) addressed by
// JSON-Pointer-style paths and mutated through RFC 6902-shaped patch
// batches. Mapping insertion order is preserved so snapshots round-trip
// byte-for-byte; equality ignores it.
package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind discriminates the runtime type of a Value node. Path walking and
// patch application dispatch exhaustively on Kind.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

// String returns the lowercase kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	}
	return "<unknown kind>"
}

// Value is one node of the state tree. Exactly the fields relevant to
// Kind are meaningful: Bool for KindBool, Num for KindNumber, Str for
// KindString, Elems for KindSequence, Keys/Vals for KindMapping. Keys
// and Vals are parallel slices holding mapping entries in insertion
// order.
type Value struct {
	Kind Kind

	Bool bool
	Num  json.Number
	Str  string

	Elems []*Value

	Keys []string
	Vals []*Value
}

// Null returns a fresh null node.
func Null() *Value { return &Value{Kind: KindNull} }

// Boolean returns a bool node.
func Boolean(b bool) *Value { return &Value{Kind: KindBool, Bool: b} }

// Int returns a number node holding an integer.
func Int(i int64) *Value {
	return &Value{Kind: KindNumber, Num: json.Number(strconv.FormatInt(i, 10))}
}

// Float returns a number node holding a float.
func Float(f float64) *Value {
	return &Value{Kind: KindNumber, Num: json.Number(strconv.FormatFloat(f, 'g', -1, 64))}
}

// Number returns a number node from raw JSON number text.
func Number(n json.Number) *Value { return &Value{Kind: KindNumber, Num: n} }

// String returns a string node.
func String(s string) *Value { return &Value{Kind: KindString, Str: s} }

// Sequence returns a sequence node with the given elements.
func Sequence(elems ...*Value) *Value {
	return &Value{Kind: KindSequence, Elems: elems}
}

// Mapping returns an empty mapping node. Populate it with Set to control
// insertion order.
func Mapping() *Value { return &Value{Kind: KindMapping} }

// Get returns the mapping entry for key. The second result reports
// whether the key is present. Get on a non-mapping returns (nil, false).
func (v *Value) Get(key string) (*Value, bool) {
	if v == nil || v.Kind != KindMapping {
		return nil, false
	}
	for i, k := range v.Keys {
		if k == key {
			return v.Vals[i], true
		}
	}
	return nil, false
}

// Set inserts or overwrites the mapping entry for key. Overwriting keeps
// the key's original position; inserting appends. Set panics if v is not
// a mapping, mirroring how slice indexing panics on misuse.
func (v *Value) Set(key string, val *Value) {
	if v.Kind != KindMapping {
		panic(fmt.Sprintf("state: Set on %s value", v.Kind))
	}
	for i, k := range v.Keys {
		if k == key {
			v.Vals[i] = val
			return
		}
	}
	v.Keys = append(v.Keys, key)
	v.Vals = append(v.Vals, val)
}

// Delete removes the mapping entry for key and reports whether it was
// present.
func (v *Value) Delete(key string) bool {
	if v == nil || v.Kind != KindMapping {
		return false
	}
	for i, k := range v.Keys {
		if k == key {
			v.Keys = append(v.Keys[:i], v.Keys[i+1:]...)
			v.Vals = append(v.Vals[:i], v.Vals[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of elements (sequence) or entries (mapping).
// Scalars have length zero.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.Kind {
	case KindSequence:
		return len(v.Elems)
	case KindMapping:
		return len(v.Keys)
	}
	return 0
}

// Clone returns a deep copy of v. The copy shares no nodes with the
// original, so mutating one never affects the other.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	dst := &Value{
		Kind: v.Kind,
		Bool: v.Bool,
		Num:  v.Num,
		Str:  v.Str,
	}
	if v.Elems != nil {
		dst.Elems = make([]*Value, len(v.Elems))
		for i, e := range v.Elems {
			dst.Elems[i] = e.Clone()
		}
	}
	if v.Keys != nil {
		dst.Keys = append([]string(nil), v.Keys...)
		dst.Vals = make([]*Value, len(v.Vals))
		for i, e := range v.Vals {
			dst.Vals[i] = e.Clone()
		}
	}
	return dst
}

// Equal reports deep semantic equality. Mapping key order is ignored;
// numbers compare by numeric value so "1" and "1.0" are equal.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == nil && o == nil
	}
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBool:
		return v.Bool == o.Bool
	case KindString:
		return v.Str == o.Str
	case KindNumber:
		return numberEqual(v.Num, o.Num)
	case KindSequence:
		if len(v.Elems) != len(o.Elems) {
			return false
		}
		for i := range v.Elems {
			if !v.Elems[i].Equal(o.Elems[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(v.Keys) != len(o.Keys) {
			return false
		}
		for i, k := range v.Keys {
			ov, ok := o.Get(k)
			if !ok || !v.Vals[i].Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

func numberEqual(a, b json.Number) bool {
	if a == b {
		return true
	}
	ai, aerr := a.Int64()
	bi, berr := b.Int64()
	if aerr == nil && berr == nil {
		return ai == bi
	}
	af, aerr := a.Float64()
	bf, berr := b.Float64()
	if aerr != nil || berr != nil {
		return false
	}
	return af == bf
}

// FromAny converts a decoded-JSON Go value (nil, bool, json.Number,
// float64, int, string, []any, map[string]any) into a Value tree.
// Mapping entries built from Go maps are inserted in sorted-by-encoding
// order only insofar as map iteration yields them; callers that care
// about order should build mappings with Set directly.
func FromAny(x any) (*Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Boolean(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return Number(t), nil
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case float64:
		return Float(t), nil
	case []any:
		seq := &Value{Kind: KindSequence, Elems: make([]*Value, len(t))}
		for i, e := range t {
			v, err := FromAny(e)
			if err != nil {
				return nil, err
			}
			seq.Elems[i] = v
		}
		return seq, nil
	case map[string]any:
		// Round-trip through JSON so mapping entries land in a
		// deterministic (sorted) order.
		raw, err := json.Marshal(t)
		if err != nil {
			return nil, err
		}
		return Decode(raw)
	case *Value:
		return t.Clone(), nil
	default:
		return nil, fmt.Errorf("state: cannot convert %T to Value", x)
	}
}

// ToAny converts the tree into plain Go values (nil, bool, json.Number,
// string, []any, map[string]any). Mapping order is lost.
func (v *Value) ToAny() any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Num
	case KindString:
		return v.Str
	case KindSequence:
		out := make([]any, len(v.Elems))
		for i, e := range v.Elems {
			out[i] = e.ToAny()
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(v.Keys))
		for i, k := range v.Keys {
			out[k] = v.Vals[i].ToAny()
		}
		return out
	}
	return nil
}

// MarshalJSON writes the tree as canonical JSON, emitting mapping
// entries in insertion order and number text verbatim.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) encode(buf *bytes.Buffer) error {
	if v == nil {
		buf.WriteString("null")
		return nil
	}
	switch v.Kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		if v.Num == "" {
			buf.WriteString("0")
		} else {
			buf.WriteString(string(v.Num))
		}
	case KindString:
		b, err := json.Marshal(v.Str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindSequence:
		buf.WriteByte('[')
		for i, e := range v.Elems {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMapping:
		buf.WriteByte('{')
		for i, k := range v.Keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := v.Vals[i].encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("state: cannot encode kind %d", v.Kind)
	}
	return nil
}

// UnmarshalJSON parses JSON into the tree, preserving mapping key order
// and number text.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	parsed, err := decodeValue(dec)
	if err != nil {
		return err
	}
	// Trailing garbage after the first value is malformed input.
	if _, err := dec.Token(); err == nil {
		return fmt.Errorf("state: trailing data after JSON value")
	}
	*v = *parsed
	return nil
}

// Decode parses a JSON document into a Value tree.
func Decode(data []byte) (*Value, error) {
	v := &Value{}
	if err := v.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Boolean(t), nil
	case json.Number:
		return Number(t), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '[':
			seq := &Value{Kind: KindSequence}
			for dec.More() {
				elem, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				seq.Elems = append(seq.Elems, elem)
			}
			if _, err := dec.Token(); err != nil { // closing ']'
				return nil, err
			}
			return seq, nil
		case '{':
			m := Mapping()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("state: non-string mapping key %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				m.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // closing '}'
				return nil, err
			}
			return m, nil
		}
	}
	return nil, fmt.Errorf("state: unexpected JSON token %v", tok)
}
