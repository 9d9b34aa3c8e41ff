package state

// Op tags recognized in patch batches. The wire shape follows RFC 6902:
// {"op": "add", "path": "/a/b/0", "value": ..., "from": "/x/y"}.
const (
	OpAdd     = "add"
	OpReplace = "replace"
	OpRemove  = "remove"
	OpTest    = "test"
	OpCopy    = "copy"
	OpMove    = "move"
)

// Op is a single patch operation. Value is present for add, replace and
// test; From for copy and move.
type Op struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value *Value `json:"value,omitempty"`
	From  string `json:"from,omitempty"`
}

// Batch is an ordered list of operations applied as a unit: either every
// operation applies, or none does.
type Batch []Op

// Apply applies the batch to tree and returns the resulting tree. The
// input is never mutated: Apply works on a deep copy and discards it on
// the first failing operation, returning a *PatchError that identifies
// the operation. A nil tree is treated as null, which add operations
// grow into the container their path requires.
//
// Policy notes, chosen deliberately and diverging from strict RFC 6902:
//   - add auto-creates missing intermediate containers along the path
//     (mapping, or sequence when the next segment is numeric);
//   - replace, remove and test require the full path to exist;
//   - numeric segments address elements only when the node being indexed
//     is a sequence; against a mapping they are plain keys.
func Apply(tree *Value, batch Batch) (*Value, error) {
	work := tree.Clone()
	if work == nil {
		work = Null()
	}
	for i, op := range batch {
		var err error
		work, err = applyOp(work, op)
		if err != nil {
			if pe, ok := err.(*PatchError); ok {
				pe.OpIndex = i
				pe.Op = op.Op
				if pe.Path == "" {
					pe.Path = op.Path
				}
				return nil, pe
			}
			return nil, &PatchError{OpIndex: i, Op: op.Op, Path: op.Path, kind: err}
		}
	}
	return work, nil
}

func applyOp(root *Value, op Op) (*Value, error) {
	path := ParsePath(op.Path)
	switch op.Op {
	case OpAdd:
		return addAt(root, path, op.Value.Clone())
	case OpReplace:
		return replaceAt(root, path, op.Value.Clone())
	case OpRemove:
		return removeAt(root, path)
	case OpTest:
		actual, err := resolve(root, path)
		if err != nil {
			return nil, err
		}
		expected := op.Value
		if expected == nil {
			// encoding/json leaves the pointer nil for a literal null.
			expected = Null()
		}
		if !actual.Equal(expected) {
			return nil, &PatchError{
				Path:     path.String(),
				Expected: expected.Clone(),
				Actual:   actual.Clone(),
				kind:     ErrTestFailed,
			}
		}
		return root, nil
	case OpCopy:
		src, err := resolve(root, ParsePath(op.From))
		if err != nil {
			return nil, &PatchError{Path: op.From, kind: categorize(err)}
		}
		return addAt(root, path, src.Clone())
	case OpMove:
		from := ParsePath(op.From)
		src, err := resolve(root, from)
		if err != nil {
			return nil, &PatchError{Path: op.From, kind: categorize(err)}
		}
		moved := src.Clone()
		root, err = removeAt(root, from)
		if err != nil {
			return nil, &PatchError{Path: op.From, kind: categorize(err)}
		}
		return addAt(root, path, moved)
	default:
		return nil, ErrUnsupportedOperation
	}
}

func categorize(err error) error {
	if pe, ok := err.(*PatchError); ok {
		return pe.kind
	}
	return err
}

// resolve walks path strictly and returns the addressed node.
func resolve(root *Value, path Path) (*Value, error) {
	cur := root
	for _, seg := range path {
		switch cur.Kind {
		case KindMapping:
			child, ok := cur.Get(seg)
			if !ok {
				return nil, ErrPathNotFound
			}
			cur = child
		case KindSequence:
			idx, ok := index(seg)
			if !ok {
				return nil, ErrPathNotFound
			}
			if idx >= len(cur.Elems) {
				return nil, ErrIndexOutOfRange
			}
			cur = cur.Elems[idx]
		default:
			return nil, ErrPathNotFound
		}
	}
	return cur, nil
}

// descend walks to the parent of the final segment. When create is set,
// missing mapping entries and one-past-the-end sequence slots grow
// intermediate containers; a null node in the way is promoted to the
// container kind the next segment calls for.
func descend(root *Value, path Path, create bool) (*Value, error) {
	cur := root
	for i := 0; i < len(path)-1; i++ {
		seg := path[i]
		if create && cur.Kind == KindNull {
			promote(cur, seg)
		}
		switch cur.Kind {
		case KindMapping:
			child, ok := cur.Get(seg)
			if !ok {
				if !create {
					return nil, ErrPathNotFound
				}
				child = container(path[i+1])
				cur.Set(seg, child)
			}
			cur = child
		case KindSequence:
			idx, ok := index(seg)
			if !ok {
				return nil, ErrPathNotFound
			}
			switch {
			case idx < len(cur.Elems):
				cur = cur.Elems[idx]
			case create && idx == len(cur.Elems):
				child := container(path[i+1])
				cur.Elems = append(cur.Elems, child)
				cur = child
			case idx == len(cur.Elems):
				return nil, ErrPathNotFound
			default:
				return nil, ErrIndexOutOfRange
			}
		default:
			return nil, ErrPathNotFound
		}
	}
	return cur, nil
}

// container picks the container kind implied by the segment that will
// index into it.
func container(nextSeg string) *Value {
	if _, ok := index(nextSeg); ok {
		return Sequence()
	}
	return Mapping()
}

// promote turns a null node into the container kind seg calls for.
func promote(v *Value, seg string) {
	if _, ok := index(seg); ok {
		v.Kind = KindSequence
	} else {
		v.Kind = KindMapping
	}
}

func addAt(root *Value, path Path, val *Value) (*Value, error) {
	if val == nil {
		val = Null()
	}
	if path.IsRoot() {
		return val, nil
	}
	if root.Kind == KindNull {
		promote(root, path[0])
	}
	parent, err := descend(root, path, true)
	if err != nil {
		return nil, err
	}
	last := path[len(path)-1]
	if parent.Kind == KindNull {
		promote(parent, last)
	}
	switch parent.Kind {
	case KindMapping:
		parent.Set(last, val)
	case KindSequence:
		idx, ok := index(last)
		if !ok {
			return nil, ErrPathNotFound
		}
		switch {
		case idx == len(parent.Elems):
			parent.Elems = append(parent.Elems, val)
		case idx < len(parent.Elems):
			parent.Elems = append(parent.Elems, nil)
			copy(parent.Elems[idx+1:], parent.Elems[idx:])
			parent.Elems[idx] = val
		default:
			return nil, ErrIndexOutOfRange
		}
	default:
		return nil, ErrPathNotFound
	}
	return root, nil
}

func replaceAt(root *Value, path Path, val *Value) (*Value, error) {
	if val == nil {
		val = Null()
	}
	if path.IsRoot() {
		return val, nil
	}
	parent, err := descend(root, path, false)
	if err != nil {
		return nil, err
	}
	last := path[len(path)-1]
	switch parent.Kind {
	case KindMapping:
		if _, ok := parent.Get(last); !ok {
			return nil, ErrPathNotFound
		}
		parent.Set(last, val)
	case KindSequence:
		idx, ok := index(last)
		if !ok {
			return nil, ErrPathNotFound
		}
		if idx >= len(parent.Elems) {
			return nil, ErrIndexOutOfRange
		}
		parent.Elems[idx] = val
	default:
		return nil, ErrPathNotFound
	}
	return root, nil
}

func removeAt(root *Value, path Path) (*Value, error) {
	if path.IsRoot() {
		// Removing the root is not addressable; the closest legal
		// operation is replacing it.
		return nil, ErrPathNotFound
	}
	parent, err := descend(root, path, false)
	if err != nil {
		return nil, err
	}
	last := path[len(path)-1]
	switch parent.Kind {
	case KindMapping:
		if !parent.Delete(last) {
			return nil, ErrPathNotFound
		}
	case KindSequence:
		idx, ok := index(last)
		if !ok {
			return nil, ErrPathNotFound
		}
		if idx >= len(parent.Elems) {
			return nil, ErrIndexOutOfRange
		}
		parent.Elems = append(parent.Elems[:idx], parent.Elems[idx+1:]...)
	default:
		return nil, ErrPathNotFound
	}
	return root, nil
}
