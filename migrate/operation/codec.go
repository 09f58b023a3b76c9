package operation

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// List is an ordered list of operations. In files every operation is a
// single-key mapping from its discriminator to its fields, except aql whose
// value is the query string.
type List []Operation

var decoders = map[string]func(*yaml.Node) (Operation, error){
	KindCreateCollection:     decodeInto[CreateCollection],
	KindDeleteCollection:     decodeInto[DeleteCollection],
	KindCreateEdgeCollection: decodeInto[CreateEdgeCollection],
	KindDeleteEdgeCollection: decodeInto[DeleteEdgeCollection],
	KindCreateIndex:          decodeInto[CreateIndex],
	KindDeleteIndex:          decodeInto[DeleteIndex],
	KindCreateGraph:          decodeInto[CreateGraph],
	KindDeleteGraph:          decodeInto[DeleteGraph],
	KindAQL: func(node *yaml.Node) (Operation, error) {
		if node.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: aql expects a query string", node.Line)
		}
		return AQL{Query: node.Value}, nil
	},
}

func decodeInto[T Operation](node *yaml.Node) (Operation, error) {
	var op T
	if err := node.Decode(&op); err != nil {
		return nil, err
	}
	return op, nil
}

// MarshalYAML implements yaml.Marshaler.
func (l List) MarshalYAML() (any, error) {
	out := make([]map[string]any, 0, len(l))
	for _, op := range l {
		var body any = op
		if q, ok := op.(AQL); ok {
			body = q.Query
		}
		out = append(out, map[string]any{op.Kind(): body})
	}
	return out, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *List) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: expected a list of operations", node.Line)
	}
	ops := make(List, 0, len(node.Content))
	for _, item := range node.Content {
		op, err := Decode(item)
		if err != nil {
			return err
		}
		ops = append(ops, op)
	}
	*l = ops
	return nil
}

// Decode decodes a single tagged operation node.
func Decode(node *yaml.Node) (Operation, error) {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return nil, fmt.Errorf("line %d: an operation must be a single-key mapping", node.Line)
	}
	tag := node.Content[0].Value
	decode, ok := decoders[tag]
	if !ok {
		return nil, fmt.Errorf("line %d: unknown operation %q", node.Line, tag)
	}
	op, err := decode(node.Content[1])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", tag, err)
	}
	return op, nil
}
