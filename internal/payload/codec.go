package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// maxDepth bounds recursion for pathologically nested documents.
const maxDepth = 256

// maxNodes bounds the number of values built from one document. Aliases
// are expanded at every use, so a small file of nested aliases can
// otherwise describe an exponentially large tree.
const maxNodes = 1 << 20

var (
	// errTooDeep is returned when a decoded document nests deeper than maxDepth.
	errTooDeep = errors.New("payload nesting too deep")
	// errTooLarge is returned when a decoded document expands past maxNodes.
	errTooLarge = errors.New("payload expands to too many values")
)

// DecodeYAML parses a YAML (or JSON) document into a Value, preserving the
// order of mapping keys.
func DecodeYAML(data []byte) (Value, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return Value{}, fmt.Errorf("failed to parse payload: %w", err)
	}
	return FromYAMLNode(&node)
}

// FromYAMLNode converts a decoded yaml.Node tree into a Value.
//
// Design decision: We decode through yaml.Node rather than into
// map[string]any because Go maps lose key order, and formatters such as
// the content-type inventory must list types in the order the plugin
// recorded them.
func FromYAMLNode(n *yaml.Node) (Value, error) {
	var d decoder
	return d.fromNode(n, 0)
}

// decoder carries the value budget across one conversion.
type decoder struct {
	nodes int
}

func (d *decoder) fromNode(n *yaml.Node, depth int) (Value, error) {
	if n == nil {
		return Null(), nil
	}
	if depth > maxDepth {
		return Value{}, errTooDeep
	}
	d.nodes++
	if d.nodes > maxNodes {
		return Value{}, errTooLarge
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return d.fromNode(n.Content[0], depth+1)
	case yaml.AliasNode:
		return d.fromNode(n.Alias, depth+1)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			item, err := d.fromNode(c, depth+1)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return Value{kind: KindSeq, items: items}, nil
	case yaml.MappingNode:
		b := NewMapBuilder()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode := n.Content[i]
			if keyNode.Kind != yaml.ScalarNode {
				return Value{}, fmt.Errorf("line %d: %w: mapping key must be a scalar", keyNode.Line, ErrUnsupported)
			}
			child, err := d.fromNode(n.Content[i+1], depth+1)
			if err != nil {
				return Value{}, err
			}
			b.Set(keyNode.Value, child)
		}
		return b.Build(), nil
	case yaml.ScalarNode:
		return fromScalar(n)
	default:
		return Value{}, fmt.Errorf("line %d: %w: yaml node kind %d", n.Line, ErrUnsupported, n.Kind)
	}
}

func fromScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, err
		}
		return Bool(b), nil
	case "!!int", "!!float":
		return Number(n.Value), nil
	default:
		return String(n.Value), nil
	}
}

// UnmarshalYAML lets a Value be embedded directly in yaml-decoded structs.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	decoded, err := FromYAMLNode(node)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// UnmarshalJSON lets a Value be embedded in json-decoded structs.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeYAML(data)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// MarshalYAML returns an ordered yaml.Node for v.
func (v Value) MarshalYAML() (any, error) {
	return v.YAMLNode(), nil
}

// YAMLNode builds a yaml.Node tree for v, keeping mapping order.
func (v Value) YAMLNode() *yaml.Node {
	switch v.kind {
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.text}
	case KindNumber:
		tag := "!!float"
		if _, err := strconv.ParseInt(v.text, 10, 64); err == nil {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.text}
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v.text}
	case KindSeq:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.items {
			n.Content = append(n.Content, item.YAMLNode())
		}
		return n
	case KindMap:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range v.keys {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				v.fields[k].YAMLNode(),
			)
		}
		return n
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

// MarshalJSON encodes v as JSON, keeping mapping order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(v.text)
	case KindNumber:
		if isJSONNumber(v.text) {
			buf.WriteString(v.text)
			return nil
		}
		// YAML admits numbers JSON cannot carry (0x1F, .inf); keep their text.
		return writeJSONString(buf, v.text)
	case KindString:
		return writeJSONString(buf, v.text)
	case KindSeq:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		for i, k := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := v.fields[k].writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// writeJSONString quotes s without HTML escaping; JSON reports are read by
// tools, not browsers, and crawled URLs should stay legible.
func writeJSONString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}

func isJSONNumber(s string) bool {
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return false
	}
	return json.Valid([]byte(s))
}
