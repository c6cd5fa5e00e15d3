package zettel

import (
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// dateFormats lists the layouts a plain scalar string is re-sniffed
// against before giving up and keeping it as a String value.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05-0700",
}

// sniffDateTime tries to parse s as one of the recognized date/time
// shapes, returning a UTC, second-truncated time.Time on success.
func sniffDateTime(s string) (time.Time, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, trimmed); err == nil {
			return truncateToSecondUTC(t.UTC()), true
		}
	}
	if t, err := time.Parse("2006-01-02 15:04:05", trimmed); err == nil {
		return truncateToSecondUTC(t), true
	}
	if t, err := time.Parse("2006-01-02", trimmed); err == nil {
		return truncateToSecondUTC(t), true
	}
	// Truncated ISO form like "2025-01-30T".
	if strings.HasSuffix(trimmed, "T") {
		if t, err := time.Parse("2006-01-02", strings.TrimSuffix(trimmed, "T")); err == nil {
			return truncateToSecondUTC(t), true
		}
	}
	return time.Time{}, false
}

// decodeYAMLNode converts a yaml.Node into our Value, folding nested
// mappings into a debug string and sniffing scalar strings for embedded
// dates (since a plain YAML decode can't tell "2024-01-15" was meant to be
// a date rather than text without a schema).
func decodeYAMLNode(node *yaml.Node) Value {
	switch node.Kind {
	case yaml.ScalarNode:
		return decodeScalarNode(node)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(node.Content))
		for _, child := range node.Content {
			items = append(items, decodeYAMLNode(child))
		}
		return List(items)
	case yaml.MappingNode:
		// Nested maps inside YAML values are intentionally not modeled;
		// fold into a debug-style string.
		return String(debugMapping(node))
	case yaml.AliasNode:
		if node.Alias != nil {
			return decodeYAMLNode(node.Alias)
		}
		return Null()
	default:
		return Null()
	}
}

func decodeScalarNode(node *yaml.Node) Value {
	switch node.Tag {
	case "!!null":
		return Null()
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err == nil {
			return Bool(b)
		}
		return Null()
	case "!!int":
		var i int64
		if err := node.Decode(&i); err == nil {
			return Int(i)
		}
		if f, err := strconv.ParseFloat(node.Value, 64); err == nil {
			return Float(f)
		}
		return String(node.Value)
	case "!!float":
		var f float64
		if err := node.Decode(&f); err == nil {
			return Float(f)
		}
		return String(node.Value)
	case "!!timestamp":
		var t time.Time
		if err := node.Decode(&t); err == nil {
			return DateTime(t.UTC())
		}
		if t, ok := sniffDateTime(node.Value); ok {
			return DateTime(t)
		}
		return String(node.Value)
	default:
		if t, ok := sniffDateTime(node.Value); ok {
			return DateTime(t)
		}
		return String(node.Value)
	}
}

// debugMapping renders a mapping node as a Go-map-ish debug string,
// mirroring the Rust `format!("{:?}", v)` fallback for nested maps.
func debugMapping(node *yaml.Node) string {
	var sb strings.Builder
	sb.WriteString("map[")
	for i := 0; i+1 < len(node.Content); i += 2 {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(node.Content[i].Value)
		sb.WriteString(":")
		sb.WriteString(decodeYAMLNode(node.Content[i+1]).String())
	}
	sb.WriteString("]")
	return sb.String()
}

// decodeYAMLMapping parses a YAML document expected to be a top-level
// mapping and returns it as an OrderedMap, preserving key order. Returns
// an error if the document does not parse or is not a mapping.
func decodeYAMLMapping(yamlText string) (*OrderedMap, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(yamlText), &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return NewOrderedMap(), nil
	}
	root := doc.Content[0]
	out := NewOrderedMap()
	if root.Kind != yaml.MappingNode {
		return out, nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		out.Set(key, decodeYAMLNode(root.Content[i+1]))
	}
	return out, nil
}

// decodeYAMLSequenceOfMappings parses a YAML document expected to be a
// top-level sequence of single-entry mappings (the back-matter shape) and
// merges it into a single OrderedMap in document order. Duplicate keys:
// the first collision promotes the existing scalar to a [scalar, new]
// list; later collisions append to whatever is currently stored (which
// may already be a nested list if the key started life as an explicit
// YAML list).
func decodeYAMLSequenceOfMappings(yamlText string) (*OrderedMap, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(yamlText), &doc); err != nil {
		return nil, err
	}
	out := NewOrderedMap()
	if len(doc.Content) == 0 {
		return out, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		return out, nil
	}
	promoted := make(map[string]bool)
	for _, item := range root.Content {
		if item.Kind != yaml.MappingNode {
			continue
		}
		for i := 0; i+1 < len(item.Content); i += 2 {
			key := strings.TrimSuffix(item.Content[i].Value, ":")
			val := decodeYAMLNode(item.Content[i+1])
			if existing, ok := out.Get(key); ok {
				if promoted[key] {
					list, _ := existing.AsList()
					out.Set(key, List(append(append([]Value{}, list...), val)))
				} else {
					out.Set(key, List([]Value{existing, val}))
					promoted[key] = true
				}
			} else {
				out.Set(key, val)
			}
		}
	}
	return out, nil
}
