package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// MarshalJSON encodes n in the scaffold JSON form, keeping child order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, n *Node) error {
	buf.WriteByte('{')
	for i, c := range n.Children {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := writeJSON(buf, c); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// EncodeJSON returns the indented JSON form of root.
func EncodeJSON(root *Node) ([]byte, error) {
	compact, err := root.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// EncodeYAML returns the YAML form of root. Files are written as "{}".
func EncodeYAML(root *Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toYAML(root)); err != nil {
		return nil, fmt.Errorf("encoding YAML plan: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toYAML(n *Node) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode}
	if n.Kind == File {
		m.Style = yaml.FlowStyle
	}
	for _, c := range n.Children {
		m.Content = append(m.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: c.Name},
			toYAML(c),
		)
	}
	return m
}

// ParseYAML reads a YAML plan. A key whose value is null or an empty mapping
// is a file; a non-empty mapping is a directory. Aliases resolve to their
// anchored value.
func ParseYAML(data []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Err: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &ValidationError{Issues: []Issue{{Message: "empty document"}}}
	}

	root := NewDir("")
	var issues []Issue
	fromYAML(doc.Content[0], root, "", map[*yaml.Node]bool{}, &issues)
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return root, nil
}

// fromYAML fills dir from mapping m. open holds the mappings being expanded
// on the current path, so an alias that points back at one is reported.
func fromYAML(m *yaml.Node, dir *Node, pointer string, open map[*yaml.Node]bool, issues *[]Issue) {
	if m.Kind != yaml.MappingNode {
		*issues = append(*issues, Issue{Path: pointer, Message: fmt.Sprintf("line %d: expected a mapping", m.Line)})
		return
	}
	open[m] = true
	defer delete(open, m)
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, val := m.Content[i], m.Content[i+1]
		name := normalizeName(key.Value)
		childPointer := pointer + "/" + escapePointer(key.Value)

		for val.Kind == yaml.AliasNode && val.Alias != nil {
			val = val.Alias
		}

		child := &Node{Name: name}
		switch {
		case val.Kind == yaml.ScalarNode && val.Tag == "!!null":
		case val.Kind == yaml.MappingNode && open[val]:
			*issues = append(*issues, Issue{Path: childPointer, Message: fmt.Sprintf("line %d: alias refers to an enclosing mapping", key.Line)})
			continue
		case val.Kind == yaml.MappingNode:
			fromYAML(val, child, childPointer, open, issues)
			if len(child.Children) > 0 {
				child.Kind = Dir
			}
		default:
			*issues = append(*issues, Issue{Path: childPointer, Message: fmt.Sprintf("line %d: expected a mapping or null", val.Line)})
			continue
		}

		if err := checkName(name); err != nil {
			*issues = append(*issues, Issue{Path: childPointer, Message: err.Error()})
			continue
		}
		if dir.Child(name) != nil {
			*issues = append(*issues, Issue{Path: childPointer, Message: fmt.Sprintf("duplicate entry %q", name)})
			continue
		}
		dir.Children = append(dir.Children, child)
	}
}

func isYAMLPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// ReadFile loads a plan from a .json, .yaml or .yml file.
func ReadFile(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan %s: %w", path, err)
	}
	var root *Node
	if isYAMLPath(path) {
		root, err = ParseYAML(data)
	} else {
		root, err = Parse(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing plan %s: %w", path, err)
	}
	return root, nil
}

// WriteFile saves root as a plan, in YAML when path ends in .yaml or .yml
// and in JSON otherwise.
func WriteFile(path string, root *Node) error {
	var (
		data []byte
		err  error
	)
	if isYAMLPath(path) {
		data, err = EncodeYAML(root)
	} else {
		data, err = EncodeJSON(root)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing plan %s: %w", path, err)
	}
	return nil
}
