package tree

import (
	"fmt"
	"strings"
)

// Kind discriminates files from directories.
type Kind int

const (
	File Kind = iota
	Dir
)

func (k Kind) String() string {
	switch k {
	case File:
		return "file"
	case Dir:
		return "dir"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Node is a file or a directory. Only directories have children, and their
// order is significant. The root of a tree is an unnamed directory.
type Node struct {
	Name     string
	Kind     Kind
	Children []*Node
}

// NewFile returns a file node.
func NewFile(name string) *Node {
	return &Node{Name: name, Kind: File}
}

// NewDir returns a directory node holding children in order.
func NewDir(name string, children ...*Node) *Node {
	return &Node{Name: name, Kind: Dir, Children: children}
}

// IsDir reports whether n is a directory.
func (n *Node) IsDir() bool { return n.Kind == Dir }

// Child returns the direct child called name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// CountFiles returns the number of file nodes under n.
func (n *Node) CountFiles() int {
	if n.Kind == File {
		return 1
	}
	total := 0
	for _, c := range n.Children {
		total += c.CountFiles()
	}
	return total
}

// Flatten returns the slash-separated paths of every file under root,
// depth-first in child order. Directories are implied by their files.
func Flatten(root *Node) []string {
	var paths []string
	var walk func(n *Node, prefix string)
	walk = func(n *Node, prefix string) {
		for _, c := range n.Children {
			p := prefix + c.Name
			if c.Kind == File {
				paths = append(paths, p)
				continue
			}
			walk(c, p+"/")
		}
	}
	walk(root, "")
	return paths
}

// Nest rebuilds a tree from slash-separated file paths. Children appear in
// the order their first path was seen, so Nest(Flatten(t)) equals t for any
// tree whose directories are non-empty.
func Nest(paths []string) (*Node, error) {
	root := NewDir("")
	for _, p := range paths {
		parts := strings.Split(p, "/")
		dir := root
		for i, part := range parts {
			if err := checkName(part); err != nil {
				return nil, fmt.Errorf("path %q: %w", p, err)
			}
			last := i == len(parts)-1
			existing := dir.Child(part)
			switch {
			case existing == nil && last:
				dir.Children = append(dir.Children, NewFile(part))
			case existing == nil:
				next := NewDir(part)
				dir.Children = append(dir.Children, next)
				dir = next
			case last:
				return nil, fmt.Errorf("path %q: %s already present as a %s", p, part, existing.Kind)
			case existing.Kind == File:
				return nil, fmt.Errorf("path %q: %s is a file, not a directory", p, part)
			default:
				dir = existing
			}
		}
	}
	return root, nil
}

// Render returns the indented plaintext form of a tree: one entry per line,
// four spaces per level, directories prefixed with "/".
func Render(root *Node) string {
	var b strings.Builder
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		for _, c := range n.Children {
			b.WriteString(strings.Repeat("    ", depth))
			if c.Kind == Dir {
				b.WriteString("/")
			}
			b.WriteString(c.Name)
			b.WriteString("\n")
			if c.Kind == Dir {
				walk(c, depth+1)
			}
		}
	}
	walk(root, 0)
	return b.String()
}

// normalizeName trims whitespace and surrounding slashes, which models
// often copy over from the plaintext tree ("/pages", "api/").
func normalizeName(raw string) string {
	return strings.Trim(strings.TrimSpace(raw), "/")
}

// checkName rejects names that cannot be a single path element.
func checkName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("empty name")
	case name == "." || name == "..":
		return fmt.Errorf("name %q is not allowed", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("name %q contains a path separator", name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("name %q contains a NUL byte", name)
	}
	return nil
}
