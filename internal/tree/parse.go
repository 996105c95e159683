package tree

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/tree.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// ParseError reports text that is not a single JSON value.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "scaffold is not valid JSON: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// Issue is one problem found while validating a tree.
type Issue struct {
	Path    string // JSON pointer of the offending value, "" for the root
	Message string
}

// ValidationError reports well-formed text that is not a scaffold tree.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		if is.Path != "" {
			msgs = append(msgs, is.Path+": "+is.Message)
		} else {
			msgs = append(msgs, is.Message)
		}
	}
	return "scaffold is not a file tree: " + strings.Join(msgs, "; ")
}

// getSchema compiles the embedded JSON schema once and returns it.
func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("tree.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("tree.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// Parse reads a JSON scaffold tree. It fails with *ParseError when data is
// not JSON and with *ValidationError when any value is not an object or a
// name cannot be used as a path element. Nothing is returned on failure.
func Parse(data []byte) (*Node, error) {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	schema, err := getSchema()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return nil, fmt.Errorf("unexpected validation error type: %w", err)
		}
		return nil, &ValidationError{Issues: extractIssues(ve)}
	}

	// The shape is known to be objects all the way down; decode again with
	// the token stream to keep key order and check names.
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, &ParseError{Err: err}
	}
	root := NewDir("")
	var issues []Issue
	if err := decodeChildren(dec, root, "", &issues); err != nil {
		return nil, &ParseError{Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &ParseError{Err: errors.New("unexpected data after top-level object")}
	}
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return root, nil
}

// decodeChildren consumes the members of an object whose opening brace has
// already been read, appending one child per key, and the closing brace.
func decodeChildren(dec *json.Decoder, dir *Node, pointer string, issues *[]Issue) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		raw, _ := tok.(string)
		name := normalizeName(raw)
		childPointer := pointer + "/" + escapePointer(raw)

		if _, err := dec.Token(); err != nil { // opening brace of the value
			return err
		}
		child := &Node{Name: name}
		if err := decodeChildren(dec, child, childPointer, issues); err != nil {
			return err
		}
		if len(child.Children) > 0 {
			child.Kind = Dir
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
	_, err := dec.Token() // closing brace
	return err
}

// escapePointer escapes a key for use in a JSON pointer (RFC 6901).
func escapePointer(s string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(s)
}

// extractIssues walks the ValidationError tree and returns leaf-level issues.
func extractIssues(ve *jsonschema.ValidationError) []Issue {
	var issues []Issue
	collectIssues(ve, &issues)
	if len(issues) == 0 {
		return []Issue{{Message: ve.Error()}}
	}
	return dedupe(issues)
}

func collectIssues(ve *jsonschema.ValidationError, issues *[]Issue) {
	if len(ve.Causes) == 0 {
		path := ""
		if len(ve.InstanceLocation) > 0 {
			path = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		msg := ""
		if ve.ErrorKind != nil {
			msg = ve.ErrorKind.LocalizedString(printer)
		}
		*issues = append(*issues, Issue{Path: path, Message: msg})
		return
	}
	for _, cause := range ve.Causes {
		collectIssues(cause, issues)
	}
}

func dedupe(issues []Issue) []Issue {
	seen := make(map[Issue]bool)
	var out []Issue
	for _, is := range issues {
		if !seen[is] {
			seen[is] = true
			out = append(out, is)
		}
	}
	return out
}
