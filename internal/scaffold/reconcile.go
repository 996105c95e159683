package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nextscaffold/scaffold/internal/tree"
)

// DefaultExclude lists directory names reconciliation never descends into.
var DefaultExclude = []string{"node_modules", ".git"}

// Plan is the outcome of comparing a tree with a project directory. All
// paths are absolute and in tree order.
type Plan struct {
	Root      string
	Create    []string // missing files
	Present   []string // already on disk, left untouched
	Conflicts []string // blocked because an ancestor exists as a file
}

// ExistingPaths walks root and returns every path found, mapped to whether
// it is a directory. Directories named in exclude are listed but not entered.
// A missing root yields an empty set.
func ExistingPaths(root string, exclude []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if path == root {
			return nil
		}

		isDir := d.IsDir()
		if d.Type()&fs.ModeSymlink != 0 {
			if info, err := os.Stat(path); err == nil {
				isDir = info.IsDir()
			}
		}
		existing[path] = isDir

		if d.IsDir() && slices.Contains(exclude, d.Name()) {
			return fs.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", root, err)
	}
	return existing, nil
}

// PlanReconcile compares the files of t with what exists under root.
func PlanReconcile(root string, t *tree.Node, exclude []string) (*Plan, error) {
	existing, err := ExistingPaths(root, exclude)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Root: root}
	for _, rel := range tree.Flatten(t) {
		path := filepath.Join(root, filepath.FromSlash(rel))
		switch {
		case pathExists(existing, path):
			plan.Present = append(plan.Present, path)
		case blocked(existing, root, path):
			plan.Conflicts = append(plan.Conflicts, path)
		default:
			plan.Create = append(plan.Create, path)
		}
	}
	return plan, nil
}

func pathExists(existing map[string]bool, path string) bool {
	_, ok := existing[path]
	return ok
}

// blocked reports whether some ancestor of path below root is a file.
func blocked(existing map[string]bool, root, path string) bool {
	for dir := filepath.Dir(path); dir != root && strings.HasPrefix(dir, root); dir = filepath.Dir(dir) {
		if isDir, ok := existing[dir]; ok && !isDir {
			return true
		}
	}
	return false
}

// Apply creates every file in plan.Create as an empty file, making parent
// directories as needed. Files are opened create-exclusive, so a path that
// appeared since planning is left alone. It returns the paths actually
// created.
func Apply(plan *Plan) ([]string, error) {
	var created []string
	for _, path := range plan.Create {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return created, fmt.Errorf("creating directory for %s: %w", path, err)
		}
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				continue
			}
			return created, fmt.Errorf("creating %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return created, fmt.Errorf("closing %s: %w", path, err)
		}
		created = append(created, path)
	}
	return created, nil
}

// Reconcile plans and applies t against root in one step.
func Reconcile(root string, t *tree.Node, exclude []string) (*Plan, []string, error) {
	plan, err := PlanReconcile(root, t, exclude)
	if err != nil {
		return nil, nil, err
	}
	created, err := Apply(plan)
	return plan, created, err
}
