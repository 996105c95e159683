// Package scaffold materializes a synthesized tree on disk. It creates the
// base project with an external bootstrap command, then reconciles the tree
// against the project directory by creating every missing file as an empty
// placeholder. Existing files are never opened for writing.
package scaffold
