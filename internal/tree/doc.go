// Package tree models a project scaffold as a tree of files and directories.
//
// The completion service describes a scaffold as a JSON object whose values
// are objects: an empty object is a file, a non-empty object is a directory.
// Parse turns that text into a Node tree, rejecting anything that does not
// have exactly that shape, and keeps keys in the order they were written.
// Flatten and Nest convert between a tree and its list of file paths.
package tree
