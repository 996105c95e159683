// Package approval runs the confirm-or-retry dialog around scaffold
// synthesis. The user either approves a synthesized tree, or rejects it and
// decides whether to synthesize again from the same description.
package approval
