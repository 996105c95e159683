// Package ui holds console presentation: lipgloss styles, the startup banner
// and the interactive prompters. A bubbletea prompter is used on terminals
// and a plain line prompter everywhere else.
package ui
