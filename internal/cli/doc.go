// Package cli defines the Cobra command tree for the scaffold CLI. The root
// command runs the synthesize, confirm and materialize flow; each other file
// registers one subcommand. Commands delegate to internal packages and only
// handle flags, console output and user interaction.
package cli
