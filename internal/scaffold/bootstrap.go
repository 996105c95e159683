package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Bootstrapper creates the base project that reconciliation fills in.
type Bootstrapper interface {
	// CreateBaseProject creates the project called name from template and
	// returns its directory.
	CreateBaseProject(ctx context.Context, name, template string) (string, error)
}

// BootstrapError reports a bootstrap command that exited non-zero.
type BootstrapError struct {
	Command  string
	ExitCode int
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
}

// ExecBootstrapper runs a project generator such as
// "yarn create next-app -e with-tailwindcss <name>".
type ExecBootstrapper struct {
	Command      string
	Args         []string
	TemplateFlag string // flag placed before the template; no template is passed when empty
	Dir          string // working directory; the project is created at Dir/name

	// Stdout and Stderr receive the child's streams unchanged; they default
	// to os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

func (b *ExecBootstrapper) argv(name, template string) []string {
	args := append([]string{}, b.Args...)
	if b.TemplateFlag != "" && template != "" {
		args = append(args, b.TemplateFlag, template)
	}
	return append(args, name)
}

// CommandLine returns the command as it will be run, for display.
func (b *ExecBootstrapper) CommandLine(name, template string) string {
	return strings.Join(append([]string{b.Command}, b.argv(name, template)...), " ")
}

func (b *ExecBootstrapper) CreateBaseProject(ctx context.Context, name, template string) (string, error) {
	bin, err := exec.LookPath(b.Command)
	if err != nil {
		return "", fmt.Errorf("bootstrap command %q not found: %w", b.Command, err)
	}

	cmd := exec.CommandContext(ctx, bin, b.argv(name, template)...)
	cmd.Dir = b.Dir
	cmd.Stdout = b.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = b.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &BootstrapError{Command: b.Command, ExitCode: exitErr.ExitCode()}
		}
		return "", fmt.Errorf("running %s: %w", b.Command, err)
	}
	return filepath.Join(b.Dir, name), nil
}
