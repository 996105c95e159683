package scaffold

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nextscaffold/scaffold/internal/tree"
	"github.com/nextscaffold/scaffold/internal/ui"
)

// QuestionExisting is asked when the project directory is already there.
const QuestionExisting = "Should we try to scaffold within the existing project?"

// Status says how a materialization ended.
type Status int

const (
	// Reconciled means the tree was reconciled into the project directory.
	Reconciled Status = iota
	// Planned means a dry run computed the plan without touching the disk.
	Planned
	// Declined means the user chose not to scaffold into an existing project.
	Declined
	// BootstrapFailed means the base project could not be created.
	BootstrapFailed
)

func (s Status) String() string {
	switch s {
	case Reconciled:
		return "reconciled"
	case Planned:
		return "planned"
	case Declined:
		return "declined"
	case BootstrapFailed:
		return "bootstrap-failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(question string, defaultYes bool) (bool, error)
}

// commandLiner is implemented by bootstrappers that can show their command.
type commandLiner interface {
	CommandLine(name, template string) string
}

// Materializer creates a project and fills in a synthesized tree.
type Materializer struct {
	Bootstrapper Bootstrapper
	Prompter     Confirmer
	Out          io.Writer

	Dir      string   // parent directory of the project; defaults to the working directory
	Template string   // passed to the bootstrapper
	Exclude  []string // directory names skipped while listing the project
	DryRun   bool
}

// Result describes what a materialization did.
type Result struct {
	Status     Status
	ProjectDir string
	Plan       *Plan
	Created    []string
	Err        error // bootstrap failure when Status is BootstrapFailed
}

// Materialize creates the base project called name unless its directory
// already exists, then reconciles t into it. Declining to continue in an
// existing project and a failed bootstrap are reported through Result, not
// as errors; the returned error is for I/O and prompt failures.
func (m *Materializer) Materialize(ctx context.Context, name string, t *tree.Node) (*Result, error) {
	parent := m.Dir
	if parent == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		parent = wd
	}
	parent, err := filepath.Abs(parent)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", parent, err)
	}
	projectDir := filepath.Join(parent, name)
	res := &Result{ProjectDir: projectDir}

	info, statErr := os.Stat(projectDir)
	switch {
	case statErr == nil:
		if !info.IsDir() {
			return nil, fmt.Errorf("%s exists and is not a directory", projectDir)
		}
		m.println(ui.Failure.Render("Project already exists."))
		ok, err := m.Prompter.Confirm(QuestionExisting, true)
		if err != nil {
			return nil, fmt.Errorf("reading answer: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !ok {
			res.Status = Declined
			return res, nil
		}

	case !os.IsNotExist(statErr):
		return nil, fmt.Errorf("checking %s: %w", projectDir, statErr)

	case m.DryRun:
		if cl, ok := m.Bootstrapper.(commandLiner); ok {
			m.println(ui.Success.Render("Would run:"), ui.Command.Render(cl.CommandLine(name, m.Template)))
		}

	default:
		if cl, ok := m.Bootstrapper.(commandLiner); ok {
			m.println(ui.Success.Render("Executing command to setup next app:"), ui.Command.Render(cl.CommandLine(name, m.Template)))
		}
		dir, err := m.Bootstrapper.CreateBaseProject(ctx, name, m.Template)
		if err != nil {
			m.println(ui.Failure.Render("Next app creation failed. Please try again."))
			res.Status = BootstrapFailed
			res.Err = err
			return res, nil
		}
		if dir != "" {
			res.ProjectDir = dir
		}
		m.println(ui.Success.Render("Next app created successfully!"))
		m.println(ui.Success.Render("Scaffolding project..."))
	}

	exclude := m.Exclude
	if exclude == nil {
		exclude = DefaultExclude
	}
	plan, err := PlanReconcile(res.ProjectDir, t, exclude)
	if err != nil {
		return nil, err
	}
	res.Plan = plan

	if m.DryRun {
		res.Status = Planned
		return res, nil
	}

	res.Created, err = Apply(plan)
	if err != nil {
		return res, err
	}
	res.Status = Reconciled
	return res, nil
}

func (m *Materializer) println(a ...any) {
	if m.Out != nil {
		fmt.Fprintln(m.Out, a...)
	}
}
