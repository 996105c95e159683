package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nextscaffold/scaffold/internal/completion"
	"github.com/nextscaffold/scaffold/internal/config"
	"github.com/nextscaffold/scaffold/internal/scaffold"
	"github.com/nextscaffold/scaffold/internal/tree"
	"github.com/nextscaffold/scaffold/internal/ui"
)

// Collaborators, replaced in tests.
var (
	newPrompter = func(ctx context.Context) ui.Prompter {
		return ui.NewPrompter(ctx, os.Stdin, os.Stdout)
	}
	newCompleter = func(ctx context.Context, s config.Settings) (completion.Completer, error) {
		return completion.New(ctx, completion.Options{
			Provider: s.Provider,
			BaseURL:  s.BaseURL,
			APIKey:   s.APIKey(),
		})
	}
	newBootstrapper = func(s config.Settings, dir string) scaffold.Bootstrapper {
		return &scaffold.ExecBootstrapper{
			Command:      s.Bootstrap.Command,
			Args:         s.Bootstrap.Args,
			TemplateFlag: s.Bootstrap.TemplateFlag,
			Dir:          dir,
		}
	}
)

// materialize creates the project and reconciles root into it, reporting
// the outcome. Declining and bootstrap failures are not errors.
func materialize(ctx context.Context, out io.Writer, s config.Settings, p scaffold.Confirmer, opts runOptions, root *tree.Node) error {
	dir := opts.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		dir = wd
	}

	m := &scaffold.Materializer{
		Bootstrapper: newBootstrapper(s, dir),
		Prompter:     p,
		Out:          out,
		Dir:          dir,
		Template:     s.Bootstrap.Template,
		Exclude:      s.Exclude,
		DryRun:       opts.DryRun,
	}
	res, err := m.Materialize(ctx, opts.Name, root)
	if err != nil {
		return abortOnCancel(out, err)
	}

	switch res.Status {
	case scaffold.Declined:
		fmt.Fprintln(out, ui.Muted.Render("Nothing was changed."))
	case scaffold.BootstrapFailed:
		fmt.Fprintln(out, ui.Muted.Render(res.Err.Error()))
	case scaffold.Planned:
		fmt.Fprintln(out, ui.Success.Render(fmt.Sprintf("Dry run: %d files would be created in %s", len(res.Plan.Create), res.ProjectDir)))
		listPaths(out, res.ProjectDir, "+", res.Plan.Create)
		listPaths(out, res.ProjectDir, "!", res.Plan.Conflicts)
	case scaffold.Reconciled:
		listPaths(out, res.ProjectDir, "+", res.Created)
		listPaths(out, res.ProjectDir, "!", res.Plan.Conflicts)
		if n := len(res.Plan.Present); n > 0 {
			fmt.Fprintln(out, ui.Muted.Render(fmt.Sprintf("%d files already existed and were left alone.", n)))
		}
		fmt.Fprintln(out, ui.Success.Render("Done! Enjoy."))
	}
	return nil
}

func listPaths(out io.Writer, root, marker string, paths []string) {
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			rel = p
		}
		fmt.Fprintln(out, ui.Muted.Render("  "+marker+" "+filepath.ToSlash(rel)))
	}
}
