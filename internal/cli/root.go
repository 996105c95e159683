package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/nextscaffold/scaffold/internal/approval"
	"github.com/nextscaffold/scaffold/internal/branding"
	"github.com/nextscaffold/scaffold/internal/completion"
	"github.com/nextscaffold/scaffold/internal/config"
	"github.com/nextscaffold/scaffold/internal/synth"
	"github.com/nextscaffold/scaffold/internal/tree"
	"github.com/nextscaffold/scaffold/internal/ui"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	flagProvider    string
	flagModel       string
	flagMaxAttempts int
	flagDryRun      bool
	flagSavePlan    string
	flagVerbose     bool
	flagNoBanner    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "Completion provider (openai, gemini, fake)")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "Model identifier sent with every request")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log completion requests to stderr")
	rootCmd.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "Show what would be created without touching the disk")
	rootCmd.Flags().IntVar(&flagMaxAttempts, "max-attempts", 0, "Stop offering retries after this many attempts (0 = no limit)")
	rootCmd.Flags().StringVar(&flagSavePlan, "save-plan", "", "Write the approved tree to a .json or .yaml plan file")
	rootCmd.Flags().BoolVar(&flagNoBanner, "no-banner", false, "Do not print the banner")
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName() + " <project-name> [description]",
	Short: branding.Description(),
	Long: branding.DisplayName() + ` asks a language model for a folder layout that fits your project
description, shows it for approval, creates a Next.js app and fills in every missing
file of the layout as an empty placeholder. Existing files are never modified.`,
	Example: `  ` + branding.CLIName() + ` habits "an app to track my daily habits"
  ` + branding.CLIName() + ` habits --save-plan habits.yaml
  ` + branding.CLIName() + ` apply habits --plan habits.yaml`,
	Args:          projectArgs(1, 2),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.Load()
		flags := cmd.Flags()
		if flags.Changed("provider") {
			config.Override(config.KeyProvider, flagProvider)
		}
		if flags.Changed("model") {
			config.Override(config.KeyModel, flagModel)
		}
		if flags.Changed("max-attempts") {
			config.Override(config.KeyMaxAttempts, flagMaxAttempts)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Current()
		if err != nil {
			return err
		}
		opts := runOptions{
			Name:     args[0],
			DryRun:   flagDryRun,
			SavePlan: flagSavePlan,
			Verbose:  flagVerbose,
			NoBanner: flagNoBanner,
		}
		if len(args) > 1 {
			opts.Description = args[1]
		}
		return runScaffold(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), settings, opts)
	},
}

// projectArgs validates the positional arguments and checks the project
// name can be used as a directory name.
func projectArgs(min, max int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("please provide a project name. You can do this by running `%s <project-name>`", branding.CLIName())
		}
		if err := cobra.RangeArgs(min, max)(cmd, args); err != nil {
			return err
		}
		return validateProjectName(args[0])
	}
}

func validateProjectName(name string) error {
	if strings.TrimSpace(name) == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid project name %q: use a plain directory name", name)
	}
	return nil
}

// Execute runs the root command with build info injected via ldflags.
func Execute(ctx context.Context, version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.Failure.Render("Error: "+err.Error()))
	}
	return err
}

type runOptions struct {
	Name        string
	Description string
	Dir         string // parent of the project directory; the working directory when empty
	DryRun      bool
	SavePlan    string
	Verbose     bool
	NoBanner    bool
}

var stageLabels = map[string]string{
	synth.ReformStage.Name:    "Refining the description...",
	synth.StructureStage.Name: "Drafting the folder structure...",
	synth.JSONStage.Name:      "Converting the structure to JSON...",
}

// runScaffold is the default command: synthesize a tree, get it approved,
// then materialize it.
func runScaffold(ctx context.Context, out, errOut io.Writer, s config.Settings, opts runOptions) error {
	if !opts.NoBanner {
		fmt.Fprintln(out, ui.Banner(branding.DisplayName(), branding.Description()))
	}

	prompter := newPrompter(ctx)

	description := strings.TrimSpace(opts.Description)
	if description == "" {
		answer, err := prompter.Ask(fmt.Sprintf("What does %q do? Try to be as descriptive as possible for best results.", opts.Name))
		if err != nil {
			return abortOnCancel(out, err)
		}
		description = strings.TrimSpace(answer)
		if description == "" {
			return errors.New("a project description is required")
		}
	} else {
		fmt.Fprintln(out, ui.Success.Render(fmt.Sprintf("Scaffolding %s with description %q", opts.Name, description)))
	}

	client, err := newCompleter(ctx, s)
	if err != nil {
		return fmt.Errorf("creating completion client: %w", err)
	}
	if opts.Verbose {
		client = completion.Chain(client, completion.WithLogging(log.New(errOut, "", log.LstdFlags)))
	}

	synthesizer := synth.New(client, s.EffectiveModel())
	synthesizer.OnStage = func(stage string) {
		fmt.Fprintln(out, ui.Muted.Render(stageLabels[stage]))
	}

	loop := &approval.Loop{
		Synth:       synthesizer,
		Prompter:    prompter,
		Out:         out,
		MaxAttempts: s.MaxAttempts,
		Present:     presentResult,
	}
	outcome, err := loop.Run(ctx, description)
	if err != nil {
		return abortOnCancel(out, err)
	}
	if !outcome.Approved {
		fmt.Fprintln(out, ui.Failure.Render(fmt.Sprintf("Okay, we'll exit now. You can try again later by running `%s`.", branding.CLIName())))
		return nil
	}

	if opts.SavePlan != "" {
		if err := tree.WriteFile(opts.SavePlan, outcome.Result.Tree); err != nil {
			return err
		}
		fmt.Fprintln(out, ui.Muted.Render("Saved plan to "+opts.SavePlan))
	}

	return materialize(ctx, out, s, prompter, opts, outcome.Result.Tree)
}

func presentResult(w io.Writer, res *synth.Result) {
	fmt.Fprintln(w, ui.Success.Render(strings.TrimRight(res.Human, "\n")))
	fmt.Fprintln(w, ui.Muted.Render(fmt.Sprintf("%d files", res.Tree.CountFiles())))
}

// abortOnCancel turns an interrupted prompt or run into a clean exit.
func abortOnCancel(out io.Writer, err error) error {
	if errors.Is(err, ui.ErrCanceled) || errors.Is(err, context.Canceled) {
		fmt.Fprintln(out, ui.Failure.Render("Canceled."))
		return nil
	}
	return err
}
