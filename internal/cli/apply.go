package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nextscaffold/scaffold/internal/config"
	"github.com/nextscaffold/scaffold/internal/tree"
	"github.com/nextscaffold/scaffold/internal/ui"
	"github.com/spf13/cobra"
)

var applyPlan string

func init() {
	applyCmd.Flags().StringVar(&applyPlan, "plan", "", "Plan file (.json, .yaml or .yml) to materialize")
	applyCmd.MarkFlagRequired("plan")
	rootCmd.AddCommand(applyCmd)
}

var applyCmd = &cobra.Command{
	Use:   "apply <project-name> --plan <file>",
	Short: "Materialize a saved plan without calling the model",
	Long: `Create the project from a plan written with --save-plan (or by hand) and fill in
every missing file of the plan. The plan is validated the same way model output is.`,
	Args: projectArgs(1, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Current()
		if err != nil {
			return err
		}
		return runApply(cmd.Context(), cmd.OutOrStdout(), settings, runOptions{Name: args[0], DryRun: flagDryRun}, applyPlan)
	},
}

func runApply(ctx context.Context, out io.Writer, s config.Settings, opts runOptions, planPath string) error {
	if planPath == "" {
		return errors.New("--plan is required")
	}
	root, err := tree.ReadFile(planPath)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, ui.Success.Render(strings.TrimRight(tree.Render(root), "\n")))
	return materialize(ctx, out, s, newPrompter(ctx), opts, root)
}
