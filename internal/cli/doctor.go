package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/nextscaffold/scaffold/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that everything needed to scaffold a project is in place",
	Long: `Run diagnostic checks: the completion provider and its API key, the bootstrap
command and its version, Node.js, and the config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Current()
		if err != nil {
			return err
		}
		problems := runDoctor(cmd.Context(), cmd.OutOrStdout(), settings)
		if problems > 0 {
			return fmt.Errorf("%d check(s) failed", problems)
		}
		return nil
	},
}

// Probes, replaced in tests.
var (
	lookPath       = exec.LookPath
	commandVersion = func(ctx context.Context, bin string) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		var out bytes.Buffer
		cmd := exec.CommandContext(ctx, bin, "--version")
		cmd.Stdout = &out
		cmd.Stderr = &out
		if err := cmd.Run(); err != nil {
			return "", err
		}
		return out.String(), nil
	}
)

// runDoctor prints one line per check and returns the number of failures.
func runDoctor(ctx context.Context, w io.Writer, s config.Settings) int {
	problems := 0
	problems += checkProvider(w, s)
	problems += checkBootstrap(ctx, w, s.Bootstrap)
	checkBinary(w, "node")
	checkConfigFile(w)
	return problems
}

func checkProvider(w io.Writer, s config.Settings) int {
	fmt.Fprintln(w, "Provider check:")
	fmt.Fprintf(w, "  [INFO] provider %s, model %s\n", s.Provider, s.EffectiveModel())
	env := s.KeyEnv()
	if env == "" {
		fmt.Fprintf(w, "  [ OK ] provider %s needs no API key\n", s.Provider)
		return 0
	}
	if s.APIKey() == "" {
		fmt.Fprintf(w, "  [MISS] %s is not set (export it or add it to .env)\n", env)
		return 1
	}
	fmt.Fprintf(w, "  [ OK ] %s is set\n", env)
	return 0
}

func checkBootstrap(ctx context.Context, w io.Writer, b config.Bootstrap) int {
	fmt.Fprintln(w, "Bootstrap check:")
	path, err := lookPath(b.Command)
	if err != nil {
		fmt.Fprintf(w, "  [MISS] %s not found\n", b.Command)
		return 1
	}
	fmt.Fprintf(w, "  [ OK ] %s found at %s\n", b.Command, path)

	if b.MinVersion == "" {
		return 0
	}
	constraint, err := semver.NewConstraint(">= " + b.MinVersion)
	if err != nil {
		fmt.Fprintf(w, "  [WARN] invalid %s %q: %v\n", config.KeyBootstrapMinVer, b.MinVersion, err)
		return 0
	}

	raw, err := commandVersion(ctx, path)
	if err != nil {
		fmt.Fprintf(w, "  [WARN] could not run %s --version: %v\n", b.Command, err)
		return 0
	}
	v, err := parseToolVersion(raw)
	if err != nil {
		fmt.Fprintf(w, "  [WARN] %v\n", err)
		return 0
	}
	if !constraint.Check(v) {
		fmt.Fprintf(w, "  [FAIL] %s %s is older than %s\n", b.Command, v, b.MinVersion)
		return 1
	}
	fmt.Fprintf(w, "  [ OK ] %s %s satisfies >= %s\n", b.Command, v, b.MinVersion)
	return 0
}

// parseToolVersion finds the first semantic version in a --version output
// such as "1.22.19" or "npx v10.2.4".
func parseToolVersion(out string) (*semver.Version, error) {
	for _, field := range strings.Fields(out) {
		if v, err := semver.NewVersion(strings.TrimSuffix(field, ",")); err == nil {
			return v, nil
		}
	}
	return nil, fmt.Errorf("no version found in %q", strings.TrimSpace(out))
}

func checkBinary(w io.Writer, name string) {
	fmt.Fprintln(w, "Runtime check:")
	path, err := lookPath(name)
	if err != nil {
		fmt.Fprintf(w, "  [MISS] %s not found\n", name)
		return
	}
	fmt.Fprintf(w, "  [ OK ] %s found at %s\n", name, path)
}

func checkConfigFile(w io.Writer) {
	fmt.Fprintln(w, "Config check:")
	path := config.FilePath()
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(w, "  [INFO] no config file at %s, defaults in use\n", path)
		return
	}
	fmt.Fprintf(w, "  [ OK ] %s\n", path)
}
