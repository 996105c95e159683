//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir    string // SCAFFOLD_HOME, holds config.yaml
	ParentDir  string // where projects are created
	BinDir     string // prepended to PATH, holds the fake bootstrap command
	CommandLog string // every bootstrap invocation is appended here
}

// setupTestEnv creates isolated temp directories, points SCAFFOLD_HOME at
// one of them and installs a fake "create-app" bootstrap command on PATH.
// The env vars are restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake bootstrap command is a shell script")
	}

	env := &testEnv{
		HomeDir:   t.TempDir(),
		ParentDir: t.TempDir(),
		BinDir:    t.TempDir(),
	}
	env.CommandLog = filepath.Join(env.BinDir, "calls.log")

	t.Setenv("SCAFFOLD_HOME", env.HomeDir)
	t.Setenv("SCAFFOLD_PROVIDER", "fake")
	t.Setenv("SCAFFOLD_BOOTSTRAP_COMMAND", "create-app")
	t.Setenv("SCAFFOLD_BOOTSTRAP_ARGS", "--quiet")
	t.Setenv("SCAFFOLD_BOOTSTRAP_TEMPLATE_FLAG", "--template")
	t.Setenv("PATH", env.BinDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	// The last argument is the project name; the template follows --template.
	script := `#!/bin/sh
echo "$@" >> "` + env.CommandLog + `"
for last; do :; done
if [ "$last" = "broken" ]; then
  echo "template download failed" >&2
  exit 2
fi
mkdir -p "$last/pages" "$last/node_modules/next" "$last/.git"
echo '{"name": "'"$last"'"}' > "$last/package.json"
echo 'export default function Home() { return null }' > "$last/pages/index.tsx"
echo 'module.exports = {}' > "$last/node_modules/next/index.js"
`
	writeFile(t, filepath.Join(env.BinDir, "create-app"), script)
	if err := os.Chmod(filepath.Join(env.BinDir, "create-app"), 0755); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	return env
}

// writeFile creates parent directories and writes content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertEmptyFile fails unless path is an existing empty regular file.
func assertEmptyFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
		return
	}
	if info.IsDir() || info.Size() != 0 {
		t.Errorf("expected %s to be an empty file (dir=%v, size=%d)", path, info.IsDir(), info.Size())
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
