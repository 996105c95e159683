package tree

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sampleJSON = `{
  "public": {
    "favicon.ico": {}
  },
  "components": {
    "HabitList.tsx": {}
  },
  "pages": {
    "api": {
      "habits.ts": {}
    },
    "_app.tsx": {},
    "index.tsx": {}
  },
  "styles": {
    "globals.css": {}
  }
}`

func sampleTree() *Node {
	return NewDir("",
		NewDir("public", NewFile("favicon.ico")),
		NewDir("components", NewFile("HabitList.tsx")),
		NewDir("pages",
			NewDir("api", NewFile("habits.ts")),
			NewFile("_app.tsx"),
			NewFile("index.tsx"),
		),
		NewDir("styles", NewFile("globals.css")),
	)
}

func TestParse_KeepsOrderAndKinds(t *testing.T) {
	got, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !reflect.DeepEqual(got, sampleTree()) {
		t.Errorf("Parse() tree mismatch\n got: %s\nwant: %s", Render(got), Render(sampleTree()))
	}
}

func TestParse_EmptyObjectIsFile(t *testing.T) {
	got, err := Parse([]byte(`{"public":{},"pages":{"index.tsx":{}}}`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if pub := got.Child("public"); pub == nil || pub.Kind != File {
		t.Errorf("public should be a file, got %+v", pub)
	}
	if pages := got.Child("pages"); pages == nil || pages.Kind != Dir {
		t.Errorf("pages should be a dir, got %+v", pages)
	}
}

func TestParse_NormalizesSlashes(t *testing.T) {
	got, err := Parse([]byte(`{"/pages": {"api/": {"users.ts": {}}}}`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	want := []string{"pages/api/users.ts"}
	if paths := Flatten(got); !reflect.DeepEqual(paths, want) {
		t.Errorf("Flatten() = %v, want %v", paths, want)
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"truncated", `{"pages": {"index.tsx": {}`},
		{"trailing comma", `{"pages": {},}`},
		{"not json", `/public
    favicon.ico`},
		{"trailing data", `{"a": {}} {"b": {}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.in))
			if got != nil {
				t.Errorf("Parse() returned a tree for malformed input")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Errorf("error = %v (%T), want *ParseError", err, err)
			}
		})
	}
}

func TestParse_WrongShape(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantPath string
	}{
		{"top-level array", `["index.tsx"]`, ""},
		{"string leaf", `{"pages": {"index.tsx": "page"}}`, "/pages/index.tsx"},
		{"null leaf", `{"pages": {"index.tsx": null}}`, "/pages/index.tsx"},
		{"array of files", `{"pages": ["index.tsx"]}`, "/pages"},
		{"dot-dot name", `{"..": {"x": {}}}`, "/.."},
		{"inner separator", `{"pages/api": {"x.ts": {}}}`, "/pages~1api"},
		{"empty name", `{"": {}}`, "/"},
		{"duplicate after trim", `{"pages": {"a.tsx": {}}, "/pages": {"b.tsx": {}}}`, "/~1pages"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.in))
			if got != nil {
				t.Errorf("Parse() returned a tree for invalid input")
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error = %v (%T), want *ValidationError", err, err)
			}
			found := false
			for _, is := range ve.Issues {
				if is.Path == tt.wantPath {
					found = true
				}
			}
			if !found {
				t.Errorf("no issue at %q in %+v", tt.wantPath, ve.Issues)
			}
		})
	}
}

func TestParse_EmptyRoot(t *testing.T) {
	got, err := Parse([]byte(`{}`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(got.Children) != 0 || got.Kind != Dir {
		t.Errorf("expected empty root dir, got %+v", got)
	}
}

func TestFlatten(t *testing.T) {
	want := []string{
		"public/favicon.ico",
		"components/HabitList.tsx",
		"pages/api/habits.ts",
		"pages/_app.tsx",
		"pages/index.tsx",
		"styles/globals.css",
	}
	if got := Flatten(sampleTree()); !reflect.DeepEqual(got, want) {
		t.Errorf("Flatten() = %v, want %v", got, want)
	}
}

func TestNestFlattenRoundTrip(t *testing.T) {
	trees := map[string]*Node{
		"sample": sampleTree(),
		"empty":  NewDir(""),
		"flat":   NewDir("", NewFile("public"), NewFile("README.md")),
		"deep": NewDir("",
			NewDir("a", NewDir("b", NewDir("c", NewFile("d.ts")))),
			NewFile("e"),
			NewDir("f", NewFile("g"), NewDir("h", NewFile("i"))),
		),
	}
	for name, tr := range trees {
		t.Run(name, func(t *testing.T) {
			got, err := Nest(Flatten(tr))
			if err != nil {
				t.Fatalf("Nest() error: %v", err)
			}
			if !reflect.DeepEqual(got, tr) {
				t.Errorf("round trip mismatch\n got: %s\nwant: %s", Render(got), Render(tr))
			}
		})
	}
}

func TestNestFlattenRoundTrip_Parsed(t *testing.T) {
	parsed, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	got, err := Nest(Flatten(parsed))
	if err != nil {
		t.Fatalf("Nest() error: %v", err)
	}
	if !reflect.DeepEqual(got, parsed) {
		t.Errorf("round trip mismatch for parsed tree")
	}
}

func TestNest_Conflicts(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
	}{
		{"file then dir", []string{"pages", "pages/index.tsx"}},
		{"dir then file", []string{"pages/index.tsx", "pages"}},
		{"duplicate file", []string{"a.ts", "a.ts"}},
		{"empty segment", []string{"pages//index.tsx"}},
		{"dot-dot", []string{"../escape.ts"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Nest(tt.paths); err == nil {
				t.Errorf("Nest(%v) should fail", tt.paths)
			}
		})
	}
}

func TestRender(t *testing.T) {
	want := `/public
    favicon.ico
/components
    HabitList.tsx
/pages
    /api
        habits.ts
    _app.tsx
    index.tsx
/styles
    globals.css
`
	if got := Render(sampleTree()); got != want {
		t.Errorf("Render() =\n%s\nwant:\n%s", got, want)
	}
}

func TestCountFiles(t *testing.T) {
	if got := sampleTree().CountFiles(); got != 6 {
		t.Errorf("CountFiles() = %d, want 6", got)
	}
}

func TestEncodeJSON_RoundTrip(t *testing.T) {
	data, err := EncodeJSON(sampleTree())
	if err != nil {
		t.Fatalf("EncodeJSON() error: %v", err)
	}
	if !strings.HasPrefix(string(data), "{\n  \"public\": {\n    \"favicon.ico\": {}") {
		t.Errorf("unexpected encoding:\n%s", data)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(EncodeJSON()) error: %v", err)
	}
	if !reflect.DeepEqual(back, sampleTree()) {
		t.Error("JSON plan did not round trip")
	}
}

func TestYAMLPlan(t *testing.T) {
	in := `
public:
  favicon.ico:
pages:
  index.tsx: {}
  api:
    hello.ts: ~
`
	got, err := ParseYAML([]byte(in))
	if err != nil {
		t.Fatalf("ParseYAML() error: %v", err)
	}
	want := []string{"public/favicon.ico", "pages/index.tsx", "pages/api/hello.ts"}
	if paths := Flatten(got); !reflect.DeepEqual(paths, want) {
		t.Errorf("Flatten() = %v, want %v", paths, want)
	}

	data, err := EncodeYAML(got)
	if err != nil {
		t.Fatalf("EncodeYAML() error: %v", err)
	}
	back, err := ParseYAML(data)
	if err != nil {
		t.Fatalf("ParseYAML(EncodeYAML()) error: %v\n%s", err, data)
	}
	if !reflect.DeepEqual(back, got) {
		t.Errorf("YAML plan did not round trip:\n%s", data)
	}
}

func TestParseYAML_Invalid(t *testing.T) {
	for name, in := range map[string]string{
		"sequence leaf": "pages:\n  - index.tsx\n",
		"scalar leaf":   "pages:\n  index.tsx: page\n",
		"empty":         "",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseYAML([]byte(in)); err == nil {
				t.Errorf("ParseYAML(%q) should fail", in)
			}
		})
	}
}

func TestParseYAML_Aliases(t *testing.T) {
	in := `
styles:
  globals.css: &empty {}
  home.css: *empty
components: &shared
  Button.tsx: ~
legacy: *shared
`
	got, err := ParseYAML([]byte(in))
	if err != nil {
		t.Fatalf("ParseYAML() error: %v", err)
	}
	want := []string{"styles/globals.css", "styles/home.css", "components/Button.tsx", "legacy/Button.tsx"}
	if paths := Flatten(got); !reflect.DeepEqual(paths, want) {
		t.Errorf("Flatten() = %v, want %v", paths, want)
	}
}

func TestParseYAML_RecursiveAlias(t *testing.T) {
	in := "src: &loop\n  index.ts: ~\n  again: *loop\n"
	if _, err := ParseYAML([]byte(in)); err == nil {
		t.Error("ParseYAML() should reject an alias to an enclosing mapping")
	}
}

func TestReadWriteFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"plan.json", "plan.yaml", "plan.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := WriteFile(path, sampleTree()); err != nil {
				t.Fatalf("WriteFile() error: %v", err)
			}
			got, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile() error: %v", err)
			}
			if !reflect.DeepEqual(got, sampleTree()) {
				t.Errorf("plan %s did not round trip", name)
			}
		})
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want ErrNotExist", err)
	}
}
