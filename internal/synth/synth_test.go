package synth

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/nextscaffold/scaffold/internal/completion"
	"github.com/nextscaffold/scaffold/internal/prompt"
	"github.com/nextscaffold/scaffold/internal/tree"
)

func TestSynthesize_PipelinesStages(t *testing.T) {
	fake := completion.NewFakeClient(
		" keeps a shared grocery list",
		"    favicon.ico\n/pages\n    index.tsx\n",
		"\n  \"public\": {\"favicon.ico\": {}},\n  \"pages\": {\"index.tsx\": {}}\n}\n",
	)
	s := New(fake, "test-model")

	var stages []string
	s.OnStage = func(name string) { stages = append(stages, name) }

	res, err := s.Synthesize(context.Background(), "grocery list app")
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}

	if res.Reformed != " keeps a shared grocery list" {
		t.Errorf("Reformed = %q", res.Reformed)
	}
	if res.Human != "/public\n    favicon.ico\n/pages\n    index.tsx\n" {
		t.Errorf("Human = %q", res.Human)
	}
	wantPaths := []string{"public/favicon.ico", "pages/index.tsx"}
	if got := tree.Flatten(res.Tree); !reflect.DeepEqual(got, wantPaths) {
		t.Errorf("Flatten(Tree) = %v, want %v", got, wantPaths)
	}
	if strings.Join(stages, ",") != "reform,structure,json" {
		t.Errorf("stages = %v", stages)
	}

	reqs := fake.Requests()
	if len(reqs) != 3 {
		t.Fatalf("got %d requests, want 3", len(reqs))
	}
	if reqs[0].Prompt != prompt.BuildReformPrompt("grocery list app") {
		t.Error("first request should carry the reform prompt")
	}
	if reqs[1].Prompt != prompt.BuildScaffoldPrompt(" keeps a shared grocery list") {
		t.Error("second request should embed the reformed description")
	}
	if reqs[2].Prompt != prompt.BuildJSONFromScaffold(res.Human) {
		t.Error("third request should embed the anchored human tree")
	}
}

func TestSynthesize_StageParameters(t *testing.T) {
	fake := completion.NewFakeClient("x", "y", `"a": {}}`)
	if _, err := New(fake, "m").Synthesize(context.Background(), "d"); err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	reqs := fake.Requests()

	tests := []struct {
		req         completion.Request
		maxTokens   int
		temperature float64
		presence    float64
		stop        string
	}{
		{reqs[0], 128, 1.0, 0, "."},
		{reqs[1], 1024, 0, 1.0, "```"},
		{reqs[2], 2048, 0, 1.0, "```"},
	}
	for i, tt := range tests {
		if tt.req.Model != "m" {
			t.Errorf("request %d model = %q", i, tt.req.Model)
		}
		if tt.req.MaxTokens != tt.maxTokens || tt.req.Temperature != tt.temperature ||
			tt.req.PresencePenalty != tt.presence || tt.req.TopP != 1.0 {
			t.Errorf("request %d params = %+v", i, tt.req)
		}
		if len(tt.req.Stop) != 1 || tt.req.Stop[0] != tt.stop {
			t.Errorf("request %d stop = %v, want [%s]", i, tt.req.Stop, tt.stop)
		}
	}
}

func TestSynthesize_MalformedJSON(t *testing.T) {
	fake := completion.NewFakeClient("x", "y", `"pages": {"index.tsx": {}`)
	res, err := New(fake, "m").Synthesize(context.Background(), "d")
	if res != nil {
		t.Error("no partial result should be returned")
	}
	if !errors.Is(err, ErrMalformedScaffold) {
		t.Fatalf("error = %v, want ErrMalformedScaffold", err)
	}
	var pe *tree.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("error should wrap *tree.ParseError, got %T", err)
	}
}

func TestSynthesize_WrongShape(t *testing.T) {
	fake := completion.NewFakeClient("x", "y", `"pages": ["index.tsx"]}`)
	_, err := New(fake, "m").Synthesize(context.Background(), "d")
	var ve *tree.ValidationError
	if !errors.Is(err, ErrMalformedScaffold) || !errors.As(err, &ve) {
		t.Fatalf("error = %v, want ErrMalformedScaffold wrapping *tree.ValidationError", err)
	}
}

func TestSynthesize_CompletionError(t *testing.T) {
	fake := completion.NewFakeClient("x")
	fake.Err = errors.New("rate limited")
	_, err := New(fake, "m").Synthesize(context.Background(), "d")
	if err == nil || !strings.Contains(err.Error(), "reform completion: rate limited") {
		t.Errorf("error = %v", err)
	}
	if len(fake.Requests()) != 1 {
		t.Errorf("pipeline should stop after the failing stage, got %d requests", len(fake.Requests()))
	}
}
