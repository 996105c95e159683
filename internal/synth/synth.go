// Package synth turns a project description into a scaffold by chaining
// three completions: reform the description, draft a plaintext folder tree,
// then restate that tree as JSON.
package synth

import (
	"context"
	"errors"
	"fmt"

	"github.com/nextscaffold/scaffold/internal/completion"
	"github.com/nextscaffold/scaffold/internal/prompt"
	"github.com/nextscaffold/scaffold/internal/tree"
)

// ErrMalformedScaffold wraps every failure to read the model's JSON tree.
var ErrMalformedScaffold = errors.New("model returned a malformed scaffold")

// Stage holds the sampling parameters for one completion.
type Stage struct {
	Name             string
	MaxTokens        int
	Temperature      float64
	TopP             float64
	PresencePenalty  float64
	FrequencyPenalty float64
	Stop             []string
}

// Stage parameters.
var (
	ReformStage = Stage{
		Name:        "reform",
		MaxTokens:   128,
		Temperature: 1.0,
		TopP:        1.0,
		Stop:        []string{"."},
	}
	StructureStage = Stage{
		Name:            "structure",
		MaxTokens:       1024,
		Temperature:     0,
		TopP:            1.0,
		PresencePenalty: 1.0,
		Stop:            []string{"```"},
	}
	JSONStage = Stage{
		Name:            "json",
		MaxTokens:       2048,
		Temperature:     0,
		TopP:            1.0,
		PresencePenalty: 1.0,
		Stop:            []string{"```"},
	}
)

// Result is the output of one synthesis attempt.
type Result struct {
	Reformed string     // clause continuing "I am hoping to build a webapp that"
	Human    string     // plaintext tree, always starting with prompt.ScaffoldAnchor
	Tree     *tree.Node // authoritative structured tree
}

// Synthesizer runs the three-stage pipeline against a Completer.
type Synthesizer struct {
	client completion.Completer
	model  string

	// OnStage, when set, is called before each completion with the stage name.
	OnStage func(stage string)
}

// New returns a Synthesizer that sends every request to model.
func New(client completion.Completer, model string) *Synthesizer {
	return &Synthesizer{client: client, model: model}
}

// Synthesize runs one attempt. Any completion error or unreadable JSON tree
// fails the whole attempt; no partial result is returned.
func (s *Synthesizer) Synthesize(ctx context.Context, description string) (*Result, error) {
	reformed, err := s.complete(ctx, ReformStage, prompt.BuildReformPrompt(description))
	if err != nil {
		return nil, err
	}

	structure, err := s.complete(ctx, StructureStage, prompt.BuildScaffoldPrompt(reformed))
	if err != nil {
		return nil, err
	}
	human := prompt.ScaffoldAnchor + structure

	raw, err := s.complete(ctx, JSONStage, prompt.BuildJSONFromScaffold(human))
	if err != nil {
		return nil, err
	}

	root, err := tree.Parse([]byte(prompt.JSONSeed + raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedScaffold, err)
	}

	return &Result{
		Reformed: reformed,
		Human:    human,
		Tree:     root,
	}, nil
}

func (s *Synthesizer) complete(ctx context.Context, st Stage, text string) (string, error) {
	if s.OnStage != nil {
		s.OnStage(st.Name)
	}
	out, err := s.client.Complete(ctx, completion.Request{
		Model:            s.model,
		Prompt:           text,
		MaxTokens:        st.MaxTokens,
		Temperature:      st.Temperature,
		TopP:             st.TopP,
		PresencePenalty:  st.PresencePenalty,
		FrequencyPenalty: st.FrequencyPenalty,
		Stop:             st.Stop,
	})
	if err != nil {
		return "", fmt.Errorf("%s completion: %w", st.Name, err)
	}
	return out, nil
}
